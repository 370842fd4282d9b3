package events

import (
	"context"
	"time"

	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

// 接続直後の一括ロール同期の上限時間
const readySyncTimeout = 5 * time.Minute

// RoleSyncer grants every team role to the team's roster.
type RoleSyncer interface {
	SyncAll(ctx context.Context) (*league.SyncReport, error)
}

// OnReady は、Botの準備ができたときに呼び出され、ステータスを設定してロールを同期します。
// 同期はゲートウェイのイベント処理を止めないように別の goroutine で行い、完了を返します。
func OnReady(s *discordgo.Session, r *discordgo.Ready, log interfaces.Logger, syncer RoleSyncer) <-chan struct{} {
	log.Info("Bot is ready", "user", r.User.String(), "guilds", len(r.Guilds))
	if err := s.UpdateGameStatus(0, "/help | League"); err != nil {
		log.Warn("Failed to update game status", "error", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), readySyncTimeout)
		defer cancel()
		report, err := syncer.SyncAll(ctx)
		if err != nil {
			log.Error("Role sync on ready failed", "error", err)
			return
		}
		for _, e := range report.Errors {
			log.Warn("Role sync error", "error", e)
		}
	}()
	return done
}
