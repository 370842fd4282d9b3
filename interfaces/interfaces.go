package interfaces

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
)

// Logger は、アプリケーション全体で使用されるロガーのインターフェースを定義します。
// 引数はキーと値の組で渡します。例: log.Info("offer accepted", "offer_id", id)
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// Scheduler は役職の同期やバックアップなどの定期ジョブを実行します。*cron.Cron が満たします。
type Scheduler interface {
	Start()
	// Stop は新しい実行を止め、実行中のジョブが終わると Done になるコンテキストを返します。
	Stop() context.Context
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
}

var _ Scheduler = (*cron.Cron)(nil)

// CommandHandler は、すべてのスラッシュコマンドが実装すべきインターフェースです。
// GetComponentIDs が返す接頭辞で始まるボタンとモーダルは HandleComponent / HandleModal に届きます。
type CommandHandler interface {
	GetCommandDef() *discordgo.ApplicationCommand
	Handle(s *discordgo.Session, i *discordgo.InteractionCreate)
	HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate)
	HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate)
	GetComponentIDs() []string
	// GetCategory は /help でのグループ名です。
	GetCategory() string
}
