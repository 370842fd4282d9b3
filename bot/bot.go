package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leaguebot/commands"
	"leaguebot/config"
	"leaguebot/handlers"
	"leaguebot/interfaces"
	"leaguebot/league"
	"leaguebot/platform"
	"leaguebot/servers"
	"leaguebot/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
)

// 定期ジョブ 1 回あたりの上限時間
const jobTimeout = 10 * time.Minute

// Bot はDiscordボットのコアな状態とロジックを管理します。
type Bot struct {
	Session   *discordgo.Session
	cfg       *config.Config
	log       interfaces.Logger
	store     *storage.LeagueStore
	history   *storage.HistoryStore
	league    *league.Service
	platform  *platform.Discord
	backup    *storage.Backup
	scheduler interfaces.Scheduler
	servers   *servers.Manager

	commandHandlers   map[string]interfaces.CommandHandler
	componentHandlers map[string]interfaces.CommandHandler
	commandDefs       []*discordgo.ApplicationCommand
}

// New は新しいBotインスタンスを作成します。
func New(cfg *config.Config, log interfaces.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, err
	}
	dg.State = discordgo.NewState()
	// GuildMemberAdd と役職メンバーの取得に必要
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	store, err := storage.NewLeagueStore(cfg.Storage.PlayersPath, cfg.Storage.TeamsPath)
	if err != nil {
		return nil, fmt.Errorf("open league store: %w", err)
	}
	history, err := storage.NewHistoryStore(cfg.Storage.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("open transfer history: %w", err)
	}

	p := platform.NewDiscord(dg, cfg.Discord.GuildID, cfg.Discord.TransactionsChannelID, log)
	svc := league.NewService(league.Config{
		Roles: league.Roles{
			FreeAgent: cfg.Roles.FreeAgentID,
			Staff:     cfg.Roles.StaffID,
			Assistant: cfg.Roles.AssistantID,
		},
		PrivilegedRoles: cfg.PrivilegedRoleIDs(),
		RosterLimit:     cfg.League.RosterLimit,
		OfferTimeout:    cfg.League.OfferTimeout,
		BulkSyncRevokes: cfg.Roles.BulkSyncRevokes,
	}, league.Deps{
		Store:    store,
		Platform: p,
		History:  history,
		Logger:   log,
	})

	b := &Bot{
		Session:   dg,
		cfg:       cfg,
		log:       log,
		store:     store,
		history:   history,
		league:    svc,
		platform:  p,
		scheduler: cron.New(),
		servers:   servers.NewManager(log),
	}

	if cfg.Backup.Bucket != "" {
		b.backup, err = storage.NewS3Backup(context.Background(), storage.BackupConfig{
			Bucket:          cfg.Backup.Bucket,
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
			Prefix:          cfg.Backup.Prefix,
		}, store)
		if err != nil {
			history.Close()
			return nil, fmt.Errorf("configure backup: %w", err)
		}
	}
	if cfg.Web.Addr != "" {
		b.servers.AddServer(servers.NewWebServer(log, cfg.Web.Addr, svc, history))
	}

	b.commandHandlers, b.componentHandlers, b.commandDefs = commands.RegisterCommands(&commands.AppContext{
		Log:      log,
		League:   svc,
		Platform: p,
	})
	return b, nil
}

// Start はBotを起動し、終了シグナルを受け取るまでブロックします。
func (b *Bot) Start() error {
	defer b.history.Close()

	eventHandler := handlers.NewEventHandler(b.log, b.cfg.Discord.GuildID, b.league, b.commandHandlers, b.componentHandlers)
	eventHandler.RegisterAllHandlers(b.Session)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.Session.Close()

	b.log.Info("Discord Botが起動しました。コマンドを登録します...", "count", len(b.commandDefs))
	// ギルド専用のコマンドはすぐに反映される
	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, b.cfg.Discord.GuildID, b.commandDefs); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	if err := scheduleJobs(b.scheduler, b.jobs(), b.log); err != nil {
		return err
	}
	b.scheduler.Start()
	defer b.stopScheduler()

	if err := b.servers.StartAll(); err != nil {
		return err
	}
	defer b.servers.StopAll()

	b.log.Info("コマンドの登録が完了しました。Ctrl+Cで終了します。")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	b.log.Info("Botをシャットダウンします...")
	return nil
}

func (b *Bot) stopScheduler() {
	// 実行中のジョブを待つ
	select {
	case <-b.scheduler.Stop().Done():
	case <-time.After(jobTimeout):
		b.log.Warn("Scheduled jobs did not finish before shutdown")
	}
}

// job は cron に登録する定期処理です。
type job struct {
	name string
	spec string
	run  func(ctx context.Context) error
}

func (b *Bot) jobs() []job {
	jobs := []job{{
		name: "role_sync",
		spec: b.cfg.Schedule.RoleSync,
		run: func(ctx context.Context) error {
			report, err := b.league.SyncAll(ctx)
			if err != nil {
				return err
			}
			b.log.Info("Scheduled role sync finished", "teams", report.Teams, "granted", report.Granted, "revoked", report.Revoked, "errors", len(report.Errors))
			return nil
		},
	}}
	if b.backup != nil {
		jobs = append(jobs, job{
			name: "backup",
			spec: b.cfg.Backup.Schedule,
			run: func(ctx context.Context) error {
				keys, err := b.backup.Run(ctx)
				if err != nil {
					return err
				}
				b.log.Info("League documents backed up", "keys", keys)
				return nil
			},
		})
	}
	return jobs
}

// scheduleJobs registers every job with a non-empty spec.
func scheduleJobs(s interfaces.Scheduler, jobs []job, log interfaces.Logger) error {
	for _, j := range jobs {
		if j.spec == "" {
			log.Info("Scheduled job disabled", "job", j.name)
			continue
		}
		if _, err := s.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := j.run(ctx); err != nil {
				log.Error("Scheduled job failed", "job", j.name, "error", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", j.name, j.spec, err)
		}
		log.Info("Scheduled job registered", "job", j.name, "spec", j.spec)
	}
	return nil
}
