package commands

import (
	"time"

	"leaguebot/interfaces"
	"leaguebot/league"
	"leaguebot/platform"

	"github.com/bwmarrin/discordgo"
)

// AppContext provides dependencies to commands.
type AppContext struct {
	Log      interfaces.Logger
	League   *league.Service
	Platform *platform.Discord
}

// RegisterCommands initializes and returns all command handlers.
func RegisterCommands(appCtx *AppContext) (map[string]interfaces.CommandHandler, map[string]interfaces.CommandHandler, []*discordgo.ApplicationCommand) {
	commandHandlers := make(map[string]interfaces.CommandHandler)
	componentHandlers := make(map[string]interfaces.CommandHandler)
	registeredCommands := make([]*discordgo.ApplicationCommand, 0)

	svc, log := appCtx.League, appCtx.Log

	// To add a new command, simply add it to this list.
	commands := []interfaces.CommandHandler{
		// Registration
		&RegisterCommand{League: svc, Log: log},
		&UnregisterCommand{League: svc, Log: log},
		&ListRegisteredCommand{League: svc, Log: log},
		&SetTwoClubCommand{League: svc, Log: log},
		&ListTwoClubCommand{League: svc, Log: log},
		// Players
		&AssignRatingCommand{League: svc, Log: log},
		&RatingsShowCommand{League: svc, Log: log},
		&GetProfileCommand{League: svc, Log: log},
		// Transfers
		NewSignCommand(svc, appCtx.Platform, log),
		&ForceSignCommand{League: svc, Log: log},
		&ReleaseCommand{League: svc, Log: log},
		&ForceReleaseCommand{League: svc, Log: log},
		&ReleaseClauseCommand{League: svc, Log: log},
		&TransfersCommand{League: svc, Log: log},
		// Teams
		&UpdateTeamRolesCommand{League: svc, Log: log},
		&TeamInfoCommand{League: svc, Log: log},
		&TeamRosterCommand{League: svc, Log: log},
		// Staff
		&ChairmanHireCommand{League: svc, Log: log},
		&ChairmanUnhireCommand{League: svc, Log: log},
		&StaffHireCommand{League: svc, Log: log, Position: league.PositionManager},
		&StaffHireCommand{League: svc, Log: log, Position: league.PositionAssistant},
		&StaffUnhireCommand{League: svc, Log: log, Position: league.PositionManager},
		&StaffUnhireCommand{League: svc, Log: log, Position: league.PositionAssistant},
		&HelpCommand{AllCommands: commandHandlers, Log: log},
	}

	for _, cmd := range commands {
		cmdHandler := cmd // ローカル変数にコピー
		commandDef := cmdHandler.GetCommandDef()
		commandHandlers[commandDef.Name] = cmdHandler
		registeredCommands = append(registeredCommands, commandDef)

		// Register component handlers
		for _, id := range cmdHandler.GetComponentIDs() {
			componentHandlers[id] = cmdHandler
		}
	}

	// ラッパーハンドラーを作成して、元のハンドラーをラップする
	for name, handler := range commandHandlers {
		commandHandlers[name] = &CommandUsageWrapper{CommandHandler: handler, Log: log}
	}

	return commandHandlers, componentHandlers, registeredCommands
}

// CommandUsageWrapper は、コマンドの実行をラップして使用状況を記録します。
type CommandUsageWrapper struct {
	interfaces.CommandHandler
	Log interfaces.Logger
}

// Handle は、元のハンドラを呼び出し、実行者と所要時間を記録します。
func (w *CommandUsageWrapper) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	start := time.Now()
	w.CommandHandler.Handle(s, i)
	userID := ""
	if u := interactionUser(i); u != nil {
		userID = u.ID
	}
	w.Log.Info("command handled",
		"command", i.ApplicationCommandData().Name,
		"category", w.CommandHandler.GetCategory(),
		"user_id", userID,
		"elapsed", time.Since(start).String())
}
