package events

import (
	"runtime/debug"
	"strings"

	"leaguebot/interfaces"

	"github.com/bwmarrin/discordgo"
)

// OnInteractionCreate は、すべてのインタラクションを処理する中央ハブです。
// コンポーネントとモーダルは CustomID の完全一致、次に最長の接頭辞で振り分けます。
func OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, commandHandlers, componentHandlers map[string]interfaces.CommandHandler, log interfaces.Logger) {
	// 1 つのコマンドの不具合で Bot 全体を落とさない
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic in interaction handler", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if h, ok := commandHandlers[name]; ok {
			h.Handle(s, i)
		} else {
			log.Warn("Unknown command received", "command", name)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if h, ok := matchComponent(componentHandlers, customID); ok {
			log.Debug("Routing component interaction", "customID", customID, "command", h.GetCommandDef().Name)
			h.HandleComponent(s, i)
		} else {
			log.Warn("Unknown component interaction received", "customID", customID)
		}
	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if h, ok := matchComponent(componentHandlers, customID); ok {
			h.HandleModal(s, i)
		} else {
			log.Warn("Unknown modal submission received", "customID", customID)
		}
	}
}

func matchComponent(handlers map[string]interfaces.CommandHandler, customID string) (interfaces.CommandHandler, bool) {
	if h, ok := handlers[customID]; ok {
		return h, true
	}
	var best string
	var found interfaces.CommandHandler
	for prefix, h := range handlers {
		if prefix != "" && len(prefix) > len(best) && strings.HasPrefix(customID, prefix) {
			best, found = prefix, h
		}
	}
	return found, found != nil
}
