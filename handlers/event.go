package handlers

import (
	"leaguebot/handlers/events"
	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

// EventHandler はゲートウェイのイベントをリーグの処理につなぎます。
type EventHandler struct {
	Log               interfaces.Logger
	GuildID           string
	League            *league.Service
	CommandHandlers   map[string]interfaces.CommandHandler
	ComponentHandlers map[string]interfaces.CommandHandler
}

func NewEventHandler(log interfaces.Logger, guildID string, svc *league.Service, commandHandlers, componentHandlers map[string]interfaces.CommandHandler) *EventHandler {
	return &EventHandler{
		Log:               log,
		GuildID:           guildID,
		League:            svc,
		CommandHandlers:   commandHandlers,
		ComponentHandlers: componentHandlers,
	}
}

func (h *EventHandler) RegisterAllHandlers(s *discordgo.Session) {
	s.AddHandler(h.handleReady)
	s.AddHandler(h.handleInteractionCreate)
	events.NewMemberHandler(h.Log, h.GuildID, h.League).Register(s)
}

func (h *EventHandler) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	events.OnReady(s, r, h.Log, h.League)
}

func (h *EventHandler) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	events.OnInteractionCreate(s, i, h.CommandHandlers, h.ComponentHandlers, h.Log)
}
