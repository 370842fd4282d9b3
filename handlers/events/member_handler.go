package events

import (
	"context"
	"time"

	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

const restoreTimeout = 30 * time.Second

// RoleRestorer grants a rejoining member the roles their league records imply.
type RoleRestorer interface {
	RestoreRoles(ctx context.Context, userID string) ([]string, league.Outcome, error)
}

// MemberHandler restores league roles to members who leave and rejoin the guild.
type MemberHandler struct {
	Log     interfaces.Logger
	GuildID string
	League  RoleRestorer
}

func NewMemberHandler(log interfaces.Logger, guildID string, restorer RoleRestorer) *MemberHandler {
	return &MemberHandler{Log: log, GuildID: guildID, League: restorer}
}

func (h *MemberHandler) Register(s *discordgo.Session) {
	s.AddHandler(h.onGuildMemberAdd)
}

func (h *MemberHandler) onGuildMemberAdd(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e.Member == nil || e.User == nil || e.User.Bot {
		return
	}
	// リーグのギルド以外は対象外
	if h.GuildID != "" && e.GuildID != h.GuildID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	roles, out, err := h.League.RestoreRoles(ctx, e.User.ID)
	if err != nil {
		h.Log.Error("Failed to restore league roles", "error", err, "user_id", e.User.ID)
		return
	}
	if out.Partial() {
		h.Log.Warn("Some league roles could not be restored", "user_id", e.User.ID, "roles", len(roles), "failed", len(out.RoleErrors))
	}
}
