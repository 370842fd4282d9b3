// Package platform adapts a discordgo session to the league's Platform.
package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leaguebot/handlers"
	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

// Session is the part of *discordgo.Session the adapter uses.
type Session interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Session = (*discordgo.Session)(nil)
var _ league.Platform = (*Discord)(nil)

// memberPageSize is the largest page the members endpoint returns.
const memberPageSize = 1000

// Discord implements league.Platform for one guild.
type Discord struct {
	session               Session
	guildID               string
	transactionsChannelID string
	log                   interfaces.Logger
	now                   func() time.Time
}

func NewDiscord(s Session, guildID, transactionsChannelID string, log interfaces.Logger) *Discord {
	return &Discord{session: s, guildID: guildID, transactionsChannelID: transactionsChannelID, log: log, now: time.Now}
}

func (d *Discord) AddRole(ctx context.Context, userID, roleID string) error {
	return d.session.GuildMemberRoleAdd(d.guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Discord) RemoveRole(ctx context.Context, userID, roleID string) error {
	return d.session.GuildMemberRoleRemove(d.guildID, userID, roleID, discordgo.WithContext(ctx))
}

// RoleMembers pages through the guild's member list and returns the holders of roleID.
func (d *Discord) RoleMembers(ctx context.Context, roleID string) ([]string, error) {
	roles, err := d.session.GuildRoles(d.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	found := false
	for _, r := range roles {
		if r.ID == roleID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", league.ErrUnknownRole, roleID)
	}

	var holders []string
	after := ""
	for {
		page, err := d.session.GuildMembers(d.guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		for _, m := range page {
			if m.User == nil {
				continue
			}
			for _, r := range m.Roles {
				if r == roleID {
					holders = append(holders, m.User.ID)
					break
				}
			}
		}
		if len(page) < memberPageSize || page[len(page)-1].User == nil {
			d.log.Debug("listed role members", "role_id", roleID, "count", len(holders))
			return holders, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// SendDirect opens (or reuses) the DM channel with userID and posts content.
func (d *Discord) SendDirect(ctx context.Context, userID, content string) error {
	_, err := d.SendDirectComplex(ctx, userID, &discordgo.MessageSend{Content: content})
	return err
}

// SendDirectComplex is SendDirect for messages with embeds or components.
func (d *Discord) SendDirectComplex(ctx context.Context, userID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	ch, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("open DM with %s: %w", userID, err)
	}
	m, err := d.session.ChannelMessageSendComplex(ch.ID, msg, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("send DM to %s: %w", userID, err)
	}
	return m, nil
}

// EditMessage replaces the content, embeds and components of a sent message.
func (d *Discord) EditMessage(ctx context.Context, edit *discordgo.MessageEdit) error {
	if edit == nil || edit.Channel == "" || edit.ID == "" {
		return errors.New("edit needs a channel and message id")
	}
	_, err := d.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return err
}

// Announce posts to the transactions channel. Without one configured it does nothing.
func (d *Discord) Announce(ctx context.Context, content string) error {
	if d.transactionsChannelID == "" {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Transaction",
		Description: content,
		Color:       handlers.ColorBlue,
		Timestamp:   d.now().Format(time.RFC3339),
	}
	if _, err := d.session.ChannelMessageSendComplex(d.transactionsChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx)); err != nil {
		d.log.Error("Failed to send transaction embed", "error", err, "channelID", d.transactionsChannelID)
		return err
	}
	return nil
}
