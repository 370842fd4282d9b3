// commands/common.go
package commands

import (
	"context"
	"time"

	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

// ロール操作や DM を含むコマンドの上限時間
const commandTimeout = 30 * time.Second

// noComponents は部品を持たないコマンドに埋め込むための型です。
type noComponents struct{}

func (noComponents) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {}
func (noComponents) HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate)     {}
func (noComponents) GetComponentIDs() []string                                            { return []string{} }

// interactionUser returns the invoking user. Slash commands in the guild carry
// Member, button clicks in DMs carry only User.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// callerFrom builds the league caller for an interaction.
func callerFrom(i *discordgo.InteractionCreate) league.Caller {
	u := interactionUser(i)
	if u == nil {
		return league.Caller{}
	}
	c := league.Caller{ID: u.ID, Name: u.DisplayName()}
	if i.Member != nil {
		c.RoleIDs = i.Member.Roles
		if i.Member.Nick != "" {
			c.Name = i.Member.Nick
		}
	}
	return c
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// userOption returns the id and display name of a user option, preferring the
// guild nickname from the resolved data.
func userOption(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (id, displayName string) {
	opt, ok := opts[name]
	if !ok {
		return "", ""
	}
	// Session を渡さないと ID だけが入る
	id = opt.UserValue(nil).ID
	displayName = id
	if r := i.ApplicationCommandData().Resolved; r != nil {
		if u, ok := r.Users[id]; ok {
			displayName = u.DisplayName()
		}
		if m, ok := r.Members[id]; ok && m.Nick != "" {
			displayName = m.Nick
		}
	}
	return id, displayName
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, log interfaces.Logger, data *discordgo.InteractionResponseData) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		log.Error("Failed to respond to interaction", "error", err)
	}
}

// respondEphemeral は実行者にだけ見えるメッセージで応答します。
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, log interfaces.Logger, content string) {
	respond(s, i, log, &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral})
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, log interfaces.Logger, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	respond(s, i, log, data)
}

// deferReply は「考え中...」を表示し、後から editReply で内容を差し替えます。
func deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, log interfaces.Logger, ephemeral bool) bool {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		log.Error("Failed to defer interaction", "error", err)
		return false
	}
	return true
}

func editReply(s *discordgo.Session, i *discordgo.InteractionCreate, log interfaces.Logger, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Error("Failed to edit interaction response", "error", err)
	}
}

// replyPages は最初のページで応答を編集し、残りをフォローアップとして送ります。
func replyPages(s *discordgo.Session, i *discordgo.InteractionCreate, log interfaces.Logger, pages []string, ephemeral bool) {
	if len(pages) == 0 {
		return
	}
	editReply(s, i, log, pages[0])
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	for _, page := range pages[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: page, Flags: flags}); err != nil {
			log.Error("Failed to send followup page", "error", err)
			return
		}
	}
}

// replyError は公開で保留した応答を取り消し、エラーを本人にだけ送ります。
func replyError(s *discordgo.Session, i *discordgo.InteractionCreate, log interfaces.Logger, content string) {
	if err := s.InteractionResponseDelete(i.Interaction); err != nil {
		log.Warn("Failed to delete deferred response", "error", err)
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		log.Error("Failed to send error followup", "error", err)
	}
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

func float64Ptr(f float64) *float64 {
	return &f
}
