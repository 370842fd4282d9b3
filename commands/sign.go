package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leaguebot/handlers"
	"leaguebot/interfaces"
	"leaguebot/league"
	"leaguebot/platform"

	"github.com/bwmarrin/discordgo"
)

// オファー DM のボタン。CustomID は "<prefix><offer id>"
const (
	OfferAcceptPrefix   = "offer_accept:"
	OfferAcceptRCPrefix = "offer_accept_rc:"
	OfferDeclinePrefix  = "offer_decline:"
)

type offerAction int

const (
	actionAccept offerAction = iota
	actionAcceptRC
	actionDecline
)

// parseOfferCustomID splits a button id into its action and offer id.
func parseOfferCustomID(customID string) (offerAction, string, bool) {
	// offer_accept_rc: は offer_accept: より先に照合する
	for _, p := range []struct {
		prefix string
		action offerAction
	}{
		{OfferAcceptRCPrefix, actionAcceptRC},
		{OfferAcceptPrefix, actionAccept},
		{OfferDeclinePrefix, actionDecline},
	} {
		if id, ok := strings.CutPrefix(customID, p.prefix); ok && id != "" {
			return p.action, id, true
		}
	}
	return 0, "", false
}

func offerButtons(offerID string, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: OfferAcceptPrefix + offerID, Disabled: disabled},
				discordgo.Button{Label: "Accept with release clause", Style: discordgo.PrimaryButton, CustomID: OfferAcceptRCPrefix + offerID, Disabled: disabled},
				discordgo.Button{Label: "Decline", Style: discordgo.DangerButton, CustomID: OfferDeclinePrefix + offerID, Disabled: disabled},
			},
		},
	}
}

// offerEmbed renders an offer, with status set once it is closed.
func offerEmbed(o *league.Offer, status string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Contract offer: %s", o.Team),
		Description: fmt.Sprintf("%s has offered you a contract with **%s**.", mention(o.ChairmanID), o.Team),
		Color:       handlers.ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Team", Value: o.Team, Inline: true},
			{Name: "Seasons", Value: fmt.Sprintf("%d", o.Seasons), Inline: true},
			{Name: "Expires", Value: fmt.Sprintf("<t:%d:R>", o.Deadline.Unix()), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "A release clause lets you leave the team later with /releaseclauseuse."},
	}
	if status == "" {
		return embed
	}
	embed.Fields = embed.Fields[:2]
	embed.Footer = nil
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Status", Value: status})
	switch o.State() {
	case league.OfferAccepted:
		embed.Color = handlers.ColorGreen
	case league.OfferDeclined:
		embed.Color = handlers.ColorRed
	default:
		embed.Color = handlers.ColorGray
	}
	return embed
}

// SignCommand sends a contract offer to a player by DM and resolves it when
// the player presses one of its buttons.
type SignCommand struct {
	League   *league.Service
	Platform *platform.Discord
	Log      interfaces.Logger
}

// NewSignCommand creates a SignCommand and hooks offer expiry so timed-out
// offers lose their buttons.
func NewSignCommand(svc *league.Service, p *platform.Discord, log interfaces.Logger) *SignCommand {
	c := &SignCommand{League: svc, Platform: p, Log: log}
	svc.OnOfferExpired(c.onExpired)
	return c
}

func (c *SignCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "sign",
		Description: "Offer a player a contract with your team",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "player",
				Description: "The player to sign",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "team_name",
				Description: "Your team",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "seasons",
				Description: "Contract length in seasons",
				Required:    true,
				MinValue:    float64Ptr(1),
			},
		},
	}
}

func (c *SignCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	playerID, _ := userOption(i, opts, "player")
	team := stringOption(opts, "team_name")
	seasons := int(opts["seasons"].IntValue())

	offer, err := c.League.CreateOffer(callerFrom(i), playerID, team, seasons)
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	// 確認メッセージは公開
	if !deferReply(s, i, c.Log, false) {
		c.League.CancelOffer(offer.ID)
		return
	}

	ctx, cancel := withTimeout()
	defer cancel()
	msg, err := c.Platform.SendDirectComplex(ctx, playerID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{offerEmbed(offer, "")},
		Components: offerButtons(offer.ID, false),
	})
	if err != nil {
		c.League.CancelOffer(offer.ID)
		c.Log.Warn("Failed to deliver offer", "error", err, "offer_id", offer.ID, "user_id", playerID)
		replyError(s, i, c.Log, fmt.Sprintf("❌ Could not send the offer to %s. They may have direct messages disabled.", mention(playerID)))
		return
	}
	offer.SetMessage(msg.ChannelID, msg.ID)
	editReply(s, i, c.Log, fmt.Sprintf("📨 Offer sent to %s to join **%s** for %d season(s). It expires <t:%d:R>.",
		mention(playerID), team, seasons, offer.Deadline.Unix()))
}

func (c *SignCommand) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, offerID, ok := parseOfferCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	// ロール操作が 3 秒を超えることがあるので先に応答しておく
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		c.Log.Error("Failed to acknowledge offer button", "error", err, "offer_id", offerID)
		return
	}

	ctx, cancel := withTimeout()
	defer cancel()
	caller := callerFrom(i)

	var offer *league.Offer
	var status string
	var err error
	switch action {
	case actionAccept, actionAcceptRC:
		var tr league.Transfer
		offer, tr, err = c.League.AcceptOffer(ctx, offerID, caller, action == actionAcceptRC)
		if err == nil {
			status = fmt.Sprintf("✅ Accepted. You have joined **%s**. Release clause: %s", tr.Team, yesNo(tr.ReleaseClause))
			if tr.Partial() {
				status += "\n⚠️ Some of your roles could not be updated. Please contact an admin."
			}
		}
	case actionDecline:
		offer, err = c.League.DeclineOffer(ctx, offerID, caller)
		status = "❌ Declined."
	}

	if err != nil {
		c.followup(s, i, errorMessage(err))
		// 閉じたオファーのボタンは無効化する
		if errors.Is(err, league.ErrOfferNotFound) {
			c.disableMessage(s, i, offerID, nil, "This offer is no longer available.")
		} else if offer != nil && offer.State() != league.OfferPending {
			c.disableMessage(s, i, offerID, offer, "Closed: "+offer.State().String())
		}
		return
	}
	c.disableMessage(s, i, offerID, offer, status)
}

func (c *SignCommand) followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		c.Log.Error("Failed to send offer followup", "error", err)
	}
}

// disableMessage rewrites the clicked offer message with its buttons disabled.
func (c *SignCommand) disableMessage(s *discordgo.Session, i *discordgo.InteractionCreate, offerID string, offer *league.Offer, status string) {
	components := offerButtons(offerID, true)
	edit := &discordgo.WebhookEdit{Components: &components}
	if offer != nil {
		embeds := []*discordgo.MessageEmbed{offerEmbed(offer, status)}
		edit.Embeds = &embeds
	} else {
		edit.Content = &status
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		c.Log.Error("Failed to update offer message", "error", err)
	}
}

// onExpired は期限切れになったオファーの DM のボタンを無効化します。
func (c *SignCommand) onExpired(o *league.Offer) {
	channelID, messageID := o.Message()
	if channelID == "" || messageID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	edit := discordgo.NewMessageEdit(channelID, messageID)
	components := offerButtons(o.ID, true)
	embeds := []*discordgo.MessageEmbed{offerEmbed(o, "⌛ This offer has expired.")}
	edit.Components = &components
	edit.Embeds = &embeds
	if err := c.Platform.EditMessage(ctx, edit); err != nil {
		c.Log.Warn("Failed to mark offer as expired", "error", err, "offer_id", o.ID)
	}
}

func (c *SignCommand) HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {}

func (c *SignCommand) GetComponentIDs() []string {
	return []string{OfferAcceptRCPrefix, OfferAcceptPrefix, OfferDeclinePrefix}
}

func (c *SignCommand) GetCategory() string { return "Transfers" }

type ForceSignCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *ForceSignCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "forcesign",
		Description: "Sign a player to a team without an offer",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "player",
				Description: "The player to sign",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "team_name",
				Description: "The team",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "seasons",
				Description: "Contract length in seasons",
				Required:    true,
				MinValue:    float64Ptr(1),
			},
		},
	}
}

func (c *ForceSignCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferReply(s, i, c.Log, true) {
		return
	}
	opts := optionMap(i)
	playerID, playerName := userOption(i, opts, "player")
	team := stringOption(opts, "team_name")
	seasons := int(opts["seasons"].IntValue())

	ctx, cancel := withTimeout()
	defer cancel()
	tr, err := c.League.ForceSign(ctx, callerFrom(i), playerID, playerName, team, seasons)
	if err != nil {
		editReply(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, fmt.Sprintf("✅ %s has been signed to **%s** for %s season(s).%s%s",
		mention(playerID), tr.Team, seasonsLabel(tr.Seasons), leftTeamsNote(tr.LeftTeams), outcomeNote(tr.Outcome)))
}

func (c *ForceSignCommand) GetCategory() string { return "Transfers" }

func leftTeamsNote(teams []string) string {
	if len(teams) == 0 {
		return ""
	}
	return fmt.Sprintf("\nRemoved from: %s", strings.Join(teams, ", "))
}
