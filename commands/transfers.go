package commands

import (
	"leaguebot/interfaces"
	"leaguebot/league"
	"leaguebot/storage"

	"github.com/bwmarrin/discordgo"
)

const transfersShown = 10

// TransfersCommand shows the latest entries of the transfer history.
type TransfersCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *TransfersCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "transfers",
		Description: "Show recent transfers",
		Options: []*discordgo.ApplicationCommandOption{
			teamNameOption(false, "Only this team"),
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "player",
				Description: "Only this player",
				Required:    false,
			},
		},
	}
}

func (c *TransfersCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferReply(s, i, c.Log, true) {
		return
	}
	opts := optionMap(i)
	filter := storage.HistoryFilter{Team: stringOption(opts, "team_name")}
	filter.PlayerID, _ = userOption(i, opts, "player")

	ctx, cancel := withTimeout()
	defer cancel()
	events, err := c.League.RecentTransfers(ctx, filter, transfersShown)
	if err != nil {
		c.Log.Error("Failed to read transfer history", "error", err)
		editReply(s, i, c.Log, errorMessage(err))
		return
	}
	embeds := []*discordgo.MessageEmbed{transfersEmbed(events, filter)}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds}); err != nil {
		c.Log.Error("Failed to edit interaction response", "error", err)
	}
}

func (c *TransfersCommand) GetCategory() string { return "Transfers" }
