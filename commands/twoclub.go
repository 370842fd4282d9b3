package commands

import (
	"fmt"

	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

type SetTwoClubCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *SetTwoClubCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "set2c",
		Description: "Allow or forbid a player from playing for two clubs",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "The registered player",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "allow_2c",
				Description: "Whether the player may play for two clubs",
				Required:    true,
			},
		},
	}
}

func (c *SetTwoClubCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	userID, _ := userOption(i, opts, "member")
	allow := opts["allow_2c"].BoolValue()

	p, err := c.League.SetTwoClub(callerFrom(i), userID, allow)
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	c.Log.Info("2c flag updated", "user_id", userID, "allow", allow)
	respondEphemeral(s, i, c.Log, fmt.Sprintf("✅ 2C for %s is now **%s**.", mention(p.ID), yesNo(p.TwoClub)))
}

func (c *SetTwoClubCommand) GetCategory() string { return "Registration" }

type ListTwoClubCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *ListTwoClubCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "list2c",
		Description: "List players allowed to play for two clubs",
	}
}

func (c *ListTwoClubCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	players, err := c.League.ListTwoClub()
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	if len(players) == 0 {
		respondEphemeral(s, i, c.Log, "No players have 2C enabled.")
		return
	}
	if !deferReply(s, i, c.Log, true) {
		return
	}
	replyPages(s, i, c.Log, chunkLines("**Players with 2C**", twoClubLines(players), linesPerPage), true)
}

func (c *ListTwoClubCommand) GetCategory() string { return "Registration" }
