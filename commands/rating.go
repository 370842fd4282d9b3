package commands

import (
	"fmt"

	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

type AssignRatingCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *AssignRatingCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "assignrating",
		Description: "Give a registered player a rating",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "The registered player",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "rating",
				Description: "Rating, e.g. S, A+ or 85",
				Required:    true,
				MaxLength:   16,
			},
		},
	}
}

func (c *AssignRatingCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	userID, _ := userOption(i, opts, "member")

	rating, err := c.League.AssignRating(callerFrom(i), userID, stringOption(opts, "rating"))
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	respondEphemeral(s, i, c.Log, fmt.Sprintf("✅ %s is now rated **%s**.", mention(userID), rating))
}

func (c *AssignRatingCommand) GetCategory() string { return "Players" }

type RatingsShowCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *RatingsShowCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ratingsshow",
		Description: "Show every player rating",
	}
}

func (c *RatingsShowCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	players, err := c.League.Ratings()
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	if len(players) == 0 {
		respondEphemeral(s, i, c.Log, "No players have been rated yet.")
		return
	}
	if !deferReply(s, i, c.Log, true) {
		return
	}
	replyPages(s, i, c.Log, chunkLines("**Player ratings**", ratingLines(players), linesPerPage), true)
}

func (c *RatingsShowCommand) GetCategory() string { return "Players" }

type GetProfileCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *GetProfileCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "getprofile",
		Description: "Show a player's league profile",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "The player to look up",
				Required:    true,
			},
		},
	}
}

func (c *GetProfileCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, _ := userOption(i, optionMap(i), "member")
	p, err := c.League.Profile(userID)
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	respondEmbed(s, i, c.Log, profileEmbed(p), true)
}

func (c *GetProfileCommand) GetCategory() string { return "Players" }
