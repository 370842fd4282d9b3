package commands

import (
	"context"
	"fmt"

	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

func releaseOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "player",
			Description: "The player to release",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "team_name",
			Description: "The team the player is signed to",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Sent to the player",
			Required:    true,
			MaxLength:   500,
		},
	}
}

type releaseFunc func(ctx context.Context, c league.Caller, playerID, team, reason string) (league.Transfer, error)

func handleRelease(s *discordgo.Session, i *discordgo.InteractionCreate, log interfaces.Logger, release releaseFunc) {
	if !deferReply(s, i, log, true) {
		return
	}
	opts := optionMap(i)
	playerID, _ := userOption(i, opts, "player")
	team := stringOption(opts, "team_name")

	ctx, cancel := withTimeout()
	defer cancel()
	tr, err := release(ctx, callerFrom(i), playerID, team, stringOption(opts, "reason"))
	if err != nil {
		editReply(s, i, log, errorMessage(err))
		return
	}
	editReply(s, i, log, fmt.Sprintf("✅ %s has been released from **%s**.%s", mention(playerID), tr.Team, outcomeNote(tr.Outcome)))
}

type ReleaseCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *ReleaseCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "release",
		Description: "Release a player from your team",
		Options:     releaseOptions(),
	}
}

func (c *ReleaseCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handleRelease(s, i, c.Log, c.League.Release)
}

func (c *ReleaseCommand) GetCategory() string { return "Transfers" }

type ForceReleaseCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *ForceReleaseCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "forcerelease",
		Description: "Release a player from any team",
		Options:     releaseOptions(),
	}
}

func (c *ForceReleaseCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handleRelease(s, i, c.Log, c.League.ForceRelease)
}

func (c *ForceReleaseCommand) GetCategory() string { return "Transfers" }

type ReleaseClauseCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *ReleaseClauseCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "releaseclauseuse",
		Description: "Use your release clause to leave your team",
	}
}

func (c *ReleaseClauseCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferReply(s, i, c.Log, true) {
		return
	}
	ctx, cancel := withTimeout()
	defer cancel()

	tr, err := c.League.UseReleaseClause(ctx, callerFrom(i))
	if err != nil {
		editReply(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, fmt.Sprintf("🔓 You used your release clause and left **%s**. You are now a free agent.%s", tr.Team, outcomeNote(tr.Outcome)))
}

func (c *ReleaseClauseCommand) GetCategory() string { return "Transfers" }
