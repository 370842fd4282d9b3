package commands

import (
	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

func teamNameOption(required bool, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "team_name",
		Description: description,
		Required:    required,
	}
}

type UpdateTeamRolesCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *UpdateTeamRolesCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "updateteamroles",
		Description: "Make a team role match the team's roster",
		Options: []*discordgo.ApplicationCommandOption{
			teamNameOption(false, "The team (defaults to your own)"),
		},
	}
}

func (c *UpdateTeamRolesCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferReply(s, i, c.Log, true) {
		return
	}
	ctx, cancel := withTimeout()
	defer cancel()

	team, report, err := c.League.SyncTeam(ctx, callerFrom(i), stringOption(optionMap(i), "team_name"))
	if err != nil {
		editReply(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, syncSummary(team, report))
}

func (c *UpdateTeamRolesCommand) GetCategory() string { return "Teams" }

type TeamInfoCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *TeamInfoCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "teaminfo",
		Description: "Show a team's staff and roster size",
		Options: []*discordgo.ApplicationCommandOption{
			teamNameOption(true, "The team"),
		},
	}
}

func (c *TeamInfoCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	v, err := c.League.Team(stringOption(optionMap(i), "team_name"))
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	respondEmbed(s, i, c.Log, teamInfoEmbed(v, c.League.RosterLimit()), false)
}

func (c *TeamInfoCommand) GetCategory() string { return "Teams" }

type TeamRosterCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *TeamRosterCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "teamrosterdisplay",
		Description: "Show a team's roster",
		Options: []*discordgo.ApplicationCommandOption{
			teamNameOption(true, "The team"),
		},
	}
}

func (c *TeamRosterCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	v, err := c.League.Team(stringOption(optionMap(i), "team_name"))
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	respondEmbed(s, i, c.Log, rosterEmbed(v), false)
}

func (c *TeamRosterCommand) GetCategory() string { return "Teams" }
