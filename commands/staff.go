package commands

import (
	"fmt"

	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

// スタッフの任命・解任の結果は公開で表示する

type ChairmanHireCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *ChairmanHireCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "teamchairmanhire",
		Description: "Appoint a team's chairman",
		Options: []*discordgo.ApplicationCommandOption{
			teamNameOption(true, "The team"),
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "chairman",
				Description: "The new chairman",
				Required:    true,
			},
		},
	}
}

func (c *ChairmanHireCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	caller := callerFrom(i)
	// 権限が無い場合は本人にだけ見せる
	if !c.League.Permissions().IsPrivileged(caller.RoleIDs) {
		respondEphemeral(s, i, c.Log, errorMessage(league.ErrPermissionDenied))
		return
	}
	if !deferReply(s, i, c.Log, false) {
		return
	}
	opts := optionMap(i)
	userID, name := userOption(i, opts, "chairman")
	team := stringOption(opts, "team_name")

	ctx, cancel := withTimeout()
	defer cancel()
	ch, err := c.League.HireChairman(ctx, caller, team, userID, name)
	if err != nil {
		replyError(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, fmt.Sprintf("👔 %s is now chairman and manager of **%s**.%s%s",
		mention(userID), ch.Team, leftTeamsNote(ch.LeftTeams), outcomeNote(ch.Outcome)))
}

func (c *ChairmanHireCommand) GetCategory() string { return "Staff" }

type ChairmanUnhireCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *ChairmanUnhireCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "teamchairmanunhire",
		Description: "Remove a team's chairman",
		Options: []*discordgo.ApplicationCommandOption{
			teamNameOption(true, "The team"),
		},
	}
}

func (c *ChairmanUnhireCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	caller := callerFrom(i)
	if !c.League.Permissions().IsPrivileged(caller.RoleIDs) {
		respondEphemeral(s, i, c.Log, errorMessage(league.ErrPermissionDenied))
		return
	}
	if !deferReply(s, i, c.Log, false) {
		return
	}
	ctx, cancel := withTimeout()
	defer cancel()
	ch, err := c.League.UnhireChairman(ctx, caller, stringOption(optionMap(i), "team_name"))
	if err != nil {
		replyError(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, fmt.Sprintf("👋 %s is no longer chairman of **%s**.%s", mention(ch.UserID), ch.Team, outcomeNote(ch.Outcome)))
}

func (c *ChairmanUnhireCommand) GetCategory() string { return "Staff" }

// StaffHireCommand fills the manager or assistant manager post of the caller's team.
type StaffHireCommand struct {
	noComponents
	League   *league.Service
	Log      interfaces.Logger
	Position league.Position
}

func (c *StaffHireCommand) GetCommandDef() *discordgo.ApplicationCommand {
	name, option := "teammanagerhire", "manager"
	if c.Position == league.PositionAssistant {
		name, option = "assistantmanagerhire", "assistant"
	}
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: fmt.Sprintf("Appoint your team's %s", c.Position),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        option,
				Description: "A player signed to your team",
				Required:    true,
			},
		},
	}
}

func (c *StaffHireCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferReply(s, i, c.Log, false) {
		return
	}
	def := c.GetCommandDef()
	userID, _ := userOption(i, optionMap(i), def.Options[0].Name)

	ctx, cancel := withTimeout()
	defer cancel()
	ch, err := c.League.HireStaff(ctx, callerFrom(i), userID, c.Position)
	if err != nil {
		replyError(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, fmt.Sprintf("📋 %s is now %s of **%s**.%s", mention(userID), c.Position, ch.Team, outcomeNote(ch.Outcome)))
}

func (c *StaffHireCommand) GetCategory() string { return "Staff" }

// StaffUnhireCommand vacates the manager or assistant manager post of the caller's team.
type StaffUnhireCommand struct {
	noComponents
	League   *league.Service
	Log      interfaces.Logger
	Position league.Position
}

func (c *StaffUnhireCommand) GetCommandDef() *discordgo.ApplicationCommand {
	name := "teammanagerunhire"
	if c.Position == league.PositionAssistant {
		name = "assistantmanagerunhire"
	}
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: fmt.Sprintf("Remove your team's %s", c.Position),
	}
}

func (c *StaffUnhireCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferReply(s, i, c.Log, false) {
		return
	}
	ctx, cancel := withTimeout()
	defer cancel()
	ch, err := c.League.UnhireStaff(ctx, callerFrom(i), c.Position)
	if err != nil {
		replyError(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, fmt.Sprintf("📋 %s is no longer %s of **%s**.%s", mention(ch.UserID), c.Position, ch.Team, outcomeNote(ch.Outcome)))
}

func (c *StaffUnhireCommand) GetCategory() string { return "Staff" }
