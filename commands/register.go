package commands

import (
	"errors"

	"leaguebot/interfaces"
	"leaguebot/league"

	"github.com/bwmarrin/discordgo"
)

type RegisterCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *RegisterCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "register",
		Description: "Register yourself as a free agent",
	}
}

func (c *RegisterCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferReply(s, i, c.Log, true) {
		return
	}
	ctx, cancel := withTimeout()
	defer cancel()

	out, err := c.League.Register(ctx, callerFrom(i))
	if err != nil {
		editReply(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, "✅ You are now registered as a free agent."+outcomeNote(out))
}

func (c *RegisterCommand) GetCategory() string { return "Registration" }

type UnregisterCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *UnregisterCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "unregister",
		Description: "Remove yourself from the player registry",
	}
}

func (c *UnregisterCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferReply(s, i, c.Log, true) {
		return
	}
	ctx, cancel := withTimeout()
	defer cancel()

	caller := callerFrom(i)
	out, err := c.League.Unregister(ctx, caller)
	if err != nil {
		if errors.Is(err, league.ErrNotRegistered) {
			editReply(s, i, c.Log, "❌ You are not registered.")
			return
		}
		editReply(s, i, c.Log, errorMessage(err))
		return
	}
	editReply(s, i, c.Log, "✅ You have been unregistered."+outcomeNote(out))
}

func (c *UnregisterCommand) GetCategory() string { return "Registration" }

type ListRegisteredCommand struct {
	noComponents
	League *league.Service
	Log    interfaces.Logger
}

func (c *ListRegisteredCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "listregistered",
		Description: "List every registered player",
	}
}

func (c *ListRegisteredCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	players, err := c.League.ListRegistered(callerFrom(i))
	if err != nil {
		respondEphemeral(s, i, c.Log, errorMessage(err))
		return
	}
	if len(players) == 0 {
		respondEphemeral(s, i, c.Log, "No players are registered.")
		return
	}
	if !deferReply(s, i, c.Log, true) {
		return
	}
	replyPages(s, i, c.Log, chunkLines("**Registered players**", registeredLines(players), linesPerPage), true)
}

func (c *ListRegisteredCommand) GetCategory() string { return "Registration" }
