// commands/help.go
package commands

import (
	"fmt"
	"sort"
	"strings"

	"leaguebot/handlers"
	"leaguebot/interfaces"

	"github.com/bwmarrin/discordgo"
)

type HelpCommand struct {
	noComponents
	AllCommands map[string]interfaces.CommandHandler
	Log         interfaces.Logger
}

func (c *HelpCommand) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "help",
		Description: "List the bot's commands",
	}
}

func (c *HelpCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondEmbed(s, i, c.Log, helpEmbed(c.AllCommands), true)
}

func (c *HelpCommand) GetCategory() string { return "Utility" }

func helpEmbed(all map[string]interfaces.CommandHandler) *discordgo.MessageEmbed {
	categorizedCommands := make(map[string][]string)
	for _, cmdHandler := range all {
		def := cmdHandler.GetCommandDef()
		category := cmdHandler.GetCategory()
		if category == "" {
			category = "Other"
		}
		commandInfo := fmt.Sprintf("`/%s` - %s", def.Name, def.Description)
		categorizedCommands[category] = append(categorizedCommands[category], commandInfo)
	}

	categories := make([]string, 0, len(categorizedCommands))
	for k := range categorizedCommands {
		categories = append(categories, k)
	}
	sort.Strings(categories)

	embed := &discordgo.MessageEmbed{
		Title:       "League Bot commands",
		Description: "These are the available commands.",
		Color:       handlers.ColorBlue,
		Fields:      []*discordgo.MessageEmbedField{},
	}
	for _, category := range categories {
		lines := categorizedCommands[category]
		sort.Strings(lines)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("📂 %s", category),
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}
