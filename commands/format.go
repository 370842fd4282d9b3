package commands

import (
	"fmt"
	"sort"
	"strings"

	"leaguebot/handlers"
	"leaguebot/league"
	"leaguebot/storage"

	"github.com/bwmarrin/discordgo"
)

// 一覧系コマンドは 1 メッセージにこの行数まで
const linesPerPage = 10

// chunkLines joins lines into messages of at most size lines each.
func chunkLines(header string, lines []string, size int) []string {
	if size <= 0 {
		size = linesPerPage
	}
	var pages []string
	for start := 0; start < len(lines); start += size {
		end := min(start+size, len(lines))
		page := strings.Join(lines[start:end], "\n")
		if start == 0 && header != "" {
			page = header + "\n" + page
		}
		pages = append(pages, page)
	}
	return pages
}

func mention(userID string) string {
	if userID == "" {
		return "Vacant"
	}
	return "<@" + userID + ">"
}

func playerLine(p storage.PlayerRecord) string {
	team := p.TeamName()
	if team == "" {
		team = "Free agent"
	}
	return fmt.Sprintf("%s (%s) | %s", mention(p.ID), p.Name, team)
}

func registeredLines(players []storage.PlayerRecord) []string {
	lines := make([]string, 0, len(players))
	for _, p := range players {
		lines = append(lines, playerLine(p))
	}
	return lines
}

func twoClubLines(players []storage.PlayerRecord) []string {
	lines := make([]string, 0, len(players))
	for _, p := range players {
		lines = append(lines, fmt.Sprintf("%s (%s)", mention(p.ID), p.Name))
	}
	return lines
}

func ratingLines(players []storage.PlayerRecord) []string {
	lines := make([]string, 0, len(players))
	for _, p := range players {
		lines = append(lines, fmt.Sprintf("%s: **%s**", mention(p.ID), p.Rating))
	}
	return lines
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func profileEmbed(p storage.PlayerRecord) *discordgo.MessageEmbed {
	team := p.TeamName()
	if team == "" {
		team = "None"
	}
	status := string(p.Status)
	if p.Status == storage.StatusFreeAgent {
		status = "Free agent"
	} else if p.Status == storage.StatusSigned {
		status = "Signed"
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Player", Value: mention(p.ID), Inline: true},
		{Name: "Team", Value: team, Inline: true},
		{Name: "Status", Value: status, Inline: true},
		{Name: "Rating", Value: p.Rating, Inline: true},
		{Name: "2C", Value: yesNo(p.TwoClub), Inline: true},
	}
	if p.Seasons != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Seasons", Value: seasonsLabel(*p.Seasons), Inline: true})
	}
	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Player profile: %s", p.Name),
		Color:  handlers.ColorTeal,
		Fields: fields,
	}
}

func seasonsLabel(s storage.Seasons) string {
	if s.Infinite {
		return "∞"
	}
	return fmt.Sprintf("%d", s.Count)
}

func teamInfoEmbed(v league.TeamView, rosterLimit int) *discordgo.MessageEmbed {
	role := "None"
	if v.Record.RoleID != "" {
		role = "<@&" + string(v.Record.RoleID) + ">"
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Team info: %s", v.Name),
		Color: handlers.ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Chairman", Value: mention(v.Record.Chairman), Inline: true},
			{Name: "Manager", Value: mention(v.Record.Manager), Inline: true},
			{Name: "Assistant manager", Value: mention(v.Record.AssistantManager), Inline: true},
			{Name: "Role", Value: role, Inline: true},
			{Name: "Roster", Value: fmt.Sprintf("%d / %d", len(v.Record.Contracts), rosterLimit), Inline: true},
		},
	}
}

func rosterEmbed(v league.TeamView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Roster: %s", v.Name),
		Color: handlers.ColorGold,
	}
	if len(v.Record.Contracts) == 0 {
		embed.Description = "No players are signed to this team."
		return embed
	}
	lines := make([]string, 0, len(v.Record.Contracts))
	for n, c := range v.Record.Contracts {
		line := fmt.Sprintf("%d. %s | %s season(s)", n+1, mention(c.PlayerID), seasonsLabel(c.Seasons))
		if c.ReleaseClause {
			line += " | RC"
		}
		if p, ok := v.Players[c.PlayerID]; ok && p.Rating != storage.NoRating {
			line += " | " + p.Rating
		}
		lines = append(lines, line)
	}
	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d player(s)", len(lines))}
	return embed
}

var eventLabels = map[storage.EventKind]string{
	storage.EventRegistered:       "registered",
	storage.EventUnregistered:     "unregistered",
	storage.EventSigned:           "signed with",
	storage.EventForceSigned:      "was force-signed to",
	storage.EventReleased:         "was released by",
	storage.EventForceReleased:    "was force-released from",
	storage.EventReleaseClause:    "used a release clause to leave",
	storage.EventChairmanHired:    "became chairman of",
	storage.EventChairmanUnhired:  "stepped down as chairman of",
	storage.EventManagerHired:     "became manager of",
	storage.EventManagerUnhired:   "stepped down as manager of",
	storage.EventAssistantHired:   "became assistant manager of",
	storage.EventAssistantUnhired: "stepped down as assistant manager of",
}

func transferLine(e storage.TransferEvent) string {
	label, ok := eventLabels[e.Kind]
	if !ok {
		label = string(e.Kind)
	}
	line := fmt.Sprintf("<t:%d:d> %s %s", e.CreatedAt.Unix(), mention(e.PlayerID), label)
	if e.Team != "" {
		line += " **" + e.Team + "**"
	}
	if e.Seasons != "" {
		line += fmt.Sprintf(" (%s season(s)", e.Seasons)
		if e.ReleaseClause {
			line += ", RC"
		}
		line += ")"
	}
	if e.Reason != "" {
		line += ": " + e.Reason
	}
	return line
}

func transfersEmbed(events []storage.TransferEvent, filter storage.HistoryFilter) *discordgo.MessageEmbed {
	title := "Recent transfers"
	var scope []string
	if filter.Team != "" {
		scope = append(scope, filter.Team)
	}
	if filter.PlayerID != "" {
		scope = append(scope, mention(filter.PlayerID))
	}
	embed := &discordgo.MessageEmbed{Title: title, Color: handlers.ColorBlue}
	if len(scope) > 0 {
		embed.Title += ": " + strings.Join(scope, " / ")
	}
	if len(events) == 0 {
		embed.Description = "No transfers recorded yet."
		return embed
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, transferLine(e))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}

func syncSummary(team string, r *league.SyncReport) string {
	var b strings.Builder
	if team != "" {
		fmt.Fprintf(&b, "🔄 Synced roles for **%s**: %d granted, %d revoked.", team, r.Granted, r.Revoked)
	} else {
		fmt.Fprintf(&b, "🔄 Synced %d team(s): %d granted, %d revoked.", r.Teams, r.Granted, r.Revoked)
	}
	if len(r.Skipped) > 0 {
		skipped := append([]string(nil), r.Skipped...)
		sort.Strings(skipped)
		fmt.Fprintf(&b, "\nSkipped: %s", strings.Join(skipped, ", "))
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n⚠️ %d role update(s) failed.", len(r.Errors))
	}
	return b.String()
}
