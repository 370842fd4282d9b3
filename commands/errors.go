package commands

import (
	"errors"
	"fmt"
	"strings"

	"leaguebot/league"
	"leaguebot/storage"
)

// userMessages は league のエラーを利用者向けの短い文に変換します。
// 上から順に errors.Is で照合します。
var userMessages = []struct {
	err error
	msg string
}{
	{league.ErrPermissionDenied, "You do not have permission to use this command."},
	{league.ErrNotRegistered, "That player is not registered."},
	{league.ErrAlreadyRegistered, "You are already registered."},
	{league.ErrTeamNotFound, "That team does not exist."},
	{league.ErrTeamNameRequired, "Please give a team name."},
	{league.ErrRosterFull, "The roster is full."},
	{league.ErrNotChairman, "Only the team's chairman can do that."},
	{league.ErrIsChairman, "A team chairman cannot do that. Ask an admin to unhire them first."},
	{league.ErrAlreadyAccepted, "You have already accepted this offer."},
	{league.ErrNoReleaseClause, "You have no contract with a release clause."},
	{league.ErrPlayerNotOnTeam, "That player is not on the team."},
	{league.ErrNotSignedToTeam, "That member is not signed to your team."},
	{league.ErrNoStaff, "That position is already vacant."},
	{league.ErrOfferNotFound, "This offer is no longer available."},
	{league.ErrOfferClosed, "This offer has already been closed."},
	{league.ErrNotOfferRecipient, "This offer is not for you."},
	{league.ErrInvalidSeasons, "Seasons must be at least 1."},
	{league.ErrInvalidRating, "Please give a rating."},
	{league.ErrTeamHasNoRole, "That team has no role configured."},
	{league.ErrUnknownRole, "The team's role no longer exists."},
	{storage.ErrParse, "League data is corrupted. Please contact an admin."},
	{storage.ErrIO, "Could not save league data. Please try again later."},
}

// errorMessage returns the text shown to the user for err.
func errorMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return "❌ " + m.msg
		}
	}
	return "❌ Something went wrong. Please try again later."
}

// outcomeNote describes the partial failures of a committed change, or "".
func outcomeNote(out league.Outcome) string {
	var notes []string
	if out.Partial() {
		var b strings.Builder
		b.WriteString("⚠️ The change was saved, but some roles could not be updated:")
		for _, err := range out.RoleErrors {
			var roleErr *league.RoleError
			if errors.As(err, &roleErr) {
				fmt.Fprintf(&b, "\n- %s <@&%s> for <@%s>", roleErr.Action, roleErr.RoleID, roleErr.UserID)
			} else {
				fmt.Fprintf(&b, "\n- %v", err)
			}
		}
		notes = append(notes, b.String())
	}
	if out.NotifyFailed {
		notes = append(notes, "⚠️ The player could not be sent a direct message.")
	}
	if len(notes) == 0 {
		return ""
	}
	return "\n" + strings.Join(notes, "\n")
}
