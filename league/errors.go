package league

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotRegistered     = errors.New("player is not registered")
	ErrAlreadyRegistered = errors.New("player is already registered")
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrRosterFull        = errors.New("roster is full")
	ErrNotChairman       = errors.New("caller is not a team chairman")
	ErrIsChairman        = errors.New("player is a team chairman")
	ErrAlreadyAccepted   = errors.New("offer already accepted")
	ErrNoReleaseClause   = errors.New("no contract with a release clause")
	ErrPlayerNotOnTeam   = errors.New("player is not on the team")
	ErrNotSignedToTeam   = errors.New("player is not signed to the team")
	ErrNoStaff           = errors.New("position is vacant")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrOfferClosed       = errors.New("offer is closed")
	ErrNotOfferRecipient = errors.New("offer belongs to another player")
	ErrInvalidSeasons    = errors.New("seasons must be at least 1")
	ErrInvalidRating     = errors.New("rating must not be empty")
	ErrTeamHasNoRole     = errors.New("team has no role")

	// ErrUnknownRole is returned by a Platform when a role id does not exist.
	ErrUnknownRole = errors.New("unknown role")
)

// RoleError is a role grant or revoke that failed after the documents were
// already committed. It is reported, never rolled back.
type RoleError struct {
	Action string // "grant" or "revoke"
	UserID string
	RoleID string
	Err    error
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("%s role %s for user %s: %v", e.Action, e.RoleID, e.UserID, e.Err)
}

func (e *RoleError) Unwrap() error { return e.Err }

// Outcome carries the side effects of a committed mutation that did not succeed.
type Outcome struct {
	RoleErrors   []error
	NotifyFailed bool
}

// Partial reports whether any role change failed.
func (o Outcome) Partial() bool { return len(o.RoleErrors) > 0 }
