package league

import (
	"context"

	"leaguebot/storage"
)

// RestoreRoles grants a member who rejoins the guild every role their league
// records imply: free agent, team roles for their contracts, and staff roles.
// It returns the roles it attempted to grant.
func (s *Service) RestoreRoles(ctx context.Context, userID string) ([]string, Outcome, error) {
	var roles []string
	seen := make(map[string]bool)
	add := func(roleID string) {
		if roleID != "" && !seen[roleID] {
			seen[roleID] = true
			roles = append(roles, roleID)
		}
	}
	err := s.store.View(func(l *storage.League) error {
		if p, ok := l.Players[userID]; ok && p.Status == storage.StatusFreeAgent {
			add(s.cfg.Roles.FreeAgent)
		}
		for _, name := range l.TeamsWithPlayer(userID) {
			add(string(l.Teams[name].RoleID))
		}
		for _, name := range l.TeamNames() {
			t := l.Teams[name]
			if t.Chairman == userID || t.Manager == userID {
				add(s.cfg.Roles.Staff)
			}
			if t.AssistantManager == userID {
				add(s.cfg.Roles.Assistant)
			}
		}
		return nil
	})
	if err != nil {
		return nil, Outcome{}, err
	}

	var out Outcome
	for _, roleID := range roles {
		s.grant(ctx, &out, userID, roleID)
	}
	if len(roles) > 0 {
		s.log.Info("restored league roles", "user_id", userID, "roles", len(roles), "failed", len(out.RoleErrors))
	}
	return roles, out, nil
}
