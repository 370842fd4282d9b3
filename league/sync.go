package league

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"leaguebot/storage"

	"golang.org/x/sync/errgroup"
)

// SyncReport summarises one role synchronisation run.
type SyncReport struct {
	Teams   int
	Granted int
	Revoked int
	// Skipped lists teams whose role is unset or no longer exists.
	Skipped []string
	Errors  []error

	mu sync.Mutex
}

func (r *SyncReport) add(granted, revoked int, skipped string, errs []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Teams++
	r.Granted += granted
	r.Revoked += revoked
	if skipped != "" {
		r.Skipped = append(r.Skipped, skipped)
	}
	r.Errors = append(r.Errors, errs...)
}

type teamRoster struct {
	name    string
	roleID  string
	players []string
}

// SyncAll grants every team role to the team's contracted players. Holders
// not on the roster lose the role only when bulk revocation is configured.
// Teams are processed concurrently; one team's failure does not stop the rest.
func (s *Service) SyncAll(ctx context.Context) (*SyncReport, error) {
	var teams []teamRoster
	err := s.store.View(func(l *storage.League) error {
		for _, name := range l.TeamNames() {
			t := l.Teams[name]
			teams = append(teams, teamRoster{name: name, roleID: string(t.RoleID), players: t.PlayerIDs()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.SyncConcurrency)
	for _, t := range teams {
		g.Go(func() error {
			granted, revoked, errs := s.syncTeam(gctx, t, s.cfg.BulkSyncRevokes)
			skipped := ""
			if len(errs) == 1 && errors.Is(errs[0], ErrTeamHasNoRole) {
				skipped, errs = t.name, nil
			}
			report.add(granted, revoked, skipped, errs)
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("role sync finished", "teams", report.Teams, "granted", report.Granted, "revoked", report.Revoked, "skipped", len(report.Skipped), "errors", len(report.Errors))
	return report, ctx.Err()
}

// SyncTeam makes a team role's holders exactly the team's roster. A chairman
// may omit the team name to sync their own team; naming another team needs privilege.
func (s *Service) SyncTeam(ctx context.Context, c Caller, teamName string) (string, *SyncReport, error) {
	privileged := s.perms.IsPrivileged(c.RoleIDs)
	var target teamRoster
	err := s.store.View(func(l *storage.League) error {
		if teamName == "" {
			name, _, ok := l.TeamChairedBy(c.ID)
			if !ok {
				if privileged {
					return ErrTeamNameRequired
				}
				return ErrNotChairman
			}
			teamName = name
		}
		t, ok := l.Teams[teamName]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, teamName)
		}
		if !privileged && t.Chairman != c.ID {
			return ErrPermissionDenied
		}
		target = teamRoster{name: teamName, roleID: string(t.RoleID), players: t.PlayerIDs()}
		return nil
	})
	if err != nil {
		return teamName, nil, err
	}

	granted, revoked, errs := s.syncTeam(ctx, target, true)
	if len(errs) == 1 && errors.Is(errs[0], ErrTeamHasNoRole) {
		return teamName, nil, errs[0]
	}
	report := &SyncReport{}
	report.add(granted, revoked, "", errs)
	return teamName, report, nil
}

func (s *Service) syncTeam(ctx context.Context, t teamRoster, revoke bool) (granted, revoked int, errs []error) {
	if t.roleID == "" {
		return 0, 0, []error{ErrTeamHasNoRole}
	}
	holders, err := s.platform.RoleMembers(ctx, t.roleID)
	if err != nil {
		if errors.Is(err, ErrUnknownRole) {
			return 0, 0, []error{ErrTeamHasNoRole}
		}
		return 0, 0, []error{fmt.Errorf("list members of %s: %w", t.name, err)}
	}
	has := make(map[string]bool, len(holders))
	for _, id := range holders {
		has[id] = true
	}
	listed := make(map[string]bool, len(t.players))

	var out Outcome
	for _, id := range t.players {
		listed[id] = true
		if has[id] {
			continue
		}
		before := len(out.RoleErrors)
		s.grant(ctx, &out, id, t.roleID)
		if len(out.RoleErrors) == before {
			granted++
		}
	}
	if revoke {
		for _, id := range holders {
			if listed[id] {
				continue
			}
			before := len(out.RoleErrors)
			s.revoke(ctx, &out, id, t.roleID)
			if len(out.RoleErrors) == before {
				revoked++
			}
		}
	}
	return granted, revoked, out.RoleErrors
}
