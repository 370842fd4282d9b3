package league

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"leaguebot/storage"
)

// Register adds the caller to the registry as a free agent and grants the free-agent role.
func (s *Service) Register(ctx context.Context, c Caller) (Outcome, error) {
	err := s.store.Update(func(l *storage.League) error {
		if _, ok := l.Players[c.ID]; ok {
			return ErrAlreadyRegistered
		}
		l.Players[c.ID] = storage.NewFreeAgent(c.ID, c.Name)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	s.grant(ctx, &out, c.ID, s.cfg.Roles.FreeAgent)
	s.record(ctx, storage.TransferEvent{Kind: storage.EventRegistered, PlayerID: c.ID, ActorID: c.ID})
	return out, nil
}

// Unregister deletes the caller's registry row. A signed player also leaves
// their team; chairmen must be unhired first.
func (s *Service) Unregister(ctx context.Context, c Caller) (Outcome, error) {
	var teamRoles []string
	var clearedStaff []string
	err := s.store.Update(func(l *storage.League) error {
		if _, ok := l.Players[c.ID]; !ok {
			return ErrNotRegistered
		}
		if name, _, ok := l.TeamChairedBy(c.ID); ok {
			return fmt.Errorf("%w of %s", ErrIsChairman, name)
		}
		for _, name := range l.TeamsWithPlayer(c.ID) {
			t := l.Teams[name]
			t.Remove(c.ID)
			teamRoles = append(teamRoles, string(t.RoleID))
		}
		for _, name := range l.TeamNames() {
			clearedStaff = append(clearedStaff, s.vacatePositions(l.Teams[name], c.ID)...)
		}
		delete(l.Players, c.ID)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	s.revoke(ctx, &out, c.ID, s.cfg.Roles.FreeAgent)
	for _, roleID := range append(teamRoles, clearedStaff...) {
		s.revoke(ctx, &out, c.ID, roleID)
	}
	s.record(ctx, storage.TransferEvent{Kind: storage.EventUnregistered, PlayerID: c.ID, ActorID: c.ID})
	return out, nil
}

// vacatePositions clears manager and assistant posts held by userID and
// returns the roles that go with them.
func (s *Service) vacatePositions(t *storage.TeamRecord, userID string) []string {
	var roles []string
	if t.Manager == userID && t.Chairman != userID {
		t.Manager = ""
		roles = append(roles, s.cfg.Roles.Staff)
	}
	if t.AssistantManager == userID {
		t.AssistantManager = ""
		roles = append(roles, s.cfg.Roles.Assistant)
	}
	return roles
}

// ListRegistered returns every registered player ordered by name. Privileged.
func (s *Service) ListRegistered(c Caller) ([]storage.PlayerRecord, error) {
	if err := s.perms.require(c); err != nil {
		return nil, err
	}
	var out []storage.PlayerRecord
	err := s.store.View(func(l *storage.League) error {
		out = l.SortedPlayers()
		return nil
	})
	return out, err
}

// SetTwoClub records whether a player may be in two clubs. The flag is informational.
func (s *Service) SetTwoClub(c Caller, userID string, allow bool) (storage.PlayerRecord, error) {
	if err := s.perms.require(c); err != nil {
		return storage.PlayerRecord{}, err
	}
	var rec storage.PlayerRecord
	err := s.store.Update(func(l *storage.League) error {
		p, ok := l.Players[userID]
		if !ok {
			return ErrNotRegistered
		}
		p.TwoClub = allow
		rec = *p
		return nil
	})
	return rec, err
}

// ListTwoClub returns players flagged as two-club, ordered by name.
func (s *Service) ListTwoClub() ([]storage.PlayerRecord, error) {
	return s.filterPlayers(func(p storage.PlayerRecord) bool { return p.TwoClub })
}

// AssignRating stores a player's rating. Purely alphabetic ratings are upper-cased.
func (s *Service) AssignRating(c Caller, userID, rating string) (string, error) {
	if err := s.perms.require(c); err != nil {
		return "", err
	}
	rating = NormalizeRating(rating)
	if rating == "" {
		return "", ErrInvalidRating
	}
	err := s.store.Update(func(l *storage.League) error {
		p, ok := l.Players[userID]
		if !ok {
			return ErrNotRegistered
		}
		p.Rating = rating
		return nil
	})
	return rating, err
}

func NormalizeRating(rating string) string {
	rating = strings.TrimSpace(rating)
	if rating == "" {
		return ""
	}
	for _, r := range rating {
		if !unicode.IsLetter(r) {
			return rating
		}
	}
	return strings.ToUpper(rating)
}

// Ratings returns players that have been rated, ordered by name.
func (s *Service) Ratings() ([]storage.PlayerRecord, error) {
	return s.filterPlayers(func(p storage.PlayerRecord) bool { return p.Rating != storage.NoRating })
}

// Profile returns one player's registry row.
func (s *Service) Profile(userID string) (storage.PlayerRecord, error) {
	var rec storage.PlayerRecord
	err := s.store.View(func(l *storage.League) error {
		p, ok := l.Players[userID]
		if !ok {
			return ErrNotRegistered
		}
		rec = *p
		return nil
	})
	return rec, err
}

func (s *Service) filterPlayers(keep func(storage.PlayerRecord) bool) ([]storage.PlayerRecord, error) {
	var out []storage.PlayerRecord
	err := s.store.View(func(l *storage.League) error {
		for _, p := range l.SortedPlayers() {
			if keep(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}
