package league

import (
	"context"
	"fmt"

	"leaguebot/storage"
)

// Position is a staff post a chairman can fill on their own team.
type Position int

const (
	PositionManager Position = iota
	PositionAssistant
)

func (p Position) String() string {
	if p == PositionAssistant {
		return "assistant manager"
	}
	return "manager"
}

func (p Position) field(t *storage.TeamRecord) *string {
	if p == PositionAssistant {
		return &t.AssistantManager
	}
	return &t.Manager
}

func (s *Service) positionRole(p Position) string {
	if p == PositionAssistant {
		return s.cfg.Roles.Assistant
	}
	return s.cfg.Roles.Staff
}

func (p Position) events() (hired, unhired storage.EventKind) {
	if p == PositionAssistant {
		return storage.EventAssistantHired, storage.EventAssistantUnhired
	}
	return storage.EventManagerHired, storage.EventManagerUnhired
}

// StaffChange describes a committed staff assignment.
type StaffChange struct {
	Team   string
	UserID string
	// LeftTeams are teams a new chairman's contract was removed from.
	LeftTeams []string
	Outcome
}

// HireChairman makes userID chairman and manager of team, with an open-ended
// contract on that team. Privileged.
func (s *Service) HireChairman(ctx context.Context, c Caller, team, userID, name string) (StaffChange, error) {
	if err := s.perms.require(c); err != nil {
		return StaffChange{}, err
	}
	ch := StaffChange{Team: team, UserID: userID}
	var roleID string
	var oldRoles []string
	err := s.store.Update(func(l *storage.League) error {
		t, ok := l.Teams[team]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, team)
		}
		roleID = string(t.RoleID)
		for _, other := range l.TeamsWithPlayer(userID) {
			if other == team {
				continue
			}
			ot := l.Teams[other]
			ot.Remove(userID)
			oldRoles = append(oldRoles, s.vacatePositions(ot, userID)...)
			if ot.RoleID != t.RoleID {
				oldRoles = append(oldRoles, string(ot.RoleID))
			}
			ch.LeftTeams = append(ch.LeftTeams, other)
		}
		t.Upsert(storage.Contract{PlayerID: userID, Seasons: storage.InfiniteSeasons})
		t.Chairman = userID
		t.Manager = userID

		p, ok := l.Players[userID]
		if !ok {
			p = storage.NewFreeAgent(userID, name)
			l.Players[userID] = p
		}
		if name != "" {
			p.Name = name
		}
		p.SignTo(team)
		inf := storage.InfiniteSeasons
		p.Seasons = &inf
		return nil
	})
	if err != nil {
		return StaffChange{}, err
	}

	s.grant(ctx, &ch.Outcome, userID, s.cfg.Roles.Staff)
	s.grant(ctx, &ch.Outcome, userID, roleID)
	s.revoke(ctx, &ch.Outcome, userID, s.cfg.Roles.FreeAgent)
	for _, r := range oldRoles {
		if r != s.cfg.Roles.Staff {
			s.revoke(ctx, &ch.Outcome, userID, r)
		}
	}
	s.record(ctx, storage.TransferEvent{Kind: storage.EventChairmanHired, PlayerID: userID, Team: team, ActorID: c.ID, Seasons: storage.InfiniteSeasons.String()})
	s.announce(ctx, "👔 %s is the new chairman of **%s**.", mention(userID), team)
	return ch, nil
}

// HireStaff fills a post on the caller's own team. The nominee must be signed to that team.
func (s *Service) HireStaff(ctx context.Context, c Caller, userID string, pos Position) (StaffChange, error) {
	ch := StaffChange{UserID: userID}
	err := s.store.Update(func(l *storage.League) error {
		name, t, ok := l.TeamChairedBy(c.ID)
		if !ok {
			return ErrNotChairman
		}
		ch.Team = name
		p, ok := l.Players[userID]
		if !ok || p.TeamName() != name || !t.HasPlayer(userID) {
			return fmt.Errorf("%w: %s", ErrNotSignedToTeam, name)
		}
		*pos.field(t) = userID
		return nil
	})
	if err != nil {
		return StaffChange{}, err
	}

	s.grant(ctx, &ch.Outcome, userID, s.positionRole(pos))
	hired, _ := pos.events()
	s.record(ctx, storage.TransferEvent{Kind: hired, PlayerID: userID, Team: ch.Team, ActorID: c.ID})
	s.announce(ctx, "📋 %s is now %s of **%s**.", mention(userID), pos, ch.Team)
	return ch, nil
}

// UnhireChairman removes a team's chairman entirely: registry row, contract and
// post. Privileged.
func (s *Service) UnhireChairman(ctx context.Context, c Caller, team string) (StaffChange, error) {
	if err := s.perms.require(c); err != nil {
		return StaffChange{}, err
	}
	ch := StaffChange{Team: team}
	var roleID string
	var stillStaff bool
	err := s.store.Update(func(l *storage.League) error {
		t, ok := l.Teams[team]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, team)
		}
		if t.Chairman == "" {
			return ErrNoStaff
		}
		ch.UserID = t.Chairman
		roleID = string(t.RoleID)
		t.Remove(t.Chairman)
		if t.Manager == t.Chairman {
			t.Manager = ""
		}
		if t.AssistantManager == t.Chairman {
			t.AssistantManager = ""
		}
		t.Chairman = ""
		delete(l.Players, ch.UserID)
		_, _, stillStaff = l.TeamChairedBy(ch.UserID)
		return nil
	})
	if err != nil {
		return StaffChange{}, err
	}

	if !stillStaff {
		s.revoke(ctx, &ch.Outcome, ch.UserID, s.cfg.Roles.Staff)
	}
	s.revoke(ctx, &ch.Outcome, ch.UserID, roleID)
	s.record(ctx, storage.TransferEvent{Kind: storage.EventChairmanUnhired, PlayerID: ch.UserID, Team: team, ActorID: c.ID})
	s.announce(ctx, "👋 %s is no longer chairman of **%s**.", mention(ch.UserID), team)
	return ch, nil
}

// UnhireStaff vacates a post on the caller's own team. The holder keeps their contract.
func (s *Service) UnhireStaff(ctx context.Context, c Caller, pos Position) (StaffChange, error) {
	var ch StaffChange
	var isChairman bool
	err := s.store.Update(func(l *storage.League) error {
		name, t, ok := l.TeamChairedBy(c.ID)
		if !ok {
			return ErrNotChairman
		}
		ch.Team = name
		f := pos.field(t)
		if *f == "" {
			return ErrNoStaff
		}
		ch.UserID = *f
		*f = ""
		_, _, isChairman = l.TeamChairedBy(ch.UserID)
		return nil
	})
	if err != nil {
		return StaffChange{}, err
	}

	// a chairman who was also manager still needs the staff role
	if !(pos == PositionManager && isChairman) {
		s.revoke(ctx, &ch.Outcome, ch.UserID, s.positionRole(pos))
	}
	_, unhired := pos.events()
	s.record(ctx, storage.TransferEvent{Kind: unhired, PlayerID: ch.UserID, Team: ch.Team, ActorID: c.ID})
	s.announce(ctx, "📋 %s is no longer %s of **%s**.", mention(ch.UserID), pos, ch.Team)
	return ch, nil
}
