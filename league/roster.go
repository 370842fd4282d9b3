package league

import (
	"context"
	"fmt"

	"leaguebot/storage"
)

// Transfer describes a committed roster change.
type Transfer struct {
	PlayerID      string
	Team          string
	RoleID        string
	Seasons       storage.Seasons
	ReleaseClause bool
	// LeftTeams are the teams that lost the player's contract.
	LeftTeams []string
	Outcome
}

type signing struct {
	playerID   string
	playerName string
	team       string
	contract   storage.Contract
	upsert     bool // 既存契約の条件を置き換える
	checkLimit int  // 0 disables the roster limit
}

// sign moves the player onto the team inside an Update. Every other team loses
// its contract for the player. An existing contract with the target is kept
// unless upsert is set. The transfer reports the terms actually stored.
func sign(l *storage.League, in signing) (Transfer, []string, error) {
	t, ok := l.Teams[in.team]
	if !ok {
		return Transfer{}, nil, fmt.Errorf("%w: %s", ErrTeamNotFound, in.team)
	}
	if in.checkLimit > 0 && !t.HasPlayer(in.playerID) && len(t.Contracts) >= in.checkLimit {
		return Transfer{}, nil, fmt.Errorf("%w: %s has %d players", ErrRosterFull, in.team, len(t.Contracts))
	}

	tr := Transfer{
		PlayerID: in.playerID,
		Team:     in.team,
		RoleID:   string(t.RoleID),
	}
	var oldRoles []string
	for _, name := range l.TeamsWithPlayer(in.playerID) {
		if name == in.team {
			continue
		}
		other := l.Teams[name]
		other.Remove(in.playerID)
		tr.LeftTeams = append(tr.LeftTeams, name)
		if other.RoleID != t.RoleID {
			oldRoles = append(oldRoles, string(other.RoleID))
		}
	}
	if in.upsert {
		t.Upsert(in.contract)
	} else {
		t.Add(in.contract)
	}
	stored, _ := t.Contract(in.playerID)
	tr.Seasons = stored.Seasons
	tr.ReleaseClause = stored.ReleaseClause

	p, ok := l.Players[in.playerID]
	if !ok {
		p = storage.NewFreeAgent(in.playerID, in.playerName)
		l.Players[in.playerID] = p
	}
	p.SignTo(in.team)
	return tr, oldRoles, nil
}

// applySigningRoles grants the team role and drops the free-agent role and any
// role of a team the player left.
func (s *Service) applySigningRoles(ctx context.Context, tr *Transfer, oldRoles []string) {
	s.grant(ctx, &tr.Outcome, tr.PlayerID, tr.RoleID)
	s.revoke(ctx, &tr.Outcome, tr.PlayerID, s.cfg.Roles.FreeAgent)
	for _, roleID := range oldRoles {
		s.revoke(ctx, &tr.Outcome, tr.PlayerID, roleID)
	}
}

// ForceSign signs a player without an offer and without the roster limit,
// replacing the terms of any contract the player already has with the team. Privileged.
func (s *Service) ForceSign(ctx context.Context, c Caller, playerID, playerName, team string, seasons int) (Transfer, error) {
	if err := s.perms.require(c); err != nil {
		return Transfer{}, err
	}
	if seasons < 1 {
		return Transfer{}, ErrInvalidSeasons
	}
	var tr Transfer
	var oldRoles []string
	err := s.store.Update(func(l *storage.League) error {
		var err error
		tr, oldRoles, err = sign(l, signing{
			playerID:   playerID,
			playerName: playerName,
			team:       team,
			contract:   storage.Contract{PlayerID: playerID, Seasons: storage.FixedSeasons(seasons)},
			upsert:     true,
		})
		return err
	})
	if err != nil {
		return Transfer{}, err
	}

	s.applySigningRoles(ctx, &tr, oldRoles)
	s.record(ctx, storage.TransferEvent{Kind: storage.EventForceSigned, PlayerID: playerID, Team: team, ActorID: c.ID, Seasons: tr.Seasons.String()})
	s.announce(ctx, "📝 %s has been signed to **%s** for %s season(s).", mention(playerID), team, tr.Seasons)
	return tr, nil
}

// Release removes a player from the caller's team. Only that team's chairman may do this.
func (s *Service) Release(ctx context.Context, c Caller, playerID, team, reason string) (Transfer, error) {
	return s.release(ctx, c, playerID, team, reason, storage.EventReleased, func(t *storage.TeamRecord) error {
		if t.Chairman != c.ID {
			return ErrNotChairman
		}
		return nil
	})
}

// ForceRelease removes a player from any team. Privileged.
func (s *Service) ForceRelease(ctx context.Context, c Caller, playerID, team, reason string) (Transfer, error) {
	if err := s.perms.require(c); err != nil {
		return Transfer{}, err
	}
	return s.release(ctx, c, playerID, team, reason, storage.EventForceReleased, nil)
}

func (s *Service) release(ctx context.Context, c Caller, playerID, team, reason string, kind storage.EventKind, authorize func(*storage.TeamRecord) error) (Transfer, error) {
	var tr Transfer
	var staffRoles []string
	err := s.store.Update(func(l *storage.League) error {
		t, ok := l.Teams[team]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, team)
		}
		if authorize != nil {
			if err := authorize(t); err != nil {
				return err
			}
		}
		contract, ok := t.Contract(playerID)
		if !ok {
			return ErrPlayerNotOnTeam
		}
		if t.Chairman == playerID {
			return ErrIsChairman
		}
		t.Remove(playerID)
		staffRoles = s.vacatePositions(t, playerID)
		if p, ok := l.Players[playerID]; ok && p.TeamName() == team {
			p.MakeFreeAgent()
		}
		tr = Transfer{PlayerID: playerID, Team: team, RoleID: string(t.RoleID), Seasons: contract.Seasons, ReleaseClause: contract.ReleaseClause}
		return nil
	})
	if err != nil {
		return Transfer{}, err
	}

	s.revoke(ctx, &tr.Outcome, playerID, tr.RoleID)
	for _, roleID := range staffRoles {
		s.revoke(ctx, &tr.Outcome, playerID, roleID)
	}
	s.grant(ctx, &tr.Outcome, playerID, s.cfg.Roles.FreeAgent)
	if reason == "" {
		reason = "No reason given"
	}
	tr.NotifyFailed = !s.notify(ctx, playerID, "📤 You have been released from **%s**.\nReason: %s", team, reason)
	s.record(ctx, storage.TransferEvent{Kind: kind, PlayerID: playerID, Team: team, ActorID: c.ID, Reason: reason})
	s.announce(ctx, "📤 %s has been released from **%s**.", mention(playerID), team)
	return tr, nil
}

// UseReleaseClause lets the caller leave the first team, by name, whose
// contract with them carries a release clause.
func (s *Service) UseReleaseClause(ctx context.Context, c Caller) (Transfer, error) {
	var tr Transfer
	var chairman string
	var staffRoles []string
	err := s.store.Update(func(l *storage.League) error {
		for _, name := range l.TeamNames() {
			t := l.Teams[name]
			contract, ok := t.Contract(c.ID)
			if !ok || !contract.ReleaseClause {
				continue
			}
			t.Remove(c.ID)
			staffRoles = s.vacatePositions(t, c.ID)
			if p, ok := l.Players[c.ID]; ok && p.TeamName() == name {
				p.MakeFreeAgent()
			}
			tr = Transfer{PlayerID: c.ID, Team: name, RoleID: string(t.RoleID), Seasons: contract.Seasons, ReleaseClause: true}
			chairman = t.Chairman
			return nil
		}
		return ErrNoReleaseClause
	})
	if err != nil {
		return Transfer{}, err
	}

	s.revoke(ctx, &tr.Outcome, c.ID, tr.RoleID)
	for _, roleID := range staffRoles {
		s.revoke(ctx, &tr.Outcome, c.ID, roleID)
	}
	s.grant(ctx, &tr.Outcome, c.ID, s.cfg.Roles.FreeAgent)
	s.notify(ctx, chairman, "🔓 %s used their release clause and left **%s**.", mention(c.ID), tr.Team)
	s.record(ctx, storage.TransferEvent{Kind: storage.EventReleaseClause, PlayerID: c.ID, Team: tr.Team, ActorID: c.ID, ReleaseClause: true})
	s.announce(ctx, "🔓 %s triggered their release clause and left **%s**.", mention(c.ID), tr.Team)
	return tr, nil
}
