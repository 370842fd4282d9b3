package league

import (
	"fmt"

	"leaguebot/storage"
)

// TeamView is a read-only copy of one team with the registry rows of its players.
type TeamView struct {
	Name    string
	Record  storage.TeamRecord
	Players map[string]storage.PlayerRecord
}

// Team returns the named team.
func (s *Service) Team(name string) (TeamView, error) {
	var v TeamView
	err := s.store.View(func(l *storage.League) error {
		t, ok := l.Teams[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, name)
		}
		v = teamView(l, name, t)
		return nil
	})
	return v, err
}

// Teams returns every team ordered by name.
func (s *Service) Teams() ([]TeamView, error) {
	var out []TeamView
	err := s.store.View(func(l *storage.League) error {
		for _, name := range l.TeamNames() {
			out = append(out, teamView(l, name, l.Teams[name]))
		}
		return nil
	})
	return out, err
}

// Players returns every registered player ordered by name.
func (s *Service) Players() ([]storage.PlayerRecord, error) {
	var out []storage.PlayerRecord
	err := s.store.View(func(l *storage.League) error {
		out = l.SortedPlayers()
		return nil
	})
	return out, err
}

func teamView(l *storage.League, name string, t *storage.TeamRecord) TeamView {
	v := TeamView{Name: name, Record: t.Clone(), Players: make(map[string]storage.PlayerRecord, len(t.Contracts))}
	for _, id := range t.PlayerIDs() {
		if p, ok := l.Players[id]; ok {
			v.Players[id] = *p
		}
	}
	return v
}
