package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LeagueStore は選手名簿とチーム名簿のふたつの文書を管理します。
// すべての読み込み-変更-書き込みはひとつのロックの下で行われ、
// 両方の文書はジャーナルを使ってまとめてコミットされます。
type LeagueStore struct {
	mu      sync.Mutex
	players *JSONFile
	teams   *JSONFile
	journal *JSONFile
}

type journalEntry struct {
	Staged string `json:"staged"`
	Target string `json:"target"`
}

type commitJournal struct {
	Entries []journalEntry `json:"entries"`
}

// NewLeagueStore は途中で止まったコミットを復旧してからストアを返します。
func NewLeagueStore(playersPath, teamsPath string) (*LeagueStore, error) {
	s := &LeagueStore{
		players: NewJSONFile(playersPath),
		teams:   NewJSONFile(teamsPath),
		journal: NewJSONFile(filepath.Join(filepath.Dir(teamsPath), ".league-commit.json")),
	}
	if err := s.Recover(); err != nil {
		return nil, err
	}
	return s, nil
}

// View は現在の文書を読み込んで fn に渡します。変更は保存されません。
func (s *LeagueStore) View(fn func(*League) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.load()
	if err != nil {
		return err
	}
	return fn(l)
}

// Update は文書を読み込み、fn が nil を返した場合にだけ両方をコミットします。
func (s *LeagueStore) Update(fn func(*League) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	return s.commit(l)
}

// Snapshot は両方の文書の現在の内容をファイル名ごとに返します。バックアップ用です。
func (s *LeagueStore) Snapshot() (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, 2)
	for _, f := range []*JSONFile{s.players, s.teams} {
		data, err := os.ReadFile(f.Path())
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: read %s: %v", ErrIO, f.Path(), err)
		}
		out[filepath.Base(f.Path())] = data
	}
	return out, nil
}

func (s *LeagueStore) load() (*League, error) {
	l := NewLeague()
	if err := s.players.Load(&l.Players); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := s.teams.Load(&l.Teams); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	// JSON の null は nil マップになる
	if l.Players == nil {
		l.Players = make(map[string]*PlayerRecord)
	}
	if l.Teams == nil {
		l.Teams = make(map[string]*TeamRecord)
	}
	for id, p := range l.Players {
		if p == nil {
			delete(l.Players, id)
			continue
		}
		if p.ID == "" {
			p.ID = id
		}
	}
	for name, t := range l.Teams {
		if t == nil {
			l.Teams[name] = &TeamRecord{}
		}
	}
	return l, nil
}

// commit は両方の文書を一時ファイルに書き、ジャーナルを残してから置き換えます。
// 置き換えの途中で止まっても、次の Recover で残りが適用されます。
func (s *LeagueStore) commit(l *League) error {
	stagedPlayers, err := s.players.stage(l.Players)
	if err != nil {
		return err
	}
	stagedTeams, err := s.teams.stage(l.Teams)
	if err != nil {
		_ = os.Remove(stagedPlayers)
		return err
	}
	j := commitJournal{Entries: []journalEntry{
		{Staged: stagedPlayers, Target: s.players.Path()},
		{Staged: stagedTeams, Target: s.teams.Path()},
	}}
	if err := s.journal.Save(j); err != nil {
		_ = os.Remove(stagedPlayers)
		_ = os.Remove(stagedTeams)
		return err
	}
	return s.apply(j)
}

func (s *LeagueStore) apply(j commitJournal) error {
	for _, e := range j.Entries {
		if err := os.Rename(e.Staged, e.Target); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// already applied
				continue
			}
			return fmt.Errorf("%w: replace %s: %v", ErrIO, e.Target, err)
		}
	}
	if err := os.Remove(s.journal.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove journal: %v", ErrIO, err)
	}
	return nil
}

// Recover は残っているジャーナルを最後まで適用し、孤立した一時ファイルを削除します。
func (s *LeagueStore) Recover() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var j commitJournal
	err := s.journal.Load(&j)
	switch {
	case err == nil:
		if err := s.apply(j); err != nil {
			return fmt.Errorf("recover commit: %w", err)
		}
	case errors.Is(err, ErrNotFound):
	default:
		return fmt.Errorf("recover commit: %w", err)
	}

	for _, f := range []*JSONFile{s.players, s.teams, s.journal} {
		leftovers, err := f.orphans()
		if err != nil {
			return fmt.Errorf("%w: scan temp files: %v", ErrIO, err)
		}
		for _, name := range leftovers {
			_ = os.Remove(name)
		}
	}
	return nil
}
