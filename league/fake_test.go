package league

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"leaguebot/storage"

	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/require"
)

const (
	roleFreeAgent = "fa"
	roleStaff     = "staff"
	roleAssistant = "assistant"
	roleAdmin     = "admin"
	roleExec      = "exec"
)

var (
	admin     = Caller{ID: "admin-1", Name: "Admin", RoleIDs: []string{roleAdmin}}
	executive = Caller{ID: "exec-1", Name: "Exec", RoleIDs: []string{"other", roleExec}}
	nobody    = Caller{ID: "user-9", Name: "Nobody"}
	chairman  = Caller{ID: "chair-lions", Name: "Leo"}
)

// fakePlatform keeps role membership in memory.
type fakePlatform struct {
	mu            sync.Mutex
	roles         map[string]map[string]bool
	dms           map[string][]string
	announcements []string
	unknownRoles  map[string]bool
	addErr        map[string]error
	dmErr         error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		roles:        make(map[string]map[string]bool),
		dms:          make(map[string][]string),
		unknownRoles: make(map[string]bool),
		addErr:       make(map[string]error),
	}
}

func (f *fakePlatform) AddRole(_ context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.addErr[roleID]; err != nil {
		return err
	}
	if f.roles[roleID] == nil {
		f.roles[roleID] = make(map[string]bool)
	}
	f.roles[roleID][userID] = true
	return nil
}

func (f *fakePlatform) RemoveRole(_ context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.roles[roleID], userID)
	return nil
}

func (f *fakePlatform) RoleMembers(_ context.Context, roleID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unknownRoles[roleID] {
		return nil, ErrUnknownRole
	}
	var ids []string
	for id := range f.roles[roleID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakePlatform) SendDirect(_ context.Context, userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms[userID] = append(f.dms[userID], content)
	return nil
}

func (f *fakePlatform) Announce(_ context.Context, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announcements = append(f.announcements, content)
	return nil
}

func (f *fakePlatform) hasRole(userID, roleID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[roleID][userID]
}

func (f *fakePlatform) give(userID, roleID string) {
	_ = f.AddRole(context.Background(), userID, roleID)
}

func (f *fakePlatform) messages(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dms[userID]...)
}

func (f *fakePlatform) announced() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.announcements...)
}

// fakeHistory records events in memory.
type fakeHistory struct {
	mu     sync.Mutex
	events []storage.TransferEvent
}

func (h *fakeHistory) Record(_ context.Context, e storage.TransferEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return nil
}

func (h *fakeHistory) Recent(_ context.Context, f storage.HistoryFilter, limit int) ([]storage.TransferEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []storage.TransferEvent
	for i := len(h.events) - 1; i >= 0 && len(out) < limit; i-- {
		if f.Team == "" || h.events[i].Team == f.Team {
			out = append(out, h.events[i])
		}
	}
	return out, nil
}

func (h *fakeHistory) kinds() []storage.EventKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []storage.EventKind
	for _, e := range h.events {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	svc      *Service
	store    *storage.LeagueStore
	platform *fakePlatform
	history  *fakeHistory
	clock    *clock.Mock
}

const testTimeout = 10 * time.Minute

// newFixture seeds two teams: Lions (chaired by chairman.ID, role "role-lions")
// and Tigers (chaired by "chair-tigers", role "role-tigers").
func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLeagueStore(filepath.Join(dir, "players.json"), filepath.Join(dir, "teams.json"))
	require.NoError(t, err)
	require.NoError(t, store.Update(func(l *storage.League) error {
		l.Teams["Lions"] = &storage.TeamRecord{RoleID: "role-lions", Chairman: chairman.ID, Manager: chairman.ID,
			Contracts: []storage.Contract{{PlayerID: chairman.ID, Seasons: storage.InfiniteSeasons}}}
		l.Teams["Tigers"] = &storage.TeamRecord{RoleID: "role-tigers", Chairman: "chair-tigers"}
		p := storage.NewFreeAgent(chairman.ID, chairman.Name)
		p.SignTo("Lions")
		l.Players[chairman.ID] = p
		return nil
	}))

	cfg := Config{
		Roles:           Roles{FreeAgent: roleFreeAgent, Staff: roleStaff, Assistant: roleAssistant},
		PrivilegedRoles: []string{roleAdmin, roleExec},
		RosterLimit:     20,
		OfferTimeout:    testTimeout,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	f := &fixture{store: store, platform: newFakePlatform(), history: &fakeHistory{}, clock: clock.NewMock()}
	f.svc = NewService(cfg, Deps{Store: store, Platform: f.platform, History: f.history, Clock: f.clock})
	return f
}

func (f *fixture) league(t *testing.T) *storage.League {
	t.Helper()
	var out *storage.League
	require.NoError(t, f.store.View(func(l *storage.League) error {
		out = l
		return nil
	}))
	return out
}

func (f *fixture) register(t *testing.T, c Caller) {
	t.Helper()
	_, err := f.svc.Register(context.Background(), c)
	require.NoError(t, err)
}

var errBoom = errors.New("boom")
