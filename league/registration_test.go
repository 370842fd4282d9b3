package league

import (
	"context"
	"testing"

	"leaguebot/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := Caller{ID: "alice", Name: "Alice"}

	out, err := f.svc.Register(ctx, alice)
	require.NoError(t, err)
	assert.False(t, out.Partial())
	assert.True(t, f.platform.hasRole("alice", roleFreeAgent))

	p := f.league(t).Players["alice"]
	require.NotNil(t, p)
	assert.Equal(t, "Alice", p.Name)
	assert.Nil(t, p.Team)
	assert.Equal(t, storage.StatusFreeAgent, p.Status)
	assert.False(t, p.TwoClub)
	assert.Equal(t, storage.NoRating, p.Rating)

	_, err = f.svc.Register(ctx, alice)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, []storage.EventKind{storage.EventRegistered}, f.history.kinds())
}

func TestRegister_roleFailureIsReportedNotRolledBack(t *testing.T) {
	f := newFixture(t)
	f.platform.addErr[roleFreeAgent] = errBoom

	out, err := f.svc.Register(context.Background(), Caller{ID: "bob", Name: "Bob"})
	require.NoError(t, err)
	require.True(t, out.Partial())
	var roleErr *RoleError
	require.ErrorAs(t, out.RoleErrors[0], &roleErr)
	assert.Equal(t, "grant", roleErr.Action)
	assert.ErrorIs(t, out.RoleErrors[0], errBoom)
	assert.Contains(t, f.league(t).Players, "bob")
}

func TestUnregister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Unregister(ctx, Caller{ID: "ghost"})
	assert.ErrorIs(t, err, ErrNotRegistered)

	f.register(t, Caller{ID: "alice", Name: "Alice"})
	_, err = f.svc.Unregister(ctx, Caller{ID: "alice"})
	require.NoError(t, err)
	assert.NotContains(t, f.league(t).Players, "alice")
	assert.False(t, f.platform.hasRole("alice", roleFreeAgent))
}

func TestUnregister_signedPlayerLeavesTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.ForceSign(ctx, admin, "alice", "Alice", "Lions", 2)
	require.NoError(t, err)
	_, err = f.svc.HireStaff(ctx, chairman, "alice", PositionAssistant)
	require.NoError(t, err)

	_, err = f.svc.Unregister(ctx, Caller{ID: "alice"})
	require.NoError(t, err)

	lions := f.league(t).Teams["Lions"]
	assert.False(t, lions.HasPlayer("alice"))
	assert.Empty(t, lions.AssistantManager)
	assert.False(t, f.platform.hasRole("alice", "role-lions"))
	assert.False(t, f.platform.hasRole("alice", roleAssistant))

	_, err = f.svc.Unregister(ctx, chairman)
	assert.ErrorIs(t, err, ErrIsChairman)
}

func TestListRegistered(t *testing.T) {
	f := newFixture(t)
	f.register(t, Caller{ID: "b", Name: "Bea"})
	f.register(t, Caller{ID: "a", Name: "Al"})

	_, err := f.svc.ListRegistered(nobody)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	players, err := f.svc.ListRegistered(executive)
	require.NoError(t, err)
	var names []string
	for _, p := range players {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Al", "Bea", "Leo"}, names)
}

func TestTwoClub(t *testing.T) {
	f := newFixture(t)
	f.register(t, Caller{ID: "a", Name: "Al"})

	_, err := f.svc.SetTwoClub(nobody, "a", true)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.svc.SetTwoClub(admin, "missing", true)
	assert.ErrorIs(t, err, ErrNotRegistered)

	rec, err := f.svc.SetTwoClub(admin, "a", true)
	require.NoError(t, err)
	assert.True(t, rec.TwoClub)

	list, err := f.svc.ListTwoClub()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	// the flag does not relax exclusivity
	_, err = f.svc.ForceSign(context.Background(), admin, "a", "Al", "Lions", 1)
	require.NoError(t, err)
	_, err = f.svc.ForceSign(context.Background(), admin, "a", "Al", "Tigers", 1)
	require.NoError(t, err)
	assert.False(t, f.league(t).Teams["Lions"].HasPlayer("a"))
}

func TestNormalizeRating(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"letters":     {input: "abc", want: "ABC"},
		"mixed case":  {input: "sPlus", want: "SPLUS"},
		"with symbol": {input: "a+", want: "a+"},
		"numeric":     {input: "85", want: "85"},
		"padded":      {input: "  b ", want: "B"},
		"blank":       {input: "   ", want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeRating(tc.input))
		})
	}
}

func TestAssignRating(t *testing.T) {
	f := newFixture(t)
	f.register(t, Caller{ID: "a", Name: "Al"})
	f.register(t, Caller{ID: "b", Name: "Bea"})

	_, err := f.svc.AssignRating(nobody, "a", "s")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.svc.AssignRating(admin, "a", " ")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = f.svc.AssignRating(admin, "zz", "s")
	assert.ErrorIs(t, err, ErrNotRegistered)

	got, err := f.svc.AssignRating(admin, "a", "s")
	require.NoError(t, err)
	assert.Equal(t, "S", got)

	rated, err := f.svc.Ratings()
	require.NoError(t, err)
	require.Len(t, rated, 1)
	assert.Equal(t, "S", rated[0].Rating)

	prof, err := f.svc.Profile("b")
	require.NoError(t, err)
	assert.Equal(t, storage.NoRating, prof.Rating)
	_, err = f.svc.Profile("zz")
	assert.ErrorIs(t, err, ErrNotRegistered)
}
