package league

import (
	"context"
	"testing"

	"leaguebot/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForceSign(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.RosterLimit = 1 })
	ctx := context.Background()

	_, err := f.svc.ForceSign(ctx, nobody, "p1", "Pat", "Lions", 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.svc.ForceSign(ctx, admin, "p1", "Pat", "Bears", 1)
	assert.ErrorIs(t, err, ErrTeamNotFound)
	_, err = f.svc.ForceSign(ctx, admin, "p1", "Pat", "Lions", 0)
	assert.ErrorIs(t, err, ErrInvalidSeasons)

	// the roster limit does not apply
	tr, err := f.svc.ForceSign(ctx, executive, "p1", "Pat", "Lions", 2)
	require.NoError(t, err)
	assert.Equal(t, "role-lions", tr.RoleID)
	c, ok := f.league(t).Teams["Lions"].Contract("p1")
	require.True(t, ok)
	assert.False(t, c.ReleaseClause)
	assert.True(t, f.platform.hasRole("p1", "role-lions"))
	assert.Equal(t, storage.EventForceSigned, f.history.kinds()[0])
}

func TestForceSign_renewsExistingContract(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.svc.CreateOffer(chairman, "p1", "Lions", 2)
	require.NoError(t, err)
	_, _, err = f.svc.AcceptOffer(ctx, o.ID, Caller{ID: "p1", Name: "Pat"}, true)
	require.NoError(t, err)

	tr, err := f.svc.ForceSign(ctx, admin, "p1", "Pat", "Lions", 5)
	require.NoError(t, err)

	team := f.league(t).Teams["Lions"]
	assert.Equal(t, []string{chairman.ID, "p1"}, team.PlayerIDs())
	c, _ := team.Contract("p1")
	assert.Equal(t, storage.FixedSeasons(5), c.Seasons)
	assert.False(t, c.ReleaseClause)
	assert.Equal(t, c.Seasons, tr.Seasons)
	assert.False(t, tr.ReleaseClause)

	last := f.history.events[len(f.history.events)-1]
	assert.Equal(t, storage.EventForceSigned, last.Kind)
	assert.Equal(t, "5", last.Seasons)
	assert.False(t, last.ReleaseClause)
	ann := f.platform.announced()
	assert.Contains(t, ann[len(ann)-1], "for 5 season(s)")
}

func TestSign_reportsStoredTerms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.ForceSign(ctx, admin, "p1", "Pat", "Lions", 2)
	require.NoError(t, err)

	// 同じチームへの受諾では既存の契約が残る
	o, err := f.svc.CreateOffer(chairman, "p1", "Lions", 4)
	require.NoError(t, err)
	_, tr, err := f.svc.AcceptOffer(ctx, o.ID, Caller{ID: "p1", Name: "Pat"}, true)
	require.NoError(t, err)

	c, _ := f.league(t).Teams["Lions"].Contract("p1")
	assert.Equal(t, storage.FixedSeasons(2), c.Seasons)
	assert.False(t, c.ReleaseClause)
	assert.Equal(t, c.Seasons, tr.Seasons)
	assert.False(t, tr.ReleaseClause)

	last := f.history.events[len(f.history.events)-1]
	assert.Equal(t, storage.EventSigned, last.Kind)
	assert.Equal(t, "2", last.Seasons)
	assert.False(t, last.ReleaseClause)
	msgs := f.platform.messages(chairman.ID)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[len(msgs)-1], "for 2 season(s). Release clause: No")
	ann := f.platform.announced()
	assert.Contains(t, ann[len(ann)-1], "for 2 season(s)")
}

func TestForceSign_roleFailureIsPartial(t *testing.T) {
	f := newFixture(t)
	f.platform.addErr["role-lions"] = errBoom

	tr, err := f.svc.ForceSign(context.Background(), admin, "p1", "Pat", "Lions", 1)
	require.NoError(t, err)
	assert.True(t, tr.Partial())
	assert.True(t, f.league(t).Teams["Lions"].HasPlayer("p1"))
}

func TestRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.ForceSign(ctx, admin, "p1", "Pat", "Lions", 2)
	require.NoError(t, err)
	_, err = f.svc.HireStaff(ctx, chairman, "p1", PositionManager)
	require.NoError(t, err)

	tests := map[string]struct {
		caller  Caller
		player  string
		team    string
		wantErr error
	}{
		"unknown team":       {caller: chairman, player: "p1", team: "Bears", wantErr: ErrTeamNotFound},
		"other chairman":     {caller: Caller{ID: "chair-tigers"}, player: "p1", team: "Lions", wantErr: ErrNotChairman},
		"admin is not chair": {caller: admin, player: "p1", team: "Lions", wantErr: ErrNotChairman},
		"not on team":        {caller: chairman, player: "p9", team: "Lions", wantErr: ErrPlayerNotOnTeam},
		"the chairman":       {caller: chairman, player: chairman.ID, team: "Lions", wantErr: ErrIsChairman},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Release(ctx, tc.caller, tc.player, tc.team, "")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	tr, err := f.svc.Release(ctx, chairman, "p1", "Lions", "budget cuts")
	require.NoError(t, err)
	assert.False(t, tr.NotifyFailed)

	l := f.league(t)
	assert.False(t, l.Teams["Lions"].HasPlayer("p1"))
	assert.Empty(t, l.Teams["Lions"].Manager)
	p := l.Players["p1"]
	assert.Nil(t, p.Team)
	assert.Equal(t, storage.StatusFreeAgent, p.Status)
	assert.True(t, f.platform.hasRole("p1", roleFreeAgent))
	assert.False(t, f.platform.hasRole("p1", "role-lions"))
	assert.False(t, f.platform.hasRole("p1", roleStaff))
	assert.Contains(t, f.platform.messages("p1")[0], "budget cuts")
}

func TestForceRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.ForceSign(ctx, admin, "p1", "Pat", "Tigers", 2)
	require.NoError(t, err)
	f.platform.dmErr = errBoom

	_, err = f.svc.ForceRelease(ctx, nobody, "p1", "Tigers", "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	tr, err := f.svc.ForceRelease(ctx, admin, "p1", "Tigers", "")
	require.NoError(t, err)
	assert.True(t, tr.NotifyFailed)
	assert.False(t, f.league(t).Teams["Tigers"].HasPlayer("p1"))
	assert.Equal(t, storage.EventForceReleased, f.history.kinds()[1])
}

func TestUseReleaseClause(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	player := Caller{ID: "p1", Name: "Pat"}

	_, err := f.svc.UseReleaseClause(ctx, player)
	assert.ErrorIs(t, err, ErrNoReleaseClause)

	o, err := f.svc.CreateOffer(chairman, "p1", "Lions", 2)
	require.NoError(t, err)
	_, _, err = f.svc.AcceptOffer(ctx, o.ID, player, true)
	require.NoError(t, err)

	tr, err := f.svc.UseReleaseClause(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, "Lions", tr.Team)
	assert.False(t, f.league(t).Teams["Lions"].HasPlayer("p1"))
	assert.Equal(t, storage.StatusFreeAgent, f.league(t).Players["p1"].Status)
	assert.True(t, f.platform.hasRole("p1", roleFreeAgent))

	// one-shot: the contract that carried the clause is gone
	_, err = f.svc.UseReleaseClause(ctx, player)
	assert.ErrorIs(t, err, ErrNoReleaseClause)
}

func TestUseReleaseClause_withoutClause(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	player := Caller{ID: "p1", Name: "Pat"}
	o, err := f.svc.CreateOffer(chairman, "p1", "Lions", 2)
	require.NoError(t, err)
	_, _, err = f.svc.AcceptOffer(ctx, o.ID, player, false)
	require.NoError(t, err)

	_, err = f.svc.UseReleaseClause(ctx, player)
	assert.ErrorIs(t, err, ErrNoReleaseClause)
	assert.True(t, f.league(t).Teams["Lions"].HasPlayer("p1"))
}
