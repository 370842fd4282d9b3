package league

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoster(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []string{"p1", "p2"} {
		_, err := f.svc.ForceSign(ctx, admin, id, id, "Lions", 1)
		require.NoError(t, err)
	}
	_, err := f.svc.ForceSign(ctx, admin, "p3", "p3", "Tigers", 1)
	require.NoError(t, err)
}

func TestSyncAll_additiveByDefault(t *testing.T) {
	f := newFixture(t)
	seedRoster(t, f)
	// roles drifted: p1 lost theirs, a stranger holds the Lions role
	require.NoError(t, f.platform.RemoveRole(context.Background(), "p1", "role-lions"))
	f.platform.give("stranger", "role-lions")

	rep, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Teams)
	// p1 plus the Lions chairman, who was seeded without the role
	assert.Equal(t, 2, rep.Granted)
	assert.Zero(t, rep.Revoked)
	assert.True(t, f.platform.hasRole("p1", "role-lions"))
	assert.True(t, f.platform.hasRole("stranger", "role-lions"))
}

func TestSyncAll_revokesWhenConfigured(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.BulkSyncRevokes = true })
	seedRoster(t, f)
	f.platform.give("stranger", "role-lions")

	rep, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Revoked)
	assert.False(t, f.platform.hasRole("stranger", "role-lions"))
}

func TestSyncAll_skipsMissingRolesAndKeepsGoing(t *testing.T) {
	f := newFixture(t)
	seedRoster(t, f)
	f.platform.unknownRoles["role-tigers"] = true
	require.NoError(t, f.platform.RemoveRole(context.Background(), "p1", "role-lions"))
	f.platform.addErr["role-lions"] = errBoom

	rep, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Tigers"}, rep.Skipped)
	require.Len(t, rep.Errors, 2)
	assert.ErrorIs(t, rep.Errors[0], errBoom)
}

func TestSyncTeam_permissions(t *testing.T) {
	f := newFixture(t)
	seedRoster(t, f)
	ctx := context.Background()

	tests := map[string]struct {
		caller   Caller
		team     string
		wantTeam string
		wantErr  error
	}{
		"chairman own team by default": {caller: chairman, team: "", wantTeam: "Lions"},
		"chairman names own team":      {caller: chairman, team: "Lions", wantTeam: "Lions"},
		"chairman names other team":    {caller: chairman, team: "Tigers", wantErr: ErrPermissionDenied},
		"admin names any team":         {caller: admin, team: "Tigers", wantTeam: "Tigers"},
		"admin must name a team":       {caller: admin, team: "", wantErr: ErrTeamNameRequired},
		"member without a team":        {caller: nobody, team: "", wantErr: ErrNotChairman},
		"member names a team":          {caller: nobody, team: "Lions", wantErr: ErrPermissionDenied},
		"unknown team":                 {caller: admin, team: "Bears", wantErr: ErrTeamNotFound},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			team, rep, err := f.svc.SyncTeam(ctx, tc.caller, tc.team)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantTeam, team)
			assert.NotNil(t, rep)
		})
	}
}

func TestSyncTeam_isSymmetric(t *testing.T) {
	f := newFixture(t)
	seedRoster(t, f)
	f.platform.give("stranger", "role-lions")
	require.NoError(t, f.platform.RemoveRole(context.Background(), "p2", "role-lions"))

	_, rep, err := f.svc.SyncTeam(context.Background(), chairman, "")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Revoked)
	assert.False(t, f.platform.hasRole("stranger", "role-lions"))
	assert.True(t, f.platform.hasRole("p2", "role-lions"))
	assert.True(t, f.platform.hasRole(chairman.ID, "role-lions"))
}

func TestSyncTeam_teamWithoutRole(t *testing.T) {
	f := newFixture(t)
	f.platform.unknownRoles["role-lions"] = true

	_, _, err := f.svc.SyncTeam(context.Background(), chairman, "Lions")
	assert.ErrorIs(t, err, ErrTeamHasNoRole)
}
