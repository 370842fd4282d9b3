package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissions_IsPrivileged(t *testing.T) {
	p := NewPermissions([]string{roleAdmin, roleExec, ""})

	tests := map[string]struct {
		roles []string
		want  bool
	}{
		"admin":          {roles: []string{roleAdmin}, want: true},
		"executive":      {roles: []string{"x", roleExec}, want: true},
		"no roles":       {roles: nil, want: false},
		"unrelated":      {roles: []string{"x", "y"}, want: false},
		"empty role id":  {roles: []string{""}, want: false},
		"free agent too": {roles: []string{roleFreeAgent}, want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.IsPrivileged(tc.roles))
		})
	}
}
