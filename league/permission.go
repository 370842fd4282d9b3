package league

// Caller identifies the member invoking an operation.
type Caller struct {
	ID      string
	Name    string
	RoleIDs []string
}

// Permissions holds the privileged role set: admin and executive roles combined.
type Permissions struct {
	privileged map[string]struct{}
}

func NewPermissions(roleIDs []string) Permissions {
	p := Permissions{privileged: make(map[string]struct{}, len(roleIDs))}
	for _, id := range roleIDs {
		if id != "" {
			p.privileged[id] = struct{}{}
		}
	}
	return p
}

// IsPrivileged reports whether any of roleIDs is privileged.
func (p Permissions) IsPrivileged(roleIDs []string) bool {
	for _, id := range roleIDs {
		if _, ok := p.privileged[id]; ok {
			return true
		}
	}
	return false
}

func (p Permissions) require(c Caller) error {
	if !p.IsPrivileged(c.RoleIDs) {
		return ErrPermissionDenied
	}
	return nil
}
