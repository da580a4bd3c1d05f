package perms

// Role names stored in user_roles. Exactly one row per user; a missing row
// reads as RoleUser.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Capability identifies one mutating action a user may perform.
type Capability string

const (
	CapabilityAdd    Capability = "add"
	CapabilityEdit   Capability = "edit"
	CapabilityDelete Capability = "delete"
)

// Capabilities are the effective flags for a user after the admin override
// is applied. Admins read as all-granted and never blocked, whatever the
// stored permission row says.
type Capabilities struct {
	CanAdd    bool `json:"can_add"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	IsBlocked bool `json:"is_blocked"`
}

// Allows reports whether the capability flag for the given action is set.
func (c Capabilities) Allows(cap Capability) bool {
	switch cap {
	case CapabilityAdd:
		return c.CanAdd
	case CapabilityEdit:
		return c.CanEdit
	case CapabilityDelete:
		return c.CanDelete
	}
	return false
}

// PermissionRow mirrors one user_permissions record before the role
// override is applied.
type PermissionRow struct {
	UserID    string
	CanAdd    bool
	CanEdit   bool
	CanDelete bool
	IsBlocked bool
}
