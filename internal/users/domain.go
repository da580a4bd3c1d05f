package users

// Account is one row of the administration view: a profile joined with its
// role and raw permission flags. Flags here are the stored values, not the
// admin-overridden effective ones.
type Account struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	CanAdd    bool   `json:"can_add"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
	IsBlocked bool   `json:"is_blocked"`
}

// Flags carries the four stored permission booleans for one user.
type Flags struct {
	CanAdd    bool `json:"can_add"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	IsBlocked bool `json:"is_blocked"`
}

// ProfileRow mirrors a profiles record before merging.
type ProfileRow struct {
	ID       string
	Email    string
	FullName string
}

// RoleRow mirrors a user_roles record before merging.
type RoleRow struct {
	UserID string
	Role   string
}

// PermissionRow mirrors a user_permissions record before merging.
type PermissionRow struct {
	UserID    string
	CanAdd    bool
	CanEdit   bool
	CanDelete bool
	IsBlocked bool
}
