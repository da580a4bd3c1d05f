package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook-app/stockbook/internal/perms"
	"github.com/stockbook-app/stockbook/internal/shared"
)

type mockUsersRepo struct {
	profiles []ProfileRow
	roles    map[string]string
	flags    map[string]Flags

	listError   error
	upsertError error
}

func newMockUsersRepo() *mockUsersRepo {
	return &mockUsersRepo{
		roles: make(map[string]string),
		flags: make(map[string]Flags),
	}
}

func (m *mockUsersRepo) ListProfiles(ctx context.Context) ([]ProfileRow, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.profiles, nil
}

func (m *mockUsersRepo) ListRoles(ctx context.Context) ([]RoleRow, error) {
	out := make([]RoleRow, 0, len(m.roles))
	for id, role := range m.roles {
		out = append(out, RoleRow{UserID: id, Role: role})
	}
	return out, nil
}

func (m *mockUsersRepo) ListPermissions(ctx context.Context) ([]PermissionRow, error) {
	out := make([]PermissionRow, 0, len(m.flags))
	for id, f := range m.flags {
		out = append(out, PermissionRow{
			UserID:    id,
			CanAdd:    f.CanAdd,
			CanEdit:   f.CanEdit,
			CanDelete: f.CanDelete,
			IsBlocked: f.IsBlocked,
		})
	}
	return out, nil
}

func (m *mockUsersRepo) UpsertRole(ctx context.Context, userID, role string) error {
	if m.upsertError != nil {
		return m.upsertError
	}
	m.roles[userID] = role
	return nil
}

func (m *mockUsersRepo) UpsertFlags(ctx context.Context, userID string, flags Flags) error {
	if m.upsertError != nil {
		return m.upsertError
	}
	m.flags[userID] = flags
	return nil
}

func TestListMergesThreeTables(t *testing.T) {
	repo := newMockUsersRepo()
	repo.profiles = []ProfileRow{
		{ID: "u1", Email: "a@example.com", FullName: "A"},
		{ID: "u2", Email: "b@example.com", FullName: "B"},
		{ID: "u3", Email: "c@example.com", FullName: "C"},
	}
	repo.roles["u1"] = perms.RoleAdmin
	repo.roles["u2"] = perms.RoleUser
	repo.flags["u2"] = Flags{CanAdd: true, IsBlocked: true}

	accounts, err := NewService(repo, nil, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	byID := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	assert.Equal(t, perms.RoleAdmin, byID["u1"].Role)
	assert.False(t, byID["u1"].CanAdd)

	assert.Equal(t, perms.RoleUser, byID["u2"].Role)
	assert.True(t, byID["u2"].CanAdd)
	assert.True(t, byID["u2"].IsBlocked)

	// No role or permission rows: defaults mirror the resolver.
	assert.Equal(t, perms.RoleUser, byID["u3"].Role)
	assert.False(t, byID["u3"].CanAdd)
	assert.False(t, byID["u3"].IsBlocked)
}

func TestListPropagatesFetchError(t *testing.T) {
	repo := newMockUsersRepo()
	repo.listError = errors.New("db down")

	_, err := NewService(repo, nil, nil).List(context.Background())
	require.Error(t, err)
}

func TestSetRole(t *testing.T) {
	repo := newMockUsersRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetRole(ctx, "admin-1", "u1", perms.RoleAdmin))
	assert.Equal(t, perms.RoleAdmin, repo.roles["u1"])

	require.NoError(t, svc.SetRole(ctx, "admin-1", "u1", perms.RoleUser))
	assert.Equal(t, perms.RoleUser, repo.roles["u1"])
}

func TestSetRoleValidation(t *testing.T) {
	svc := NewService(newMockUsersRepo(), nil, nil)
	ctx := context.Background()

	err := svc.SetRole(ctx, "admin-1", "u1", "owner")
	assert.True(t, errors.Is(err, shared.ErrValidation))

	err = svc.SetRole(ctx, "admin-1", "", perms.RoleUser)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestSetFlags(t *testing.T) {
	repo := newMockUsersRepo()
	svc := NewService(repo, nil, nil)

	flags := Flags{CanAdd: true, CanDelete: true, IsBlocked: true}
	require.NoError(t, svc.SetFlags(context.Background(), "admin-1", "u1", flags))
	assert.Equal(t, flags, repo.flags["u1"])
}

func TestSetFlagsValidation(t *testing.T) {
	svc := NewService(newMockUsersRepo(), nil, nil)
	err := svc.SetFlags(context.Background(), "admin-1", "", Flags{})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
