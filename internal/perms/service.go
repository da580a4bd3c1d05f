package perms

import (
	"context"
	"errors"

	"github.com/stockbook-app/stockbook/internal/shared"
)

// Service derives effective capabilities for users.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve computes the effective capability flags for a user. A missing role
// row defaults to RoleUser and a missing permission row to all-false; the
// admin role overrides both to fully granted and never blocked.
func (s *Service) Resolve(ctx context.Context, userID string) (Capabilities, error) {
	role, err := s.repo.FindRole(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return Capabilities{}, err
		}
		role = RoleUser
	}

	if role == RoleAdmin {
		return Capabilities{CanAdd: true, CanEdit: true, CanDelete: true}, nil
	}

	row, err := s.repo.FindPermissions(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return Capabilities{}, err
		}
		return Capabilities{}, nil
	}
	return Capabilities{
		CanAdd:    row.CanAdd,
		CanEdit:   row.CanEdit,
		CanDelete: row.CanDelete,
		IsBlocked: row.IsBlocked,
	}, nil
}

// IsAdmin reports whether the user carries the admin role.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	role, err := s.repo.FindRole(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return role == RoleAdmin, nil
}
