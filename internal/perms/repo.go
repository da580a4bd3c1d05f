package perms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook-app/stockbook/internal/shared"
)

// Repository defines persistence operations for the resolver.
type Repository interface {
	FindRole(ctx context.Context, userID string) (string, error)
	FindPermissions(ctx context.Context, userID string) (PermissionRow, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindRole fetches the role row for a user. Returns shared.ErrNotFound when
// no row exists.
func (r *PGRepository) FindRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := r.pool.QueryRow(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return role, nil
}

// FindPermissions fetches the permission flags for a user. Returns
// shared.ErrNotFound when no row exists.
func (r *PGRepository) FindPermissions(ctx context.Context, userID string) (PermissionRow, error) {
	row := PermissionRow{UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT can_add, can_edit, can_delete, is_blocked FROM user_permissions WHERE user_id = $1`,
		userID,
	).Scan(&row.CanAdd, &row.CanEdit, &row.CanDelete, &row.IsBlocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PermissionRow{}, shared.ErrNotFound
		}
		return PermissionRow{}, err
	}
	return row, nil
}

var _ Repository = (*PGRepository)(nil)
