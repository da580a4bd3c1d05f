package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListProfiles(ctx context.Context) ([]ProfileRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name FROM profiles ORDER BY email ASC`)
	if err != nil {
		return nil, fmt.Errorf("users: list profiles: %w", err)
	}
	defer rows.Close()

	var result []ProfileRow
	for rows.Next() {
		var row ProfileRow
		if err := rows.Scan(&row.ID, &row.Email, &row.FullName); err != nil {
			return nil, fmt.Errorf("users: scan profile: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *Repository) ListRoles(ctx context.Context) ([]RoleRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, role FROM user_roles`)
	if err != nil {
		return nil, fmt.Errorf("users: list roles: %w", err)
	}
	defer rows.Close()

	var result []RoleRow
	for rows.Next() {
		var row RoleRow
		if err := rows.Scan(&row.UserID, &row.Role); err != nil {
			return nil, fmt.Errorf("users: scan role: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *Repository) ListPermissions(ctx context.Context) ([]PermissionRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, can_add, can_edit, can_delete, is_blocked FROM user_permissions`)
	if err != nil {
		return nil, fmt.Errorf("users: list permissions: %w", err)
	}
	defer rows.Close()

	var result []PermissionRow
	for rows.Next() {
		var row PermissionRow
		if err := rows.Scan(&row.UserID, &row.CanAdd, &row.CanEdit, &row.CanDelete, &row.IsBlocked); err != nil {
			return nil, fmt.Errorf("users: scan permission: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// UpsertRole replaces the role row for a user.
func (r *Repository) UpsertRole(ctx context.Context, userID, role string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role`,
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("users: upsert role: %w", err)
	}
	return nil
}

// UpsertFlags replaces the permission flags for a user.
func (r *Repository) UpsertFlags(ctx context.Context, userID string, flags Flags) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_permissions (user_id, can_add, can_edit, can_delete, is_blocked)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
			can_add = EXCLUDED.can_add,
			can_edit = EXCLUDED.can_edit,
			can_delete = EXCLUDED.can_delete,
			is_blocked = EXCLUDED.is_blocked`,
		userID, flags.CanAdd, flags.CanEdit, flags.CanDelete, flags.IsBlocked,
	)
	if err != nil {
		return fmt.Errorf("users: upsert flags: %w", err)
	}
	return nil
}
