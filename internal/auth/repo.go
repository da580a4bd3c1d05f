package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook-app/stockbook/internal/platform/db"
	"github.com/stockbook-app/stockbook/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	// CreateAccount inserts the profile together with its default role and
	// permission rows in one transaction.
	CreateAccount(ctx context.Context, profile Profile) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a profile by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, password_hash, created_at FROM profiles WHERE email = $1`,
		email,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find by email: %w", err)
	}
	return &p, nil
}

// CreateAccount writes profile, role and permission rows atomically. New
// accounts start as role "user" with every capability flag off.
func (r *PGRepository) CreateAccount(ctx context.Context, profile Profile) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO profiles (id, email, full_name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
			profile.ID, profile.Email, profile.FullName, profile.PasswordHash, profile.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("auth: email %q: %w", profile.Email, shared.ErrConflict)
			}
			return fmt.Errorf("auth: insert profile: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, 'user')`, profile.ID); err != nil {
			return fmt.Errorf("auth: insert role: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO user_permissions (user_id) VALUES ($1)`, profile.ID); err != nil {
			return fmt.Errorf("auth: insert permissions: %w", err)
		}
		return nil
	})
}

var _ Repository = (*PGRepository)(nil)
