package products

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

const uniqueViolationCode = "23505"

// PGRepository persists products and price history in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, description, unit, is_deleted, last_operation, modified_by, modified_at FROM products ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		var p Product
		var modifiedBy *string
		if err := rows.Scan(&p.Code, &p.Description, &p.Unit, &p.IsDeleted, &p.LastOperation, &modifiedBy, &p.ModifiedAt); err != nil {
			return nil, fmt.Errorf("products: scan: %w", err)
		}
		if modifiedBy != nil {
			p.ModifiedBy = *modifiedBy
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PGRepository) ListLivePrices(ctx context.Context) ([]PriceEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_code, unit_price, effectivity_date, operation_kind, modified_by, modified_at, is_deleted FROM price_history WHERE is_deleted = FALSE ORDER BY effectivity_date DESC, modified_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("products: list live prices: %w", err)
	}
	defer rows.Close()
	return scanPriceEntries(rows)
}

func (r *PGRepository) ListPriceHistory(ctx context.Context, code string) ([]PriceEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_code, unit_price, effectivity_date, operation_kind, modified_by, modified_at, is_deleted FROM price_history WHERE product_code = $1 ORDER BY effectivity_date DESC, modified_at DESC`, code)
	if err != nil {
		return nil, fmt.Errorf("products: list price history: %w", err)
	}
	defer rows.Close()
	return scanPriceEntries(rows)
}

func scanPriceEntries(rows pgx.Rows) ([]PriceEntry, error) {
	var result []PriceEntry
	for rows.Next() {
		var e PriceEntry
		var modifiedBy *string
		if err := rows.Scan(&e.ID, &e.ProductCode, &e.UnitPrice, &e.EffectivityDate, &e.OperationKind, &modifiedBy, &e.ModifiedAt, &e.IsDeleted); err != nil {
			return nil, fmt.Errorf("products: scan price entry: %w", err)
		}
		if modifiedBy != nil {
			e.ModifiedBy = *modifiedBy
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// WithTx runs fn inside one transaction so a product row and its price entry
// commit or roll back together.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (r *pgTxRepository) InsertProduct(ctx context.Context, p Product) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO products (code, description, unit, is_deleted, last_operation, modified_by, modified_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.Code, p.Description, p.Unit, p.IsDeleted, p.LastOperation, nullable(p.ModifiedBy), p.ModifiedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("products: code %q: %w", p.Code, shared.ErrConflict)
		}
		return fmt.Errorf("products: insert: %w", err)
	}
	return nil
}

func (r *pgTxRepository) InsertPriceEntry(ctx context.Context, e PriceEntry) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO price_history (product_code, unit_price, effectivity_date, operation_kind, modified_by, modified_at, is_deleted) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ProductCode, e.UnitPrice, e.EffectivityDate, e.OperationKind, nullable(e.ModifiedBy), e.ModifiedAt, e.IsDeleted,
	)
	if err != nil {
		return fmt.Errorf("products: insert price entry: %w", err)
	}
	return nil
}

func (r *pgTxRepository) UpdateProduct(ctx context.Context, code string, patch ProductPatch) (int64, error) {
	tag, err := r.tx.Exec(ctx,
		`UPDATE products SET
			description = COALESCE($2, description),
			unit = COALESCE($3, unit),
			is_deleted = COALESCE($4, is_deleted),
			last_operation = $5,
			modified_by = $6,
			modified_at = $7
		WHERE code = $1`,
		code, patch.Description, patch.Unit, patch.IsDeleted, patch.LastOperation, nullable(patch.ModifiedBy), patch.ModifiedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("products: update: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ Repository = (*PGRepository)(nil)
