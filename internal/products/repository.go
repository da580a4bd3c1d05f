package products

import "context"

// Repository defines persistence operations for the product core.
type Repository interface {
	// ListProducts returns every product row ordered by code ascending.
	ListProducts(ctx context.Context) ([]Product, error)
	// ListLivePrices returns all non-deleted price entries ordered by
	// (effectivity_date desc, modified_at desc), the order current-price
	// resolution depends on.
	ListLivePrices(ctx context.Context) ([]PriceEntry, error)
	// ListPriceHistory returns every entry for one code, newest first,
	// soft-deleted entries included.
	ListPriceHistory(ctx context.Context, code string) ([]PriceEntry, error)
	// WithTx runs fn against a transactional view; the product row and its
	// price entry commit or roll back together.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository groups the write operations issued inside one transaction.
type TxRepository interface {
	// InsertProduct creates a product row. A duplicate code surfaces as
	// shared.ErrConflict.
	InsertProduct(ctx context.Context, p Product) error
	// InsertPriceEntry appends one price history row.
	InsertPriceEntry(ctx context.Context, e PriceEntry) error
	// UpdateProduct applies a partial update and returns the number of rows
	// affected.
	UpdateProduct(ctx context.Context, code string, patch ProductPatch) (int64, error)
}
