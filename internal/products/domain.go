package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation enumerates the audit kinds stamped on product rows.
type Operation string

const (
	// OperationAdd marks initial creation.
	OperationAdd Operation = "ADD"
	// OperationEdit marks a field or price change.
	OperationEdit Operation = "EDIT"
	// OperationDelete marks a soft delete.
	OperationDelete Operation = "DELETE"
	// OperationRecover marks a restore from soft delete.
	OperationRecover Operation = "RECOVER"
)

// Product represents one product record joined with its derived price.
// CurrentPrice is never stored on the row; it resolves from the latest
// non-deleted price history entry and reads zero when none exists.
type Product struct {
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	IsDeleted     bool            `json:"is_deleted"`
	LastOperation Operation       `json:"last_operation"`
	ModifiedBy    string          `json:"modified_by,omitempty"`
	ModifiedAt    time.Time       `json:"modified_at"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
}

// PriceEntry is one append-only price history record.
type PriceEntry struct {
	ID              int64           `json:"id"`
	ProductCode     string          `json:"product_code"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	EffectivityDate time.Time       `json:"effectivity_date"`
	OperationKind   Operation       `json:"operation_kind"`
	ModifiedBy      string          `json:"modified_by,omitempty"`
	ModifiedAt      time.Time       `json:"modified_at"`
	IsDeleted       bool            `json:"is_deleted"`
}

// AddInput describes a create request.
type AddInput struct {
	Code        string
	Description string
	Unit        string
	Price       decimal.Decimal
}

// UpdateInput describes a partial edit. Nil fields are left untouched; the
// product code itself is immutable and not part of the input.
type UpdateInput struct {
	Description *string
	Unit        *string
	Price       *decimal.Decimal
}

// ProductPatch is the repository-level partial update. Stamp fields are
// always present; nil value fields keep the stored value.
type ProductPatch struct {
	Description   *string
	Unit          *string
	IsDeleted     *bool
	LastOperation Operation
	ModifiedBy    string
	ModifiedAt    time.Time
}
