package products

import "github.com/shopspring/decimal"

type addRequest struct {
	Code        string          `json:"code" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
}

// updateRequest carries a partial edit; absent fields stay untouched. A code
// field is deliberately not accepted.
type updateRequest struct {
	Description *string          `json:"description"`
	Unit        *string          `json:"unit"`
	Price       *decimal.Decimal `json:"price"`
}

type listResponse struct {
	Products []Product `json:"products"`
}

type historyResponse struct {
	ProductCode string       `json:"product_code"`
	Entries     []PriceEntry `json:"entries"`
}
