package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook-app/stockbook/internal/products"
)

func sampleHistory() []products.PriceEntry {
	return []products.PriceEntry{
		{
			ProductCode:     "WID-001",
			UnitPrice:       decimal.RequireFromString("1234.50"),
			EffectivityDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			OperationKind:   products.OperationEdit,
			ModifiedBy:      "user-2",
		},
		{
			ProductCode:     "WID-001",
			UnitPrice:       decimal.RequireFromString("10.00"),
			EffectivityDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			OperationKind:   products.OperationAdd,
			ModifiedBy:      "user-1",
			IsDeleted:       true,
		},
	}
}

func TestBuildPriceHistoryHTML(t *testing.T) {
	html, err := BuildPriceHistoryHTML("WID-001", sampleHistory(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, html, "Price History: WID-001")
	assert.Contains(t, html, "2026-02-01")
	assert.Contains(t, html, "1234.50")
	assert.Contains(t, html, "user-2")
	assert.Contains(t, html, "2 entries")
	// The superseded entry stays in the document but is marked deleted.
	assert.Contains(t, html, `class="deleted"`)
	assert.Contains(t, html, "10.00")
}

func TestBuildPriceHistoryHTMLSingleEntry(t *testing.T) {
	html, err := BuildPriceHistoryHTML("WID-001", sampleHistory()[:1], time.Now().UTC())
	require.NoError(t, err)

	assert.Contains(t, html, "1 entry")
	assert.NotContains(t, html, `class="deleted"`)
}
