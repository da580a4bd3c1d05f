package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook-app/stockbook/internal/shared"
)

type memoryRepo struct {
	products map[string]*Product
	order    []string
	history  []PriceEntry
	nextID   int64

	// Error injection
	txError     error
	insertError error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[string]*Product),
		nextID:   1,
	}
}

func (m *memoryRepo) ListProducts(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.order))
	for _, code := range m.order {
		out = append(out, *m.products[code])
	}
	return out, nil
}

func (m *memoryRepo) ListLivePrices(ctx context.Context) ([]PriceEntry, error) {
	out := make([]PriceEntry, 0, len(m.history))
	// Newest first, matching the repository ordering contract.
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].IsDeleted {
			continue
		}
		out = append(out, m.history[i])
	}
	return out, nil
}

func (m *memoryRepo) ListPriceHistory(ctx context.Context, code string) ([]PriceEntry, error) {
	var out []PriceEntry
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].ProductCode == code {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	// Snapshot so a failed fn leaves the repo untouched.
	snapProducts := make(map[string]*Product, len(m.products))
	for k, v := range m.products {
		cp := *v
		snapProducts[k] = &cp
	}
	snapOrder := append([]string(nil), m.order...)
	snapHistory := append([]PriceEntry(nil), m.history...)

	if err := fn(ctx, &memoryTx{repo: m}); err != nil {
		m.products = snapProducts
		m.order = snapOrder
		m.history = snapHistory
		return err
	}
	return nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) InsertProduct(ctx context.Context, p Product) error {
	if t.repo.insertError != nil {
		return t.repo.insertError
	}
	if _, exists := t.repo.products[p.Code]; exists {
		return shared.ErrConflict
	}
	cp := p
	t.repo.products[p.Code] = &cp
	t.repo.order = append(t.repo.order, p.Code)
	return nil
}

func (t *memoryTx) InsertPriceEntry(ctx context.Context, e PriceEntry) error {
	if t.repo.insertError != nil {
		return t.repo.insertError
	}
	e.ID = t.repo.nextID
	t.repo.nextID++
	t.repo.history = append(t.repo.history, e)
	return nil
}

func (t *memoryTx) UpdateProduct(ctx context.Context, code string, patch ProductPatch) (int64, error) {
	p, ok := t.repo.products[code]
	if !ok {
		return 0, nil
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Unit != nil {
		p.Unit = *patch.Unit
	}
	if patch.IsDeleted != nil {
		p.IsDeleted = *patch.IsDeleted
	}
	p.LastOperation = patch.LastOperation
	p.ModifiedBy = patch.ModifiedBy
	p.ModifiedAt = patch.ModifiedAt
	return 1, nil
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, nil, nil)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddCreatesProductWithInitialPrice(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	err := svc.Add(ctx, AddInput{
		Code:        "WID-001",
		Description: "Widget",
		Unit:        "pcs",
		Price:       price("12.50"),
	}, "user-1")
	require.NoError(t, err)

	list, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, "WID-001", got.Code)
	assert.Equal(t, "Widget", got.Description)
	assert.Equal(t, OperationAdd, got.LastOperation)
	assert.Equal(t, "user-1", got.ModifiedBy)
	assert.False(t, got.IsDeleted)
	assert.True(t, got.CurrentPrice.Equal(price("12.50")))

	history, err := svc.PriceHistory(ctx, "WID-001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, OperationAdd, history[0].OperationKind)
}

func TestAddRejectsDuplicateCode(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	input := AddInput{Code: "WID-001", Description: "Widget", Price: price("1.00")}
	require.NoError(t, svc.Add(ctx, input, "user-1"))

	err := svc.Add(ctx, input, "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestAddValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	err := svc.Add(ctx, AddInput{Code: "  ", Description: "Widget", Price: price("1.00")}, "u")
	assert.True(t, errors.Is(err, shared.ErrValidation))

	err = svc.Add(ctx, AddInput{Code: "A", Description: "", Price: price("1.00")}, "u")
	assert.True(t, errors.Is(err, shared.ErrValidation))

	err = svc.Add(ctx, AddInput{Code: "A", Description: "Widget", Price: price("-0.01")}, "u")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestAddRollsBackProductWhenPriceInsertFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, AddInput{Code: "OK", Description: "Fine", Price: price("1.00")}, "u"))

	repo.insertError = errors.New("insert failed")
	err := svc.Add(ctx, AddInput{Code: "BAD", Description: "Broken", Price: price("2.00")}, "u")
	require.Error(t, err)

	repo.insertError = nil
	list, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "OK", list[0].Code)
}

func TestUpdateWithPriceAppendsHistory(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, AddInput{Code: "WID-001", Description: "Widget", Price: price("10.00")}, "user-1"))

	newPrice := price("15.00")
	newDesc := "Widget v2"
	err := svc.Update(ctx, "WID-001", UpdateInput{Description: &newDesc, Price: &newPrice}, "user-2")
	require.NoError(t, err)

	list, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Widget v2", list[0].Description)
	assert.Equal(t, OperationEdit, list[0].LastOperation)
	assert.Equal(t, "user-2", list[0].ModifiedBy)
	assert.True(t, list[0].CurrentPrice.Equal(newPrice))

	history, err := svc.PriceHistory(ctx, "WID-001")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, OperationEdit, history[0].OperationKind)
	assert.Equal(t, OperationAdd, history[1].OperationKind)
}

func TestUpdateWithoutPriceKeepsHistory(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, AddInput{Code: "WID-001", Description: "Widget", Price: price("10.00")}, "u"))

	newDesc := "Renamed"
	require.NoError(t, svc.Update(ctx, "WID-001", UpdateInput{Description: &newDesc}, "u"))

	history, err := svc.PriceHistory(ctx, "WID-001")
	require.NoError(t, err)
	require.Len(t, history, 1)

	list, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.True(t, list[0].CurrentPrice.Equal(price("10.00")))
}

func TestUpdateUnknownCode(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	desc := "Nope"
	err := svc.Update(context.Background(), "MISSING", UpdateInput{Description: &desc}, "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestSoftDeleteAndRestore(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, AddInput{Code: "WID-001", Description: "Widget", Price: price("10.00")}, "u"))

	require.NoError(t, svc.SoftDelete(ctx, "WID-001", "admin-1"))
	list, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDeleted)
	assert.Equal(t, OperationDelete, list[0].LastOperation)
	assert.Equal(t, "admin-1", list[0].ModifiedBy)

	// History survives the delete.
	history, err := svc.PriceHistory(ctx, "WID-001")
	require.NoError(t, err)
	require.Len(t, history, 1)

	require.NoError(t, svc.Restore(ctx, "WID-001", "admin-1"))
	list, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.False(t, list[0].IsDeleted)
	assert.Equal(t, OperationRecover, list[0].LastOperation)
	assert.True(t, list[0].CurrentPrice.Equal(price("10.00")))
}

func TestSoftDeleteTwiceRestamps(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, AddInput{Code: "WID-001", Description: "Widget", Price: price("10.00")}, "u"))
	require.NoError(t, svc.SoftDelete(ctx, "WID-001", "first"))
	require.NoError(t, svc.SoftDelete(ctx, "WID-001", "second"))

	list, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.True(t, list[0].IsDeleted)
	assert.Equal(t, "second", list[0].ModifiedBy)
}

func TestLoadCurrentPriceZeroWithoutHistory(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Now().UTC()
	repo.products["BARE"] = &Product{Code: "BARE", Description: "No price", ModifiedAt: now, LastOperation: OperationAdd}
	repo.order = append(repo.order, "BARE")

	svc := newTestService(repo)
	list, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].CurrentPrice.IsZero())
}

func TestLoadIgnoresDeletedPriceEntries(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, AddInput{Code: "WID-001", Description: "Widget", Price: price("10.00")}, "u"))
	newPrice := price("99.00")
	require.NoError(t, svc.Update(ctx, "WID-001", UpdateInput{Price: &newPrice}, "u"))

	// Flag the newest entry deleted; current price falls back to the older one.
	repo.history[len(repo.history)-1].IsDeleted = true

	list, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.True(t, list[0].CurrentPrice.Equal(price("10.00")))
}
