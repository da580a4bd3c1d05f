package products

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/stockbook-app/stockbook/internal/shared"
)

// Service implements the product core: full-list loads with derived current
// price, and stamped mutations that keep price history append-only.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a Service. audit may be nil in tests.
func NewService(repo Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Load fetches every product joined with its current price. Products and
// live price entries are fetched concurrently; the first live entry per code
// in (effectivity_date desc, modified_at desc) order wins, zero when none
// exists. Load runs after every mutation; there is no incremental update
// path.
func (s *Service) Load(ctx context.Context) ([]Product, error) {
	var (
		list    []Product
		entries []PriceEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.repo.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.repo.ListLivePrices(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	current := make(map[string]decimal.Decimal, len(list))
	for _, e := range entries {
		if _, ok := current[e.ProductCode]; !ok {
			current[e.ProductCode] = e.UnitPrice
		}
	}
	for i := range list {
		if price, ok := current[list[i].Code]; ok {
			list[i].CurrentPrice = price
		} else {
			list[i].CurrentPrice = decimal.Zero
		}
	}
	return list, nil
}

// Add creates a product and its initial price entry in one transaction.
func (s *Service) Add(ctx context.Context, input AddInput, actorID string) error {
	input.Code = strings.TrimSpace(input.Code)
	input.Description = strings.TrimSpace(input.Description)
	if input.Code == "" {
		return fmt.Errorf("%w: product code required", shared.ErrValidation)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: description required", shared.ErrValidation)
	}
	if input.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", shared.ErrValidation)
	}

	now := time.Now().UTC()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertProduct(ctx, Product{
			Code:          input.Code,
			Description:   input.Description,
			Unit:          input.Unit,
			LastOperation: OperationAdd,
			ModifiedBy:    actorID,
			ModifiedAt:    now,
		}); err != nil {
			return err
		}
		return tx.InsertPriceEntry(ctx, PriceEntry{
			ProductCode:     input.Code,
			UnitPrice:       input.Price,
			EffectivityDate: now,
			OperationKind:   OperationAdd,
			ModifiedBy:      actorID,
			ModifiedAt:      now,
		})
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, actorID, "product.add", input.Code, map[string]any{"price": input.Price.String()})
	return nil
}

// Update applies a partial edit. The code is immutable; a present price
// appends a history entry in the same transaction. The product row itself
// never stores the price.
func (s *Service) Update(ctx context.Context, code string, input UpdateInput, actorID string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: product code required", shared.ErrValidation)
	}
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed == "" {
			return fmt.Errorf("%w: description required", shared.ErrValidation)
		}
		input.Description = &trimmed
	}
	if input.Price != nil && input.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", shared.ErrValidation)
	}

	now := time.Now().UTC()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		affected, err := tx.UpdateProduct(ctx, code, ProductPatch{
			Description:   input.Description,
			Unit:          input.Unit,
			LastOperation: OperationEdit,
			ModifiedBy:    actorID,
			ModifiedAt:    now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("products: %q: %w", code, shared.ErrNotFound)
		}
		if input.Price == nil {
			return nil
		}
		return tx.InsertPriceEntry(ctx, PriceEntry{
			ProductCode:     code,
			UnitPrice:       *input.Price,
			EffectivityDate: now,
			OperationKind:   OperationEdit,
			ModifiedBy:      actorID,
			ModifiedAt:      now,
		})
	})
	if err != nil {
		return err
	}

	meta := map[string]any{}
	if input.Price != nil {
		meta["price"] = input.Price.String()
	}
	s.recordAudit(ctx, actorID, "product.edit", code, meta)
	return nil
}

// SoftDelete flags a product deleted without touching price history. A
// second delete on the same product re-stamps the audit fields; that is
// documented behavior, not guarded against.
func (s *Service) SoftDelete(ctx context.Context, code string, actorID string) error {
	if err := s.setDeleted(ctx, code, true, OperationDelete, actorID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "product.delete", code, nil)
	return nil
}

// Restore clears the deleted flag; price history is left untouched.
func (s *Service) Restore(ctx context.Context, code string, actorID string) error {
	if err := s.setDeleted(ctx, code, false, OperationRecover, actorID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "product.recover", code, nil)
	return nil
}

func (s *Service) setDeleted(ctx context.Context, code string, deleted bool, op Operation, actorID string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: product code required", shared.ErrValidation)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		affected, err := tx.UpdateProduct(ctx, code, ProductPatch{
			IsDeleted:     &deleted,
			LastOperation: op,
			ModifiedBy:    actorID,
			ModifiedAt:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("products: %q: %w", code, shared.ErrNotFound)
		}
		return nil
	})
}

// PriceHistory returns the full history for one code, newest first.
// Soft-deleted entries are included; distinguishing them is the consumer's
// concern.
func (s *Service) PriceHistory(ctx context.Context, code string) ([]PriceEntry, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: product code required", shared.ErrValidation)
	}
	return s.repo.ListPriceHistory(ctx, code)
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, code string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "product",
		EntityID: code,
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.String("action", action), slog.Any("error", err))
	}
}
