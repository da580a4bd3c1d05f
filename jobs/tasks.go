package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockbook-app/stockbook/internal/products"
	"github.com/stockbook-app/stockbook/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPricingIntegrityScan checks every live product for a current price row.
	TaskPricingIntegrityScan = "pricing:integrity_scan"
	// TaskAuditCleanup prunes audit log entries past the retention window.
	TaskAuditCleanup = "audit:cleanup"
)

// PricingIntegrityPayload carries scheduling metadata.
type PricingIntegrityPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewPricingIntegrityTask constructs an Asynq task for the pricing scan.
func NewPricingIntegrityTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(PricingIntegrityPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPricingIntegrityScan, body, asynq.Queue(QueueDefault)), nil
}

// NewPricingIntegrityHandler returns the handler for TaskPricingIntegrityScan.
// It flags live products with no live price entry, the same rows current-price
// resolution reads, so a flagged code is exactly one that lists at price zero.
// That should not happen because product creation writes the first price in
// the same transaction.
func NewPricingIntegrityHandler(repo products.Repository, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PricingIntegrityPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		list, err := repo.ListProducts(ctx)
		if err != nil {
			return err
		}
		entries, err := repo.ListLivePrices(ctx)
		if err != nil {
			return err
		}
		priced := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			priced[e.ProductCode] = struct{}{}
		}
		var orphans []string
		for _, p := range list {
			if p.IsDeleted {
				continue
			}
			if _, ok := priced[p.Code]; !ok {
				orphans = append(orphans, p.Code)
			}
		}
		if len(orphans) > 0 {
			logger.Warn("products without price history",
				slog.Int("count", len(orphans)),
				slog.Any("codes", orphans))
		} else {
			logger.Info("pricing integrity scan clean")
		}
		return nil
	}
}

// AuditCleanupPayload carries scheduling metadata.
type AuditCleanupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewAuditCleanupTask constructs an Asynq task for audit log pruning.
func NewAuditCleanupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(AuditCleanupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditCleanup, body, asynq.Queue(QueueDefault)), nil
}

// NewAuditCleanupHandler returns the handler for TaskAuditCleanup.
func NewAuditCleanupHandler(audit *shared.AuditLogger, retention time.Duration, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		removed, err := audit.Cleanup(ctx, retention)
		if err != nil {
			return err
		}
		logger.Info("audit log cleanup done", slog.Int64("removed", removed))
		return nil
	}
}
