package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	syncapp "github.com/erp/sallabridge/internal/application/sync"
	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/logger"
)

// SyncExecutor runs scheduler jobs against the sync service. Rate limits are
// surfaced to the scheduler so its backoff can honor Retry-After; other
// per-entity failures are already recorded in the operation log and do not
// fail the whole job.
type SyncExecutor struct {
	service  *syncapp.Service
	products salla.ProductRepository
	logger   *zap.Logger
}

// NewSyncExecutor creates a new SyncExecutor
func NewSyncExecutor(service *syncapp.Service, products salla.ProductRepository, logger *zap.Logger) *SyncExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncExecutor{
		service:  service,
		products: products,
		logger:   logger,
	}
}

// Execute runs one job to completion. The job kind travels in the context so
// queries and nested logs can be traced back to the sweep that issued them.
func (e *SyncExecutor) Execute(ctx context.Context, job *Job) error {
	ctx, log := logger.WithSyncJob(ctx, e.logger, string(job.Kind))

	switch job.Kind {
	case JobOrderPull:
		summary, err := e.service.Importer().ImportOrders(ctx)
		if summary != nil {
			log.Info("order pull finished",
				zap.Int("pages", summary.Pages),
				zap.Int("processed", summary.Processed),
				zap.Int("failed", summary.Failed),
			)
		}
		return err
	case JobStockPush:
		return e.pushAll(ctx)
	case JobStatusCatalog:
		return e.service.SyncStatusCatalog(ctx)
	case JobProductPush:
		result := e.service.PushProduct(ctx, job.LocalKey)
		if result.Outcome == salla.OutcomeError {
			return fmt.Errorf("pushing product %s: %s", job.LocalKey, result.Message)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}
}

// pushAll pushes every sync-enabled product. A rate limit aborts the sweep
// so the scheduler can back off; anything else is logged and the sweep
// continues.
func (e *SyncExecutor) pushAll(ctx context.Context) error {
	codes, err := e.products.ListSyncEnabled(ctx)
	if err != nil {
		return err
	}

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return err
		}

		result := e.service.PushProduct(ctx, code)
		if result.Outcome != salla.OutcomeError {
			continue
		}
		if _, ok := salla.IsRateLimit(result.Err); ok {
			return result.Err
		}
		logger.FromContext(ctx).Warn("stock push failed for product",
			zap.String("product", code),
			zap.String("message", result.Message),
		)
	}
	return nil
}

// Ensure SyncExecutor implements JobExecutor
var _ JobExecutor = (*SyncExecutor)(nil)
