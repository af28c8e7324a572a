package sync

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// Service is the sync entry point used by the HTTP layer and the scheduler.
// Every push goes through the per-entity keyed lock: a second attempt on the
// same (kind, local key) while one is running is reported as skipped rather
// than queued.
type Service struct {
	products   *ProductSyncer
	categories *CategorySyncer
	customers  *CustomerSyncer
	orders     *OrderSyncer
	importer   *BatchImporter
	tracker    *StatusTracker
	locker     salla.SyncLocker
	logger     *zap.Logger
}

// NewService creates a new sync Service
func NewService(
	products *ProductSyncer,
	categories *CategorySyncer,
	customers *CustomerSyncer,
	orders *OrderSyncer,
	importer *BatchImporter,
	tracker *StatusTracker,
	locker salla.SyncLocker,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products:   products,
		categories: categories,
		customers:  customers,
		orders:     orders,
		importer:   importer,
		tracker:    tracker,
		locker:     locker,
		logger:     logger,
	}
}

// PushProduct pushes one product under its sync lock.
func (s *Service) PushProduct(ctx context.Context, code string) salla.SyncResult {
	return s.pushLocked(ctx, s.products, code)
}

// PushCategory pushes one category under its sync lock.
func (s *Service) PushCategory(ctx context.Context, key string) salla.SyncResult {
	return s.pushLocked(ctx, s.categories, key)
}

// PullProduct ingests one remote product under the product's sync lock.
func (s *Service) PullProduct(ctx context.Context, remote *salla.RemoteProduct) salla.SyncResult {
	localKey := remote.SKU
	acquired, err := s.locker.Acquire(ctx, salla.KindProduct, localKey)
	if err != nil {
		return salla.FailedWith(err)
	}
	if !acquired {
		return salla.Skipped(salla.SkipInProgress)
	}
	defer s.release(ctx, salla.KindProduct, localKey)

	return s.products.Pull(ctx, remote)
}

// PullCategory ingests one remote category, sub-tree included, under the
// category's sync lock.
func (s *Service) PullCategory(ctx context.Context, remote salla.RemoteCategory) salla.SyncResult {
	localKey := remote.Name
	acquired, err := s.locker.Acquire(ctx, salla.KindCategory, localKey)
	if err != nil {
		return salla.FailedWith(err)
	}
	if !acquired {
		return salla.Skipped(salla.SkipInProgress)
	}
	defer s.release(ctx, salla.KindCategory, localKey)

	if _, err := s.categories.ImportRemote(ctx, remote, ""); err != nil {
		return salla.FailedWith(err)
	}
	return salla.Success(strconv.FormatInt(remote.ID, 10))
}

// PullOrder ingests one remote order under the order's sync lock.
func (s *Service) PullOrder(ctx context.Context, remote *salla.RemoteOrder) salla.SyncResult {
	localKey := "SO-" + strconv.FormatInt(remote.ReferenceID, 10)
	acquired, err := s.locker.Acquire(ctx, salla.KindOrder, localKey)
	if err != nil {
		return salla.FailedWith(err)
	}
	if !acquired {
		return salla.Skipped(salla.SkipInProgress)
	}
	defer s.release(ctx, salla.KindOrder, localKey)

	return s.orders.Pull(ctx, remote)
}

// MarkOrderFulfilled reports fulfilment under the order's sync lock.
func (s *Service) MarkOrderFulfilled(ctx context.Context, orderID string) salla.SyncResult {
	acquired, err := s.locker.Acquire(ctx, salla.KindOrder, orderID)
	if err != nil {
		return salla.FailedWith(err)
	}
	if !acquired {
		return salla.Skipped(salla.SkipInProgress)
	}
	defer s.release(ctx, salla.KindOrder, orderID)

	return s.orders.MarkFulfilled(ctx, orderID)
}

// ProductStatus returns a product's aggregate field sync status.
func (s *Service) ProductStatus(ctx context.Context, code string) (salla.FieldSyncStatus, error) {
	return s.tracker.Status(ctx, salla.KindProduct, code)
}

// SyncStatusCatalog refreshes the order status catalog.
func (s *Service) SyncStatusCatalog(ctx context.Context) error {
	return s.orders.SyncStatusCatalog(ctx)
}

// LinkExistingProducts binds unlinked sync-enabled products to platform
// records sharing their SKU.
func (s *Service) LinkExistingProducts(ctx context.Context) (int, error) {
	return s.products.LinkExisting(ctx)
}

// Importer exposes the paginated pull loops.
func (s *Service) Importer() *BatchImporter {
	return s.importer
}

func (s *Service) pushLocked(ctx context.Context, m salla.EntitySyncManager, localKey string) salla.SyncResult {
	acquired, err := s.locker.Acquire(ctx, m.Kind(), localKey)
	if err != nil {
		return salla.FailedWith(err)
	}
	if !acquired {
		return salla.Skipped(salla.SkipInProgress)
	}
	defer s.release(ctx, m.Kind(), localKey)

	return m.Push(ctx, localKey)
}

func (s *Service) release(ctx context.Context, kind salla.EntityKind, localKey string) {
	if err := s.locker.Release(ctx, kind, localKey); err != nil {
		s.logger.Warn("failed to release sync lock",
			zap.String("kind", kind.String()),
			zap.String("local_key", localKey),
			zap.Error(err),
		)
	}
}
