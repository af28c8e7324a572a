package sync

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// ProductSyncer pushes local products to the platform and ingests remote
// product records. A push is idempotent: the external link, then the SKU,
// identify an existing remote record before anything is created.
type ProductSyncer struct {
	products salla.ProductRepository
	links    salla.LinkRepository
	client   salla.Client
	payloads *ProductPayloadBuilder
	tracker  *StatusTracker
	images   *ImageReconciler
	stock    *StockAllocator
	ops      salla.SyncOperationRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewProductSyncer creates a new ProductSyncer
func NewProductSyncer(
	products salla.ProductRepository,
	links salla.LinkRepository,
	client salla.Client,
	payloads *ProductPayloadBuilder,
	tracker *StatusTracker,
	images *ImageReconciler,
	stock *StockAllocator,
	ops salla.SyncOperationRepository,
	logger *zap.Logger,
) *ProductSyncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductSyncer{
		products: products,
		links:    links,
		client:   client,
		payloads: payloads,
		tracker:  tracker,
		images:   images,
		stock:    stock,
		ops:      ops,
		logger:   logger,
		now:      time.Now,
	}
}

// Kind returns the entity kind this syncer handles
func (s *ProductSyncer) Kind() salla.EntityKind {
	return salla.KindProduct
}

// ShouldSync reports whether the product's entity-level flag is set.
func (s *ProductSyncer) ShouldSync(ctx context.Context, code string) (bool, error) {
	p, err := s.products.ByCode(ctx, code)
	if err != nil {
		return false, err
	}
	return p.Flags.Enabled, nil
}

// Push sends one product to the platform. The remote record is resolved via
// the external link, then by SKU; only when both miss is a new record
// created. Creation persists the link before the secondary-locale update so
// a crash in between never creates a duplicate.
func (s *ProductSyncer) Push(ctx context.Context, code string) salla.SyncResult {
	p, err := s.products.ByCode(ctx, code)
	if err != nil {
		return s.recordPush(ctx, code, "", salla.FailedWith(err))
	}
	if !p.Flags.Enabled {
		return s.recordPush(ctx, code, "", salla.Skipped("sync disabled for product"))
	}

	fields := p.Flags.EnabledFields()
	if err := s.tracker.MarkPending(ctx, salla.KindProduct, code, fields); err != nil {
		return s.recordPush(ctx, code, "", salla.FailedWith(err))
	}

	remoteID, created, err := s.resolveOrCreate(ctx, p)
	if err != nil {
		s.markAll(ctx, code, fields, err)
		return s.recordPush(ctx, code, "", salla.FailedWith(err))
	}

	if created {
		// The SKU is only ever written on create, so its state is recorded
		// here instead of in the sweep.
		if err := s.tracker.MarkSynced(ctx, salla.KindProduct, code,
			[]string{salla.FieldSKU}); err != nil {
			s.logger.Warn("failed to record field sync result",
				zap.String("product", code), zap.Error(err))
		}
	} else {
		if err := s.update(ctx, p, remoteID); err != nil {
			s.markAll(ctx, code, fields, err)
			return s.recordPush(ctx, code, remoteString(remoteID), salla.FailedWith(err))
		}
	}

	coreFields := withoutField(fields, salla.FieldImages)
	if err := s.tracker.MarkSynced(ctx, salla.KindProduct, code, coreFields); err != nil {
		s.logger.Warn("failed to record field sync result",
			zap.String("product", code), zap.Error(err))
	}

	if p.Flags.Images {
		if err := s.images.Reconcile(ctx, code, remoteID, p.ImageRefs); err != nil {
			if markErr := s.tracker.MarkFailed(ctx, salla.KindProduct, code,
				[]string{salla.FieldImages}, err.Error()); markErr != nil {
				s.logger.Warn("failed to record image sync failure",
					zap.String("product", code), zap.Error(markErr))
			}
			return s.recordPush(ctx, code, remoteString(remoteID), salla.FailedWith(err))
		}
		if err := s.tracker.MarkSynced(ctx, salla.KindProduct, code,
			[]string{salla.FieldImages}); err != nil {
			s.logger.Warn("failed to record field sync result",
				zap.String("product", code), zap.Error(err))
		}
	} else if err := s.images.CarryForward(ctx, code, p.ImageRefs); err != nil {
		s.logger.Warn("failed to carry image manifest forward",
			zap.String("product", code), zap.Error(err))
	}

	return s.recordPush(ctx, code, remoteString(remoteID), salla.Success(remoteString(remoteID)))
}

// Pull ingests one remote product record. A record already linked is left
// untouched, and a local product matched by SKU only gains the link; once a
// product exists locally its fields are authoritative and flow outward.
// Only a record unknown on both counts materializes a new local product.
func (s *ProductSyncer) Pull(ctx context.Context, remote *salla.RemoteProduct) salla.SyncResult {
	remoteID := strconv.FormatInt(remote.ID, 10)

	link, err := s.links.ByRemote(ctx, salla.KindProduct, remoteID)
	if err == nil {
		return s.recordPull(ctx, link.LocalKey, remoteID, salla.Success(remoteID))
	}
	if !errors.Is(err, salla.ErrLinkNotFound) {
		return s.recordPull(ctx, remote.SKU, remoteID, salla.FailedWith(err))
	}

	code := remote.SKU
	if code == "" {
		return s.recordPull(ctx, "", remoteID, salla.Skipped("remote product carries no sku"))
	}

	if _, err := s.products.ByCode(ctx, code); err == nil {
		// Already present locally, bind without overwriting
		if err := s.saveLink(ctx, code, remote); err != nil {
			return s.recordPull(ctx, code, remoteID, salla.FailedWith(err))
		}
		return s.recordPull(ctx, code, remoteID, salla.Success(remoteID))
	}

	// Unknown locally, create a fresh record with sync disabled so a
	// pull never silently enrolls a product in pushes.
	p := &salla.Product{
		Code: code,
		Translations: map[string]salla.ProductTranslation{
			LocalePrimary: {
				Name:        remote.Name,
				Description: remote.Description,
			},
		},
		Price:    remote.Price.Amount,
		Weight:   remote.Weight,
		Disabled: remote.Status == statusHidden,
	}
	if err := s.products.Save(ctx, p); err != nil {
		return s.recordPull(ctx, code, remoteID, salla.FailedWith(err))
	}
	if err := s.saveLink(ctx, code, remote); err != nil {
		return s.recordPull(ctx, code, remoteID, salla.FailedWith(err))
	}
	return s.recordPull(ctx, code, remoteID, salla.Success(remoteID))
}

// LinkExisting walks every sync-enabled product without a link and binds it
// to the platform record with the same SKU, when one exists. It returns the
// number of links established.
func (s *ProductSyncer) LinkExisting(ctx context.Context) (int, error) {
	codes, err := s.products.ListSyncEnabled(ctx)
	if err != nil {
		return 0, err
	}

	linked := 0
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return linked, err
		}

		_, err := s.links.ByLocal(ctx, salla.KindProduct, code)
		if err == nil {
			continue
		}
		if !errors.Is(err, salla.ErrLinkNotFound) {
			return linked, err
		}

		remote, err := s.client.GetProductBySKU(ctx, code)
		if err != nil {
			if salla.IsNotFound(err) {
				continue
			}
			return linked, err
		}
		if err := s.saveLink(ctx, code, remote); err != nil {
			return linked, err
		}
		linked++
	}
	return linked, nil
}

// ---------------------------------------------------------------------------
// internals
// ---------------------------------------------------------------------------

// resolveOrCreate returns the platform id for the product, creating the
// remote record when neither the link nor a SKU lookup finds one. The
// returned bool is true when this call created the record, in which case the
// secondary-locale translation has already been pushed.
func (s *ProductSyncer) resolveOrCreate(ctx context.Context, p *salla.Product) (int64, bool, error) {
	link, err := s.links.ByLocal(ctx, salla.KindProduct, p.Code)
	if err == nil {
		id, perr := strconv.ParseInt(link.RemoteID, 10, 64)
		if perr != nil {
			return 0, false, perr
		}
		return id, false, nil
	}
	if !errors.Is(err, salla.ErrLinkNotFound) {
		return 0, false, err
	}

	remote, err := s.client.GetProductBySKU(ctx, p.Code)
	if err == nil {
		if err := s.saveLink(ctx, p.Code, remote); err != nil {
			return 0, false, err
		}
		return remote.ID, false, nil
	}
	if !salla.IsNotFound(err) {
		return 0, false, err
	}

	// Not on the platform at all, create it
	payload, err := s.payloads.BuildCreate(ctx, p)
	if err != nil {
		return 0, false, err
	}
	if p.Flags.Stock {
		qty, err := s.stock.TotalAvailable(ctx, p.Code)
		if err != nil {
			return 0, false, err
		}
		payload.Quantity = &qty
	}

	created, err := s.client.CreateProduct(ctx, payload, LocalePrimary)
	if err != nil {
		return 0, false, err
	}
	if err := s.saveLink(ctx, p.Code, created); err != nil {
		return 0, false, err
	}

	// Secondary-locale translation follows after the link is durable
	if err := s.updateLocale(ctx, p, created.ID, LocaleSecondary); err != nil {
		return 0, false, err
	}
	return created.ID, true, nil
}

// update pushes the flag-selected fields for both locales.
func (s *ProductSyncer) update(ctx context.Context, p *salla.Product, remoteID int64) error {
	if err := s.updateLocale(ctx, p, remoteID, LocalePrimary); err != nil {
		return err
	}
	return s.updateLocale(ctx, p, remoteID, LocaleSecondary)
}

func (s *ProductSyncer) updateLocale(ctx context.Context, p *salla.Product, remoteID int64, locale string) error {
	payload, err := s.payloads.BuildUpdate(ctx, p, locale)
	if err != nil {
		return err
	}
	if locale == LocalePrimary && p.Flags.Stock {
		qty, err := s.stock.TotalAvailable(ctx, p.Code)
		if err != nil {
			return err
		}
		payload.Quantity = &qty
	}
	if payloadEmpty(payload) {
		return nil
	}
	_, err = s.client.UpdateProduct(ctx, remoteID, payload, locale)
	return err
}

func (s *ProductSyncer) saveLink(ctx context.Context, code string, remote *salla.RemoteProduct) error {
	return s.links.Save(ctx, &salla.ExternalLink{
		Kind:      salla.KindProduct,
		LocalKey:  code,
		RemoteID:  strconv.FormatInt(remote.ID, 10),
		AdminURL:  remote.URLs.Admin,
		PublicURL: remote.URLs.Customer,
		CreatedAt: s.now(),
	})
}

func (s *ProductSyncer) markAll(ctx context.Context, code string, fields []string, pushErr error) {
	if err := s.tracker.MarkResult(ctx, salla.KindProduct, code, fields, pushErr); err != nil {
		s.logger.Warn("failed to record field sync result",
			zap.String("product", code), zap.Error(err))
	}
}

func (s *ProductSyncer) recordPush(ctx context.Context, code, remoteID string, result salla.SyncResult) salla.SyncResult {
	s.record(ctx, salla.DirectionPush, code, remoteID, result)
	return result
}

func (s *ProductSyncer) recordPull(ctx context.Context, code, remoteID string, result salla.SyncResult) salla.SyncResult {
	s.record(ctx, salla.DirectionPull, code, remoteID, result)
	return result
}

func (s *ProductSyncer) record(ctx context.Context, dir salla.SyncDirection, code, remoteID string, result salla.SyncResult) {
	op := &salla.SyncOperation{
		Kind:      salla.KindProduct,
		Direction: dir,
		LocalKey:  code,
		RemoteID:  remoteID,
		Outcome:   result.Outcome,
		Message:   result.Reason + result.Message,
		CreatedAt: s.now(),
	}
	if err := s.ops.Record(ctx, op); err != nil {
		s.logger.Warn("failed to record sync operation",
			zap.String("product", code), zap.Error(err))
	}
}

func payloadEmpty(p *salla.ProductPayload) bool {
	return p.SKU == nil && p.Name == nil && p.Description == nil &&
		p.Price == nil && p.Weight == nil && p.ProductType == nil &&
		p.Status == nil && p.Quantity == nil && len(p.Categories) == 0
}

func withoutField(fields []string, drop string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != drop {
			out = append(out, f)
		}
	}
	return out
}

func remoteString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// Ensure ProductSyncer implements EntitySyncManager
var _ salla.EntitySyncManager = (*ProductSyncer)(nil)
