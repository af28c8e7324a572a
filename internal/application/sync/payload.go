package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// Platform locales. The Arabic catalog is the primary one; English is the
// secondary translation pushed in a follow-up update.
const (
	LocalePrimary   = "ar"
	LocaleSecondary = "en"
)

// Platform product statuses.
const (
	statusSale   = "sale"
	statusHidden = "hidden"
)

const defaultProductType = "product"

// ErrParentNotLinked is returned when a category payload references a parent
// that has no external link yet. Parents must be pushed first.
var ErrParentNotLinked = errors.New("parent category has no external link")

// ---------------------------------------------------------------------------
// ProductPayloadBuilder
// ---------------------------------------------------------------------------

// ProductPayloadBuilder assembles outbound product bodies. Only fields whose
// sync flag is set are present in update payloads, so platform-side edits to
// unflagged fields survive. Category references that are not sync-enabled or
// not yet linked are omitted without failing the push.
type ProductPayloadBuilder struct {
	categories salla.CategoryRepository
	links      salla.LinkRepository
	logger     *zap.Logger
}

// NewProductPayloadBuilder creates a new ProductPayloadBuilder
func NewProductPayloadBuilder(
	categories salla.CategoryRepository,
	links salla.LinkRepository,
	logger *zap.Logger,
) *ProductPayloadBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductPayloadBuilder{
		categories: categories,
		links:      links,
		logger:     logger,
	}
}

// BuildCreate assembles the primary-locale creation body. Creation always
// carries the SKU and name since the platform requires them; the remaining
// fields follow the sync flags.
func (b *ProductPayloadBuilder) BuildCreate(ctx context.Context, p *salla.Product) (*salla.ProductPayload, error) {
	tr := p.Translation(LocalePrimary)

	payload := &salla.ProductPayload{
		SKU:         ptr(p.Code),
		Name:        ptr(tr.Name),
		ProductType: ptr(defaultProductType),
		Status:      ptr(productStatus(p)),
	}
	if p.Flags.Description && tr.Description != "" {
		payload.Description = ptr(tr.Description)
	}
	if p.Flags.Price {
		payload.Price = ptr(p.Price)
	}
	if p.Flags.Weight {
		payload.Weight = ptr(p.Weight)
	}
	if p.Flags.Categories {
		ids, err := b.resolveCategoryIDs(ctx, p.CategoryKeys)
		if err != nil {
			return nil, err
		}
		payload.Categories = ids
	}
	return payload, nil
}

// BuildUpdate assembles a flag-selective update body for locale. The
// secondary locale carries only the translated fields; numeric fields are
// locale-independent and sent with the primary update alone.
func (b *ProductPayloadBuilder) BuildUpdate(ctx context.Context, p *salla.Product, locale string) (*salla.ProductPayload, error) {
	tr := p.Translation(locale)

	payload := &salla.ProductPayload{}
	if p.Flags.Name && tr.Name != "" {
		payload.Name = ptr(tr.Name)
	}
	if p.Flags.Description && tr.Description != "" {
		payload.Description = ptr(tr.Description)
	}
	if locale != LocalePrimary {
		return payload, nil
	}

	payload.Status = ptr(productStatus(p))
	if p.Flags.Price {
		payload.Price = ptr(p.Price)
	}
	if p.Flags.Weight {
		payload.Weight = ptr(p.Weight)
	}
	if p.Flags.Categories {
		ids, err := b.resolveCategoryIDs(ctx, p.CategoryKeys)
		if err != nil {
			return nil, err
		}
		payload.Categories = ids
	}
	return payload, nil
}

// resolveCategoryIDs maps local category keys to platform ids. Keys whose
// category is missing, not sync-enabled or not yet linked are skipped.
func (b *ProductPayloadBuilder) resolveCategoryIDs(ctx context.Context, keys []string) ([]int64, error) {
	var ids []int64
	for _, key := range keys {
		node, err := b.categories.ByKey(ctx, key)
		if err != nil {
			if errors.Is(err, salla.ErrCategoryNotFound) {
				b.logger.Debug("skipping unknown category ref", zap.String("category", key))
				continue
			}
			return nil, err
		}
		if !node.SyncEnabled {
			continue
		}

		link, err := b.links.ByLocal(ctx, salla.KindCategory, key)
		if err != nil {
			if errors.Is(err, salla.ErrLinkNotFound) {
				b.logger.Debug("skipping unlinked category ref", zap.String("category", key))
				continue
			}
			return nil, err
		}

		id, err := strconv.ParseInt(link.RemoteID, 10, 64)
		if err != nil {
			b.logger.Warn("category link carries a non-numeric remote id",
				zap.String("category", key),
				zap.String("remote_id", link.RemoteID),
			)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// CategoryPayloadBuilder
// ---------------------------------------------------------------------------

// CategoryPayloadBuilder assembles outbound category bodies.
type CategoryPayloadBuilder struct {
	links salla.LinkRepository
}

// NewCategoryPayloadBuilder creates a new CategoryPayloadBuilder
func NewCategoryPayloadBuilder(links salla.LinkRepository) *CategoryPayloadBuilder {
	return &CategoryPayloadBuilder{links: links}
}

// Build assembles the body for locale. A non-root node requires its parent
// to be linked already; ErrParentNotLinked is returned otherwise.
func (b *CategoryPayloadBuilder) Build(ctx context.Context, node *salla.CategoryNode, locale string) (*salla.CategoryPayload, error) {
	payload := &salla.CategoryPayload{
		Name: ptr(node.Name(locale)),
	}
	if locale != LocalePrimary {
		return payload, nil
	}

	if node.ParentKey != "" {
		link, err := b.links.ByLocal(ctx, salla.KindCategory, node.ParentKey)
		if err != nil {
			if errors.Is(err, salla.ErrLinkNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrParentNotLinked, node.ParentKey)
			}
			return nil, err
		}
		id, err := strconv.ParseInt(link.RemoteID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parent category %s has non-numeric remote id %q", node.ParentKey, link.RemoteID)
		}
		payload.ParentID = ptr(id)
	}
	return payload, nil
}

func productStatus(p *salla.Product) string {
	if p.Disabled {
		return statusHidden
	}
	return statusSale
}

func ptr[T any](v T) *T { return &v }
