package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// ErrProductNotFound indicates the product code has no local record
var ErrProductNotFound = errors.New("persistence: product not found")

// GormProductRepository implements salla.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// ByCode finds a product by its code
func (r *GormProductRepository) ByCode(ctx context.Context, code string) (*salla.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts a product on its code
func (r *GormProductRepository) Save(ctx context.Context, p *salla.Product) error {
	var model models.ProductModel
	if err := model.FromDomain(p); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"translations", "price", "weight", "category_keys", "image_refs",
			"sync_enabled", "sync_name", "sync_description", "sync_price",
			"sync_weight", "sync_categories", "sync_images", "sync_stock",
			"disabled", "updated_at",
		}),
	}).Create(&model).Error
}

// ListSyncEnabled returns the codes of products opted into sync
func (r *GormProductRepository) ListSyncEnabled(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("sync_enabled = ?", true).
		Order("code ASC").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
