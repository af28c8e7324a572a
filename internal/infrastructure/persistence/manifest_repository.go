package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// GormManifestRepository implements salla.ManifestRepository using GORM
type GormManifestRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.ManifestRepository = (*GormManifestRepository)(nil)

// NewGormManifestRepository creates a new GormManifestRepository
func NewGormManifestRepository(db *gorm.DB) *GormManifestRepository {
	return &GormManifestRepository{db: db}
}

// Get loads a product's image manifest
func (r *GormManifestRepository) Get(ctx context.Context, productCode string) (*salla.ImageManifest, error) {
	var model models.ImageManifestModel
	if err := r.db.WithContext(ctx).First(&model, "product_code = ?", productCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, salla.ErrManifestNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Replace swaps the whole entry map in one upsert
func (r *GormManifestRepository) Replace(ctx context.Context, manifest *salla.ImageManifest) error {
	var model models.ImageManifestModel
	if err := model.FromDomain(manifest); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"entries", "updated_at"}),
	}).Create(&model).Error
}
