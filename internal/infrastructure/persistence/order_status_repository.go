package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// GormOrderStatusRepository implements salla.OrderStatusRepository using GORM
type GormOrderStatusRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.OrderStatusRepository = (*GormOrderStatusRepository)(nil)

// NewGormOrderStatusRepository creates a new GormOrderStatusRepository
func NewGormOrderStatusRepository(db *gorm.DB) *GormOrderStatusRepository {
	return &GormOrderStatusRepository{db: db}
}

// BySlug resolves one catalog entry by its slug
func (r *GormOrderStatusRepository) BySlug(ctx context.Context, slug string) (*salla.OrderStatus, error) {
	var model models.OrderStatusModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, salla.ErrOrderStatusNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveAll upserts the pulled catalog in one transaction
func (r *GormOrderStatusRepository) SaveAll(ctx context.Context, statuses []*salla.OrderStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, status := range statuses {
			var model models.OrderStatusModel
			model.FromDomain(status)
			model.UpdatedAt = now
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "remote_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "slug", "updated_at"}),
			}).Create(&model).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the stored catalog ordered by name
func (r *GormOrderStatusRepository) List(ctx context.Context) ([]*salla.OrderStatus, error) {
	var statusModels []models.OrderStatusModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&statusModels).Error; err != nil {
		return nil, err
	}
	statuses := make([]*salla.OrderStatus, len(statusModels))
	for i := range statusModels {
		statuses[i] = statusModels[i].ToDomain()
	}
	return statuses, nil
}
