package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// ErrOrderNotFound indicates the order id has no local record
var ErrOrderNotFound = errors.New("persistence: order not found")

// GormOrderRepository implements salla.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.OrderRepository = (*GormOrderRepository)(nil)

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// ByID finds an order by id
func (r *GormOrderRepository) ByID(ctx context.Context, id string) (*salla.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts an order on its id
func (r *GormOrderRepository) Save(ctx context.Context, o *salla.Order) error {
	var model models.OrderModel
	if err := model.FromDomain(o); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id", "remote_reference", "status_slug", "currency",
			"items", "placed_at", "fulfilled", "updated_at",
		}),
	}).Create(&model).Error
}
