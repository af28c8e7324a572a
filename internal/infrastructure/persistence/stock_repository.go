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

// GormStockRepository implements salla.StockReader using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.StockReader = (*GormStockRepository)(nil)

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// Available returns the on-hand quantity for a product in a warehouse, zero
// when the pair has no row
func (r *GormStockRepository) Available(ctx context.Context, productCode, warehouseID string) (int, error) {
	var model models.StockLevelModel
	err := r.db.WithContext(ctx).
		First(&model, "product_code = ? AND warehouse_id = ?", productCode, warehouseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return model.Quantity, nil
}

// Set upserts the quantity for a product/warehouse pair
func (r *GormStockRepository) Set(ctx context.Context, productCode, warehouseID string, quantity int) error {
	model := models.StockLevelModel{
		ProductCode: productCode,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		UpdatedAt:   time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_code"}, {Name: "warehouse_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&model).Error
}
