package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// GormWebhookDeliveryRepository implements salla.WebhookDeliveryRepository using GORM
type GormWebhookDeliveryRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.WebhookDeliveryRepository = (*GormWebhookDeliveryRepository)(nil)

// NewGormWebhookDeliveryRepository creates a new GormWebhookDeliveryRepository
func NewGormWebhookDeliveryRepository(db *gorm.DB) *GormWebhookDeliveryRepository {
	return &GormWebhookDeliveryRepository{db: db}
}

// Record appends one delivery row, assigning id and timestamp when unset
func (r *GormWebhookDeliveryRepository) Record(ctx context.Context, d *salla.WebhookDelivery) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = time.Now()
	}
	var model models.WebhookDeliveryModel
	model.FromDomain(d)
	return r.db.WithContext(ctx).Create(&model).Error
}
