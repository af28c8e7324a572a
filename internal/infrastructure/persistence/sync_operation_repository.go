package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// GormSyncOperationRepository implements salla.SyncOperationRepository using GORM
type GormSyncOperationRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.SyncOperationRepository = (*GormSyncOperationRepository)(nil)

// NewGormSyncOperationRepository creates a new GormSyncOperationRepository
func NewGormSyncOperationRepository(db *gorm.DB) *GormSyncOperationRepository {
	return &GormSyncOperationRepository{db: db}
}

// Record appends one audit row, assigning id and timestamp when unset
func (r *GormSyncOperationRepository) Record(ctx context.Context, op *salla.SyncOperation) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	var model models.SyncOperationModel
	model.FromDomain(op)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Recent returns the newest rows for one entity kind
func (r *GormSyncOperationRepository) Recent(ctx context.Context, kind salla.EntityKind, limit int) ([]*salla.SyncOperation, error) {
	if limit <= 0 {
		limit = 50
	}
	var opModels []models.SyncOperationModel
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("created_at DESC").
		Limit(limit).
		Find(&opModels).Error
	if err != nil {
		return nil, err
	}
	ops := make([]*salla.SyncOperation, len(opModels))
	for i := range opModels {
		ops[i] = opModels[i].ToDomain()
	}
	return ops, nil
}
