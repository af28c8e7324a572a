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

// GormFieldStateRepository implements salla.FieldStateRepository using GORM
type GormFieldStateRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.FieldStateRepository = (*GormFieldStateRepository)(nil)

// NewGormFieldStateRepository creates a new GormFieldStateRepository
func NewGormFieldStateRepository(db *gorm.DB) *GormFieldStateRepository {
	return &GormFieldStateRepository{db: db}
}

// Get loads one field's state
func (r *GormFieldStateRepository) Get(ctx context.Context, kind salla.EntityKind, localKey, field string) (*salla.FieldSyncState, error) {
	var model models.FieldSyncStateModel
	err := r.db.WithContext(ctx).
		First(&model, "kind = ? AND local_key = ? AND field = ?", kind, localKey, field).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, salla.ErrFieldStateNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List loads all field states of one entity
func (r *GormFieldStateRepository) List(ctx context.Context, kind salla.EntityKind, localKey string) ([]*salla.FieldSyncState, error) {
	var stateModels []models.FieldSyncStateModel
	err := r.db.WithContext(ctx).
		Where("kind = ? AND local_key = ?", kind, localKey).
		Order("field ASC").
		Find(&stateModels).Error
	if err != nil {
		return nil, err
	}
	states := make([]*salla.FieldSyncState, len(stateModels))
	for i := range stateModels {
		states[i] = stateModels[i].ToDomain()
	}
	return states, nil
}

// SetMany upserts the given states inside one transaction
func (r *GormFieldStateRepository) SetMany(ctx context.Context, states []*salla.FieldSyncState) error {
	if len(states) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, state := range states {
			var model models.FieldSyncStateModel
			model.FromDomain(state)
			model.UpdatedAt = now
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "kind"}, {Name: "local_key"}, {Name: "field"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"status", "message", "updated_at",
				}),
			}).Create(&model).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
