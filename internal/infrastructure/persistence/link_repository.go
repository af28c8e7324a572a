package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// GormLinkRepository implements salla.LinkRepository using GORM
type GormLinkRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.LinkRepository = (*GormLinkRepository)(nil)

// NewGormLinkRepository creates a new GormLinkRepository
func NewGormLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// ByLocal resolves a link by its local key
func (r *GormLinkRepository) ByLocal(ctx context.Context, kind salla.EntityKind, localKey string) (*salla.ExternalLink, error) {
	var model models.ExternalLinkModel
	err := r.db.WithContext(ctx).
		First(&model, "kind = ? AND local_key = ?", kind, localKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, salla.ErrLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ByRemote resolves a link by its remote id
func (r *GormLinkRepository) ByRemote(ctx context.Context, kind salla.EntityKind, remoteID string) (*salla.ExternalLink, error) {
	var model models.ExternalLinkModel
	err := r.db.WithContext(ctx).
		First(&model, "kind = ? AND remote_id = ?", kind, remoteID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, salla.ErrLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts a link on (kind, local key)
func (r *GormLinkRepository) Save(ctx context.Context, link *salla.ExternalLink) error {
	if err := link.Validate(); err != nil {
		return err
	}
	var model models.ExternalLinkModel
	model.FromDomain(link)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "kind"}, {Name: "local_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"remote_id", "admin_url", "public_url", "updated_at",
		}),
	}).Create(&model).Error
}

// Delete removes a link
func (r *GormLinkRepository) Delete(ctx context.Context, kind salla.EntityKind, localKey string) error {
	return r.db.WithContext(ctx).
		Delete(&models.ExternalLinkModel{}, "kind = ? AND local_key = ?", kind, localKey).Error
}
