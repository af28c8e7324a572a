package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// GormCredentialRepository implements salla.CredentialStore using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.CredentialStore = (*GormCredentialRepository)(nil)

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// Get loads the token pair for a store
func (r *GormCredentialRepository) Get(ctx context.Context, storeID string) (*salla.RemoteCredential, error) {
	var model models.RemoteCredentialModel
	if err := r.db.WithContext(ctx).First(&model, "store_id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, salla.ErrCredentialNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the token pair in a single statement so a new access token and
// its expiry land together
func (r *GormCredentialRepository) Save(ctx context.Context, cred *salla.RemoteCredential) error {
	var model models.RemoteCredentialModel
	model.FromDomain(cred)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "expires_at", "scope", "updated_at",
		}),
	}).Create(&model).Error
}

// Delete disconnects a store
func (r *GormCredentialRepository) Delete(ctx context.Context, storeID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.RemoteCredentialModel{}, "store_id = ?", storeID).Error
}
