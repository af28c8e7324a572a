package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/persistence/models"
)

// ErrCustomerNotFound indicates the customer id has no local record
var ErrCustomerNotFound = errors.New("persistence: customer not found")

// GormCustomerRepository implements salla.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// Interface assertion
var _ salla.CustomerRepository = (*GormCustomerRepository)(nil)

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// ByID finds a customer by id
func (r *GormCustomerRepository) ByID(ctx context.Context, id string) (*salla.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ByMobile finds a customer by mobile number, nil when absent
func (r *GormCustomerRepository) ByMobile(ctx context.Context, mobile string) (*salla.Customer, error) {
	if mobile == "" {
		return nil, nil
	}
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "mobile = ?", mobile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts a customer on its id
func (r *GormCustomerRepository) Save(ctx context.Context, c *salla.Customer) error {
	var model models.CustomerModel
	model.FromDomain(c)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "mobile", "email", "city", "country",
			"company_name", "tax_id", "commercial_register", "updated_at",
		}),
	}).Create(&model).Error
}
