package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// ProductModel is the persistence model for local products. Translations,
// category keys and image refs are stored as JSON.
type ProductModel struct {
	Code             string          `gorm:"type:varchar(140);primary_key"`
	TranslationsJSON string          `gorm:"type:text;column:translations"`
	Price            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Weight           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CategoryKeysJSON string          `gorm:"type:text;column:category_keys"`
	ImageRefsJSON    string          `gorm:"type:text;column:image_refs"`
	SyncEnabled      bool            `gorm:"not null;default:false;index"`
	SyncName         bool            `gorm:"not null;default:true"`
	SyncDescription  bool            `gorm:"not null;default:true"`
	SyncPrice        bool            `gorm:"not null;default:true"`
	SyncWeight       bool            `gorm:"not null;default:false"`
	SyncCategories   bool            `gorm:"not null;default:true"`
	SyncImages       bool            `gorm:"not null;default:true"`
	SyncStock        bool            `gorm:"not null;default:true"`
	Disabled         bool            `gorm:"not null;default:false"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *salla.Product {
	p := &salla.Product{
		Code:         m.Code,
		Translations: map[string]salla.ProductTranslation{},
		Price:        m.Price,
		Weight:       m.Weight,
		Flags: salla.SyncFlags{
			Enabled:     m.SyncEnabled,
			Name:        m.SyncName,
			Description: m.SyncDescription,
			Price:       m.SyncPrice,
			Weight:      m.SyncWeight,
			Categories:  m.SyncCategories,
			Images:      m.SyncImages,
			Stock:       m.SyncStock,
		},
		Disabled: m.Disabled,
	}
	if m.TranslationsJSON != "" {
		_ = json.Unmarshal([]byte(m.TranslationsJSON), &p.Translations)
	}
	if m.CategoryKeysJSON != "" {
		_ = json.Unmarshal([]byte(m.CategoryKeysJSON), &p.CategoryKeys)
	}
	if m.ImageRefsJSON != "" {
		_ = json.Unmarshal([]byte(m.ImageRefsJSON), &p.ImageRefs)
	}
	return p
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *salla.Product) error {
	translations, err := json.Marshal(p.Translations)
	if err != nil {
		return err
	}
	categoryKeys, err := json.Marshal(p.CategoryKeys)
	if err != nil {
		return err
	}
	imageRefs, err := json.Marshal(p.ImageRefs)
	if err != nil {
		return err
	}
	m.Code = p.Code
	m.TranslationsJSON = string(translations)
	m.Price = p.Price
	m.Weight = p.Weight
	m.CategoryKeysJSON = string(categoryKeys)
	m.ImageRefsJSON = string(imageRefs)
	m.SyncEnabled = p.Flags.Enabled
	m.SyncName = p.Flags.Name
	m.SyncDescription = p.Flags.Description
	m.SyncPrice = p.Flags.Price
	m.SyncWeight = p.Flags.Weight
	m.SyncCategories = p.Flags.Categories
	m.SyncImages = p.Flags.Images
	m.SyncStock = p.Flags.Stock
	m.Disabled = p.Disabled
	return nil
}

// CategoryModel is the persistence model for the category tree. Lft and Rgt
// hold the nested-interval bounds maintained by the repository.
type CategoryModel struct {
	Key              string    `gorm:"type:varchar(140);primary_key"`
	TranslationsJSON string    `gorm:"type:text;column:translations"`
	ParentKey        string    `gorm:"type:varchar(140);index"`
	Lft              int       `gorm:"not null;index:idx_category_interval,priority:1"`
	Rgt              int       `gorm:"not null;index:idx_category_interval,priority:2"`
	SyncEnabled      bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain CategoryNode.
func (m *CategoryModel) ToDomain() *salla.CategoryNode {
	node := &salla.CategoryNode{
		Key:          m.Key,
		Translations: map[string]salla.CategoryTranslation{},
		ParentKey:    m.ParentKey,
		Lft:          m.Lft,
		Rgt:          m.Rgt,
		SyncEnabled:  m.SyncEnabled,
	}
	if m.TranslationsJSON != "" {
		_ = json.Unmarshal([]byte(m.TranslationsJSON), &node.Translations)
	}
	return node
}

// FromDomain populates the persistence model from a domain CategoryNode,
// excluding the interval bounds.
func (m *CategoryModel) FromDomain(node *salla.CategoryNode) error {
	translations, err := json.Marshal(node.Translations)
	if err != nil {
		return err
	}
	m.Key = node.Key
	m.TranslationsJSON = string(translations)
	m.ParentKey = node.ParentKey
	m.SyncEnabled = node.SyncEnabled
	return nil
}

// CustomerModel is the persistence model for local customers.
type CustomerModel struct {
	ID                 string    `gorm:"type:varchar(140);primary_key"`
	FirstName          string    `gorm:"type:varchar(140)"`
	LastName           string    `gorm:"type:varchar(140)"`
	Mobile             string    `gorm:"type:varchar(40);index:idx_customer_mobile"`
	Email              string    `gorm:"type:varchar(255)"`
	City               string    `gorm:"type:varchar(140)"`
	Country            string    `gorm:"type:varchar(140)"`
	CompanyName        string    `gorm:"type:varchar(255)"`
	TaxID              string    `gorm:"type:varchar(100)"`
	CommercialRegister string    `gorm:"type:varchar(100)"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *salla.Customer {
	return &salla.Customer{
		ID:                 m.ID,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Mobile:             m.Mobile,
		Email:              m.Email,
		City:               m.City,
		Country:            m.Country,
		CompanyName:        m.CompanyName,
		TaxID:              m.TaxID,
		CommercialRegister: m.CommercialRegister,
	}
}

// FromDomain populates the persistence model from a domain Customer.
func (m *CustomerModel) FromDomain(c *salla.Customer) {
	m.ID = c.ID
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Mobile = c.Mobile
	m.Email = c.Email
	m.City = c.City
	m.Country = c.Country
	m.CompanyName = c.CompanyName
	m.TaxID = c.TaxID
	m.CommercialRegister = c.CommercialRegister
}

// OrderModel is the persistence model for local orders. Items are stored as
// JSON since they are only read and written whole.
type OrderModel struct {
	ID              string    `gorm:"type:varchar(140);primary_key"`
	CustomerID      string    `gorm:"type:varchar(140);index"`
	RemoteReference string    `gorm:"type:varchar(100);index"`
	StatusSlug      string    `gorm:"type:varchar(140)"`
	Currency        string    `gorm:"type:varchar(10)"`
	ItemsJSON       string    `gorm:"type:text;column:items"`
	PlacedAt        time.Time `gorm:"not null"`
	Fulfilled       bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *salla.Order {
	o := &salla.Order{
		ID:              m.ID,
		CustomerID:      m.CustomerID,
		RemoteReference: m.RemoteReference,
		StatusSlug:      m.StatusSlug,
		Currency:        m.Currency,
		PlacedAt:        m.PlacedAt,
		Fulfilled:       m.Fulfilled,
	}
	if m.ItemsJSON != "" {
		_ = json.Unmarshal([]byte(m.ItemsJSON), &o.Items)
	}
	return o
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *salla.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	m.ID = o.ID
	m.CustomerID = o.CustomerID
	m.RemoteReference = o.RemoteReference
	m.StatusSlug = o.StatusSlug
	m.Currency = o.Currency
	m.ItemsJSON = string(items)
	m.PlacedAt = o.PlacedAt
	m.Fulfilled = o.Fulfilled
	return nil
}

// StockLevelModel is the persistence model for per-warehouse quantities.
type StockLevelModel struct {
	ID          uint      `gorm:"primary_key;auto_increment"`
	ProductCode string    `gorm:"type:varchar(140);not null;uniqueIndex:idx_stock_level,priority:1"`
	WarehouseID string    `gorm:"type:varchar(140);not null;uniqueIndex:idx_stock_level,priority:2"`
	Quantity    int       `gorm:"not null;default:0"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "stock_levels"
}
