package salla

import (
	"context"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// ProductTranslation holds the locale-dependent fields of a product.
type ProductTranslation struct {
	Name        string
	Description string
}

// SyncFlags are the per-field opt-in switches controlling which product
// fields participate in a push. A cleared flag means the field is never sent,
// so manual edits on the platform survive.
type SyncFlags struct {
	Enabled     bool
	Name        bool
	Description bool
	Price       bool
	Weight      bool
	Categories  bool
	Images      bool
	Stock       bool
}

// FieldEnabled reports the flag for a tracked field name.
func (f SyncFlags) FieldEnabled(field string) bool {
	switch field {
	case FieldName:
		return f.Name
	case FieldDescription:
		return f.Description
	case FieldPrice:
		return f.Price
	case FieldWeight:
		return f.Weight
	case FieldCategories:
		return f.Categories
	case FieldImages:
		return f.Images
	case FieldStock:
		return f.Stock
	default:
		return false
	}
}

// EnabledFields lists the tracked fields whose flag is set, in payload order.
func (f SyncFlags) EnabledFields() []string {
	var out []string
	for _, field := range TrackedFields() {
		if f.FieldEnabled(field) {
			out = append(out, field)
		}
	}
	return out
}

// Product is the local sellable item.
type Product struct {
	// Code is the natural key, also used as the platform SKU.
	Code string
	// Translations keyed by locale, "ar" and "en".
	Translations map[string]ProductTranslation
	// Price in the store currency.
	Price decimal.Decimal
	// Weight in kilograms.
	Weight decimal.Decimal
	// CategoryKeys are the local keys of the categories the product belongs
	// to.
	CategoryKeys []string
	// ImageRefs are the attachment references currently attached locally,
	// in display order.
	ImageRefs []string
	// Flags control which fields a push may touch.
	Flags SyncFlags
	// Disabled products are hidden on the platform instead of deleted.
	Disabled bool
}

// Translation returns the translation for locale, falling back to "en".
func (p *Product) Translation(locale string) ProductTranslation {
	if t, ok := p.Translations[locale]; ok {
		return t
	}
	return p.Translations["en"]
}

// ProductRepository reads and writes local products. Lookups return
// gorm-backed not-found mapped to a nil product and an error from the
// persistence layer's sentinel set.
type ProductRepository interface {
	ByCode(ctx context.Context, code string) (*Product, error)
	Save(ctx context.Context, p *Product) error
	// ListSyncEnabled returns the codes of products whose Enabled flag is
	// set, for bulk passes.
	ListSyncEnabled(ctx context.Context) ([]string, error)
}
