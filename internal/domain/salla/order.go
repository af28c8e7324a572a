package salla

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Order
// ---------------------------------------------------------------------------

// OrderItem is one line of a pulled order after local resolution.
type OrderItem struct {
	// ProductCode is the local product resolved by SKU then by link. Empty
	// when the line could not be resolved.
	ProductCode string
	// RemoteProductID is the platform product id on the line.
	RemoteProductID string
	Quantity        int
	// Rate is the unit price charged on the platform.
	Rate decimal.Decimal
	// WarehouseID is the warehouse the line is allocated to.
	WarehouseID string
	// Backordered marks lines allocated to the primary warehouse despite
	// insufficient stock.
	Backordered bool
}

// Order is a local sales order created from a platform order.
type Order struct {
	// ID is the local natural key.
	ID string
	// CustomerID references the local customer.
	CustomerID string
	// RemoteReference is the human-facing platform order number.
	RemoteReference string
	// StatusSlug is the platform status slug at pull time.
	StatusSlug string
	Currency   string
	Items      []OrderItem
	PlacedAt   time.Time
	// Fulfilled marks orders whose delivery has been recorded locally.
	Fulfilled bool
}

// Total sums rate times quantity over the lines.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Rate.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// OrderRepository reads and writes local orders.
type OrderRepository interface {
	ByID(ctx context.Context, id string) (*Order, error)
	Save(ctx context.Context, o *Order) error
}

// ---------------------------------------------------------------------------
// Order status catalog
// ---------------------------------------------------------------------------

// OrderStatus is one entry of the platform's configurable status catalog,
// pulled so outbound status changes can reference a valid id.
type OrderStatus struct {
	RemoteID string
	Name     string
	Slug     string
}

// OrderStatusRepository persists the pulled catalog.
type OrderStatusRepository interface {
	BySlug(ctx context.Context, slug string) (*OrderStatus, error)
	SaveAll(ctx context.Context, statuses []*OrderStatus) error
	List(ctx context.Context) ([]*OrderStatus, error)
}
