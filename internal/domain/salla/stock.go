package salla

import "context"

// ---------------------------------------------------------------------------
// Warehouses and stock
// ---------------------------------------------------------------------------

// WarehouseRole distinguishes the two warehouses stock sync draws from.
type WarehouseRole string

const (
	// RolePrimary is the main fulfilment warehouse and the backorder target.
	RolePrimary WarehouseRole = "PRIMARY"
	// RoleSecondary is the overflow warehouse.
	RoleSecondary WarehouseRole = "SECONDARY"
)

// String returns the string representation of the role.
func (r WarehouseRole) String() string {
	return string(r)
}

// StockReader reports available quantities. Available returns 0 for unknown
// product/warehouse pairs rather than an error.
type StockReader interface {
	Available(ctx context.Context, productCode, warehouseID string) (int, error)
}

// Allocation is the warehouse decision for one requested quantity.
type Allocation struct {
	WarehouseID string
	// Backordered is set when the primary warehouse was chosen without
	// enough stock to cover the quantity.
	Backordered bool
}
