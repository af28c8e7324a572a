package sync

import (
	"context"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// StockAllocator computes sellable quantities across the primary and
// secondary warehouses and assigns pulled order lines to a warehouse. Lines
// are never split: when neither warehouse covers the quantity the primary
// takes the line as a backorder.
type StockAllocator struct {
	stock     salla.StockReader
	primary   string
	secondary string
}

// NewStockAllocator creates a new StockAllocator
func NewStockAllocator(stock salla.StockReader, primaryWarehouse, secondaryWarehouse string) *StockAllocator {
	return &StockAllocator{
		stock:     stock,
		primary:   primaryWarehouse,
		secondary: secondaryWarehouse,
	}
}

// TotalAvailable sums both warehouses, the quantity pushed to the platform.
func (a *StockAllocator) TotalAvailable(ctx context.Context, productCode string) (int, error) {
	primary, err := a.stock.Available(ctx, productCode, a.primary)
	if err != nil {
		return 0, err
	}
	secondary, err := a.stock.Available(ctx, productCode, a.secondary)
	if err != nil {
		return 0, err
	}
	return primary + secondary, nil
}

// Allocate assigns one order line to a warehouse. The primary wins when it
// covers the quantity, the secondary when only it does, and the primary takes
// the line as a backorder when neither does.
func (a *StockAllocator) Allocate(ctx context.Context, productCode string, requestedQty int) (salla.Allocation, error) {
	primary, err := a.stock.Available(ctx, productCode, a.primary)
	if err != nil {
		return salla.Allocation{}, err
	}
	if primary >= requestedQty {
		return salla.Allocation{WarehouseID: a.primary}, nil
	}

	secondary, err := a.stock.Available(ctx, productCode, a.secondary)
	if err != nil {
		return salla.Allocation{}, err
	}
	if secondary >= requestedQty {
		return salla.Allocation{WarehouseID: a.secondary}, nil
	}

	return salla.Allocation{WarehouseID: a.primary, Backordered: true}, nil
}
