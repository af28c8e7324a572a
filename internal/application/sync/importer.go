package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// ImportSummary totals one paginated import run.
type ImportSummary struct {
	// Pages actually fetched.
	Pages int
	// Processed records, successes and failures both counted.
	Processed int
	// Failed records; the run keeps going past individual failures.
	Failed int
}

// BatchImporter drives the paginated pull loops. Each loop fetches pages
// until the reported totalPages is reached, checking for cancellation
// between pages so a shutdown never cuts a page in half.
type BatchImporter struct {
	client     salla.Client
	products   *ProductSyncer
	categories *CategorySyncer
	customers  *CustomerSyncer
	orders     *OrderSyncer
	perPage    int
	logger     *zap.Logger
}

// NewBatchImporter creates a new BatchImporter
func NewBatchImporter(
	client salla.Client,
	products *ProductSyncer,
	categories *CategorySyncer,
	customers *CustomerSyncer,
	orders *OrderSyncer,
	perPage int,
	logger *zap.Logger,
) *BatchImporter {
	if perPage <= 0 {
		perPage = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchImporter{
		client:     client,
		products:   products,
		categories: categories,
		customers:  customers,
		orders:     orders,
		perPage:    perPage,
		logger:     logger,
	}
}

// ImportProducts pulls every platform product.
func (i *BatchImporter) ImportProducts(ctx context.Context) (*ImportSummary, error) {
	return i.runPages(ctx, func(ctx context.Context, page int, summary *ImportSummary) (*salla.Pagination, error) {
		records, pagination, err := i.client.ListProducts(ctx, page, i.perPage)
		if err != nil {
			return nil, err
		}
		for idx := range records {
			summary.Processed++
			if result := i.products.Pull(ctx, &records[idx]); result.Outcome == salla.OutcomeError {
				summary.Failed++
				i.logger.Warn("product pull failed",
					zap.String("sku", records[idx].SKU),
					zap.String("message", result.Message))
			}
		}
		return pagination, nil
	})
}

// ImportCategories pulls the category tree. Roots arrive paginated with
// their sub-trees inlined; the recursive import keeps parents ahead of
// children.
func (i *BatchImporter) ImportCategories(ctx context.Context) (*ImportSummary, error) {
	return i.runPages(ctx, func(ctx context.Context, page int, summary *ImportSummary) (*salla.Pagination, error) {
		records, pagination, err := i.client.ListCategories(ctx, page, i.perPage)
		if err != nil {
			return nil, err
		}
		for _, rc := range records {
			n, err := i.categories.ImportRemote(ctx, rc, "")
			summary.Processed += n
			if err != nil {
				summary.Failed++
				i.logger.Warn("category import failed",
					zap.String("name", rc.Name), zap.Error(err))
			}
		}
		return pagination, nil
	})
}

// ImportCustomers pulls every platform customer.
func (i *BatchImporter) ImportCustomers(ctx context.Context) (*ImportSummary, error) {
	return i.runPages(ctx, func(ctx context.Context, page int, summary *ImportSummary) (*salla.Pagination, error) {
		records, pagination, err := i.client.ListCustomers(ctx, page, i.perPage)
		if err != nil {
			return nil, err
		}
		for idx := range records {
			summary.Processed++
			if _, result := i.customers.Pull(ctx, &records[idx]); result.Outcome == salla.OutcomeError {
				summary.Failed++
				i.logger.Warn("customer pull failed",
					zap.Int64("remote_id", records[idx].ID),
					zap.String("message", result.Message))
			}
		}
		return pagination, nil
	})
}

// ImportOrders pulls every platform order, items included.
func (i *BatchImporter) ImportOrders(ctx context.Context) (*ImportSummary, error) {
	return i.runPages(ctx, func(ctx context.Context, page int, summary *ImportSummary) (*salla.Pagination, error) {
		records, pagination, err := i.client.ListOrders(ctx, page, i.perPage)
		if err != nil {
			return nil, err
		}
		for idx := range records {
			summary.Processed++
			if result := i.orders.Pull(ctx, &records[idx]); result.Outcome == salla.OutcomeError {
				summary.Failed++
				i.logger.Warn("order pull failed",
					zap.Int64("remote_id", records[idx].ID),
					zap.String("message", result.Message))
			}
		}
		return pagination, nil
	})
}

// runPages loops one fetch function to completion. A page-level error ends
// the run with the summary so far; cancellation is honored between pages.
func (i *BatchImporter) runPages(
	ctx context.Context,
	fetch func(ctx context.Context, page int, summary *ImportSummary) (*salla.Pagination, error),
) (*ImportSummary, error) {
	summary := &ImportSummary{}
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		pagination, err := fetch(ctx, page, summary)
		if err != nil {
			return summary, err
		}
		summary.Pages++

		if pagination == nil || page >= pagination.TotalPages {
			return summary, nil
		}
		page++
	}
}
