package sync

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

type orderSyncerFixture struct {
	syncer    *OrderSyncer
	orders    *memOrders
	products  *memProducts
	customers *memCustomers
	links     *memLinks
	statuses  *memOrderStatuses
	stock     *memStock
	client    *stubClient
}

func newOrderSyncerFixture(t *testing.T) *orderSyncerFixture {
	t.Helper()

	f := &orderSyncerFixture{
		orders:    newMemOrders(),
		products:  newMemProducts(),
		customers: newMemCustomers(),
		links:     newMemLinks(),
		statuses:  newMemOrderStatuses(),
		stock:     newMemStock(),
		client:    &stubClient{},
	}
	logger := zap.NewNop()
	customerSyncer := NewCustomerSyncer(f.customers, f.links, &memOps{}, map[string]string{
		"اسم الشركة": optionFieldCompanyName,
	}, logger)
	allocator := NewStockAllocator(f.stock, "WH-MAIN", "WH-OVERFLOW")

	f.syncer = NewOrderSyncer(
		f.orders, f.products, customerSyncer, f.links, f.client,
		allocator, f.statuses, &memOps{}, "SAR", "completed", logger,
	)
	return f
}

func remoteOrder(id, reference int64) *salla.RemoteOrder {
	return &salla.RemoteOrder{
		ID:          id,
		ReferenceID: reference,
		Status:      salla.RemoteOrderStatus{ID: 1, Slug: "under_review"},
		Currency:    "SAR",
		Date:        salla.RemoteDate{Date: "2026-08-30 14:05:11.000000"},
		Customer: salla.RemoteCustomer{
			ID: 500, FirstName: "سارة", Mobile: "501234567", MobileCode: "+966",
		},
	}
}

func TestOrderSyncer_Pull(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	f.products.items["ITEM-1"] = &salla.Product{Code: "ITEM-1"}
	f.stock.set("ITEM-1", "WH-MAIN", 10)
	f.stock.set("ITEM-9", "WH-OVERFLOW", 1)

	f.client.listOrderItems = func(ctx context.Context, orderID int64) ([]salla.RemoteOrderItem, error) {
		assert.Equal(t, int64(4000), orderID)
		return []salla.RemoteOrderItem{
			{
				ID: 1, SKU: "ITEM-1", Quantity: 2,
				Amounts: salla.RemoteAmounts{PriceWithoutTax: salla.RemoteMoney{Amount: decimal.NewFromInt(50)}},
				Product: salla.RemoteIDName{ID: 900},
			},
			{
				ID: 2, SKU: "UNKNOWN", Quantity: 1,
				Amounts: salla.RemoteAmounts{PriceWithoutTax: salla.RemoteMoney{Amount: decimal.NewFromInt(75)}},
				Product: salla.RemoteIDName{ID: 901},
			},
		}, nil
	}

	result := f.syncer.Pull(ctx, remoteOrder(4000, 1077))
	require.True(t, result.IsSuccess(), "pull failed: %s", result.Message)

	order, err := f.orders.ByID(ctx, "SO-1077")
	require.NoError(t, err)
	assert.Equal(t, "1077", order.RemoteReference)
	assert.Equal(t, "under_review", order.StatusSlug)
	assert.Equal(t, "SAR", order.Currency)
	assert.Equal(t, time.Date(2026, 8, 30, 14, 5, 11, 0, time.UTC), order.PlacedAt)
	require.Len(t, order.Items, 2)

	resolved := order.Items[0]
	assert.Equal(t, "ITEM-1", resolved.ProductCode)
	assert.Equal(t, "WH-MAIN", resolved.WarehouseID)
	assert.False(t, resolved.Backordered)
	assert.True(t, resolved.Rate.Equal(decimal.NewFromInt(50)))

	unresolved := order.Items[1]
	assert.Empty(t, unresolved.ProductCode, "unmatched lines keep an empty code rather than failing the pull")
	assert.Empty(t, unresolved.WarehouseID)

	// The buyer was resolved through the customer flow and linked.
	custLink, err := f.links.ByRemote(ctx, salla.KindCustomer, "500")
	require.NoError(t, err)
	assert.Equal(t, custLink.LocalKey, order.CustomerID)

	orderLink, err := f.links.ByRemote(ctx, salla.KindOrder, "4000")
	require.NoError(t, err)
	assert.Equal(t, "SO-1077", orderLink.LocalKey)
}

func TestOrderSyncer_Pull_SecondPullIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	f.client.listOrderItems = func(ctx context.Context, orderID int64) ([]salla.RemoteOrderItem, error) {
		return nil, nil
	}

	result := f.syncer.Pull(ctx, remoteOrder(4000, 1077))
	require.True(t, result.IsSuccess(), "pull failed: %s", result.Message)

	// Second pull never fetches items again (the stub would now fail).
	f.client.listOrderItems = nil
	result = f.syncer.Pull(ctx, remoteOrder(4000, 1077))
	assert.True(t, result.IsSuccess())
	assert.Len(t, f.orders.items, 1)
}

func TestOrderSyncer_Pull_Backorder(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	f.products.items["ITEM-1"] = &salla.Product{Code: "ITEM-1"}
	f.stock.set("ITEM-1", "WH-MAIN", 1)

	f.client.listOrderItems = func(ctx context.Context, orderID int64) ([]salla.RemoteOrderItem, error) {
		return []salla.RemoteOrderItem{
			{ID: 1, SKU: "ITEM-1", Quantity: 5, Product: salla.RemoteIDName{ID: 900}},
		}, nil
	}

	result := f.syncer.Pull(ctx, remoteOrder(4000, 1077))
	require.True(t, result.IsSuccess(), "pull failed: %s", result.Message)

	order, err := f.orders.ByID(ctx, "SO-1077")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "WH-MAIN", order.Items[0].WarehouseID)
	assert.True(t, order.Items[0].Backordered)
}

func TestOrderSyncer_Pull_ResolvesLineByProductLink(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	f.products.items["ITEM-1"] = &salla.Product{Code: "ITEM-1"}
	require.NoError(t, f.links.Save(ctx, &salla.ExternalLink{
		Kind: salla.KindProduct, LocalKey: "ITEM-1", RemoteID: "900",
	}))

	f.client.listOrderItems = func(ctx context.Context, orderID int64) ([]salla.RemoteOrderItem, error) {
		// Platform line carries no sku, only the product id.
		return []salla.RemoteOrderItem{
			{ID: 1, Quantity: 1, Product: salla.RemoteIDName{ID: 900}},
		}, nil
	}

	result := f.syncer.Pull(ctx, remoteOrder(4000, 1077))
	require.True(t, result.IsSuccess(), "pull failed: %s", result.Message)

	order, err := f.orders.ByID(ctx, "SO-1077")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "ITEM-1", order.Items[0].ProductCode)
}

func TestOrderSyncer_SyncStatusCatalog(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	f.client.listOrderStatuses = func(ctx context.Context) ([]salla.RemoteOrderStatus, error) {
		return []salla.RemoteOrderStatus{
			{ID: 1, Name: "بانتظار المراجعة", Slug: "under_review"},
			{ID: 5, Name: "تم التنفيذ", Slug: "completed"},
		}, nil
	}

	require.NoError(t, f.syncer.SyncStatusCatalog(ctx))

	st, err := f.statuses.BySlug(ctx, "completed")
	require.NoError(t, err)
	assert.Equal(t, "5", st.RemoteID)
}

func TestOrderSyncer_MarkFulfilled(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	require.NoError(t, f.orders.Save(ctx, &salla.Order{ID: "SO-1077", StatusSlug: "under_review"}))
	require.NoError(t, f.links.Save(ctx, &salla.ExternalLink{
		Kind: salla.KindOrder, LocalKey: "SO-1077", RemoteID: "4000",
	}))
	require.NoError(t, f.statuses.SaveAll(ctx, []*salla.OrderStatus{
		{RemoteID: "5", Slug: "completed"},
	}))

	var sent *salla.OrderStatusAction
	f.client.changeOrderStatus = func(ctx context.Context, action *salla.OrderStatusAction) error {
		sent = action
		return nil
	}

	result := f.syncer.MarkFulfilled(ctx, "SO-1077")
	require.True(t, result.IsSuccess(), "fulfilment failed: %s", result.Message)
	require.NotNil(t, sent)
	assert.Equal(t, int64(4000), sent.OrderID)
	assert.Equal(t, int64(5), sent.StatusID)

	order, err := f.orders.ByID(ctx, "SO-1077")
	require.NoError(t, err)
	assert.True(t, order.Fulfilled)
	assert.Equal(t, "completed", order.StatusSlug)
}

func TestOrderSyncer_MarkFulfilled_AlreadyDone(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	require.NoError(t, f.orders.Save(ctx, &salla.Order{ID: "SO-1077", Fulfilled: true}))

	result := f.syncer.MarkFulfilled(ctx, "SO-1077")
	assert.True(t, result.IsSkipped(), "no platform call is made for an order already reported")
}

func TestOrderSyncer_MarkFulfilled_UnlinkedOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	require.NoError(t, f.orders.Save(ctx, &salla.Order{
		ID: "SO-2001",
		Items: []salla.OrderItem{
			{ProductCode: "ITEM-1", Quantity: 2},
			{ProductCode: "ITEM-9", Quantity: 1},
		},
	}))
	require.NoError(t, f.links.Save(ctx, &salla.ExternalLink{
		Kind: salla.KindProduct, LocalKey: "ITEM-1", RemoteID: "900",
	}))
	f.stock.set("ITEM-1", "WH-MAIN", 4)
	f.stock.set("ITEM-1", "WH-OVERFLOW", 3)

	var gotID int64
	var gotQty int
	f.client.updateProduct = func(ctx context.Context, id int64, payload *salla.ProductPayload, locale string) (*salla.RemoteProduct, error) {
		gotID = id
		require.NotNil(t, payload.Quantity)
		gotQty = *payload.Quantity
		return &salla.RemoteProduct{ID: id}, nil
	}

	result := f.syncer.MarkFulfilled(ctx, "SO-2001")
	assert.True(t, result.IsSkipped(), "an unlinked order has no platform status to change")
	assert.Equal(t, int64(900), gotID, "only the linked item's product is refreshed")
	assert.Equal(t, 7, gotQty, "pushed quantity sums both warehouses")

	order, err := f.orders.ByID(ctx, "SO-2001")
	require.NoError(t, err)
	assert.True(t, order.Fulfilled)
}

func TestOrderSyncer_MarkFulfilled_UnknownStatusSlug(t *testing.T) {
	ctx := context.Background()
	f := newOrderSyncerFixture(t)

	require.NoError(t, f.orders.Save(ctx, &salla.Order{ID: "SO-1077"}))
	require.NoError(t, f.links.Save(ctx, &salla.ExternalLink{
		Kind: salla.KindOrder, LocalKey: "SO-1077", RemoteID: "4000",
	}))

	result := f.syncer.MarkFulfilled(ctx, "SO-1077")
	assert.Equal(t, salla.OutcomeError, result.Outcome, "an unsynced status catalog fails fast")

	order, err := f.orders.ByID(ctx, "SO-1077")
	require.NoError(t, err)
	assert.False(t, order.Fulfilled)
}

func TestParseOrderDate(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2026-08-30 14:05:11.000000", time.Date(2026, 8, 30, 14, 5, 11, 0, time.UTC)},
		{"2026-08-30 14:05:11", time.Date(2026, 8, 30, 14, 5, 11, 0, time.UTC)},
		{"2026-08-30T14:05:11Z", time.Date(2026, 8, 30, 14, 5, 11, 0, time.UTC)},
		{"not a date", fallback},
		{"", fallback},
	}
	for _, tc := range cases {
		got := parseOrderDate(tc.raw, fallback)
		assert.True(t, got.Equal(tc.want), "raw %q parsed to %v", tc.raw, got)
	}
}
