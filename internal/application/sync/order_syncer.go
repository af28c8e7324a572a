package sync

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// Platform order-date layouts, most precise first.
var orderDateLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// OrderSyncer pulls platform orders into local sales orders. Lines are
// resolved to local products and assigned to a warehouse; the buyer is
// resolved through the CustomerSyncer. Outbound it only reports fulfilment
// by changing the platform order status.
type OrderSyncer struct {
	orders    salla.OrderRepository
	products  salla.ProductRepository
	customers *CustomerSyncer
	links     salla.LinkRepository
	client    salla.Client
	allocator *StockAllocator
	statuses  salla.OrderStatusRepository
	ops       salla.SyncOperationRepository
	// defaultCurrency fills orders whose payload omits the currency.
	defaultCurrency string
	// fulfilledSlug is the platform status slug reported on fulfilment.
	fulfilledSlug string
	logger        *zap.Logger
	now           func() time.Time
}

// NewOrderSyncer creates a new OrderSyncer
func NewOrderSyncer(
	orders salla.OrderRepository,
	products salla.ProductRepository,
	customers *CustomerSyncer,
	links salla.LinkRepository,
	client salla.Client,
	allocator *StockAllocator,
	statuses salla.OrderStatusRepository,
	ops salla.SyncOperationRepository,
	defaultCurrency string,
	fulfilledSlug string,
	logger *zap.Logger,
) *OrderSyncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderSyncer{
		orders:          orders,
		products:        products,
		customers:       customers,
		links:           links,
		client:          client,
		allocator:       allocator,
		statuses:        statuses,
		ops:             ops,
		defaultCurrency: defaultCurrency,
		fulfilledSlug:   fulfilledSlug,
		logger:          logger,
		now:             time.Now,
	}
}

// Kind returns the entity kind this syncer handles
func (s *OrderSyncer) Kind() salla.EntityKind {
	return salla.KindOrder
}

// ShouldSync always reports true; orders carry no per-entity opt-out.
func (s *OrderSyncer) ShouldSync(ctx context.Context, id string) (bool, error) {
	return true, nil
}

// Push is not supported; orders flow inbound, fulfilment goes out through
// MarkFulfilled.
func (s *OrderSyncer) Push(ctx context.Context, id string) salla.SyncResult {
	return salla.Skipped("orders sync inbound only")
}

// Pull ingests one remote order. An order already linked is left untouched,
// making repeated pulls of the same record no-ops.
func (s *OrderSyncer) Pull(ctx context.Context, remote *salla.RemoteOrder) salla.SyncResult {
	remoteID := strconv.FormatInt(remote.ID, 10)

	if link, err := s.links.ByRemote(ctx, salla.KindOrder, remoteID); err == nil {
		return s.record(ctx, link.LocalKey, remoteID, salla.Success(remoteID))
	} else if !errors.Is(err, salla.ErrLinkNotFound) {
		return s.record(ctx, "", remoteID, salla.FailedWith(err))
	}

	customerID, result := s.customers.Pull(ctx, &remote.Customer)
	if !result.IsSuccess() {
		return s.record(ctx, "", remoteID, salla.Failed("resolving customer: "+result.Message))
	}
	if err := s.customers.ApplyOrderOptions(ctx, customerID, remote.Options); err != nil {
		s.logger.Warn("failed to apply order options to customer",
			zap.String("customer", customerID), zap.Error(err))
	}

	items, err := s.pullItems(ctx, remote.ID)
	if err != nil {
		return s.record(ctx, "", remoteID, salla.FailedWith(err))
	}

	currency := remote.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	localID := "SO-" + strconv.FormatInt(remote.ReferenceID, 10)
	order := &salla.Order{
		ID:              localID,
		CustomerID:      customerID,
		RemoteReference: strconv.FormatInt(remote.ReferenceID, 10),
		StatusSlug:      remote.Status.Slug,
		Currency:        currency,
		Items:           items,
		PlacedAt:        parseOrderDate(remote.Date.Date, s.now()),
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return s.record(ctx, localID, remoteID, salla.FailedWith(err))
	}
	if err := s.links.Save(ctx, &salla.ExternalLink{
		Kind:      salla.KindOrder,
		LocalKey:  localID,
		RemoteID:  remoteID,
		CreatedAt: s.now(),
	}); err != nil {
		return s.record(ctx, localID, remoteID, salla.FailedWith(err))
	}

	return s.record(ctx, localID, remoteID, salla.Success(remoteID))
}

// SyncStatusCatalog pulls the platform's order status catalog so outbound
// status changes can reference a valid id.
func (s *OrderSyncer) SyncStatusCatalog(ctx context.Context) error {
	remote, err := s.client.ListOrderStatuses(ctx)
	if err != nil {
		return err
	}

	statuses := make([]*salla.OrderStatus, 0, len(remote))
	for _, st := range remote {
		statuses = append(statuses, &salla.OrderStatus{
			RemoteID: strconv.FormatInt(st.ID, 10),
			Name:     st.Name,
			Slug:     st.Slug,
		})
	}
	return s.statuses.SaveAll(ctx, statuses)
}

// MarkFulfilled reports a local order's fulfilment to the platform by
// changing the remote order to the configured status. An order that did not
// originate on the platform has no remote counterpart to update; its items
// consumed local stock, so their platform quantities are refreshed instead.
func (s *OrderSyncer) MarkFulfilled(ctx context.Context, orderID string) salla.SyncResult {
	order, err := s.orders.ByID(ctx, orderID)
	if err != nil {
		return s.record(ctx, orderID, "", salla.FailedWith(err))
	}
	if order.Fulfilled {
		return s.record(ctx, orderID, "", salla.Skipped("order already reported fulfilled"))
	}

	link, err := s.links.ByLocal(ctx, salla.KindOrder, orderID)
	if errors.Is(err, salla.ErrLinkNotFound) {
		return s.refreshItemStock(ctx, order)
	}
	if err != nil {
		return s.record(ctx, orderID, "", salla.FailedWith(err))
	}
	remoteOrderID, err := strconv.ParseInt(link.RemoteID, 10, 64)
	if err != nil {
		return s.record(ctx, orderID, link.RemoteID, salla.FailedWith(err))
	}

	status, err := s.statuses.BySlug(ctx, s.fulfilledSlug)
	if err != nil {
		return s.record(ctx, orderID, link.RemoteID, salla.FailedWith(err))
	}
	statusID, err := strconv.ParseInt(status.RemoteID, 10, 64)
	if err != nil {
		return s.record(ctx, orderID, link.RemoteID, salla.FailedWith(err))
	}

	if err := s.client.ChangeOrderStatus(ctx, &salla.OrderStatusAction{
		OrderID:  remoteOrderID,
		StatusID: statusID,
	}); err != nil {
		return s.record(ctx, orderID, link.RemoteID, salla.FailedWith(err))
	}

	order.Fulfilled = true
	order.StatusSlug = s.fulfilledSlug
	if err := s.orders.Save(ctx, order); err != nil {
		return s.record(ctx, orderID, link.RemoteID, salla.FailedWith(err))
	}
	return s.record(ctx, orderID, link.RemoteID, salla.Success(link.RemoteID))
}

// refreshItemStock pushes current quantities for an unlinked order's items.
// Items not resolved to a linked product are skipped.
func (s *OrderSyncer) refreshItemStock(ctx context.Context, order *salla.Order) salla.SyncResult {
	refreshed := 0
	for _, item := range order.Items {
		if item.ProductCode == "" {
			continue
		}
		link, err := s.links.ByLocal(ctx, salla.KindProduct, item.ProductCode)
		if errors.Is(err, salla.ErrLinkNotFound) {
			continue
		}
		if err != nil {
			return s.record(ctx, order.ID, "", salla.FailedWith(err))
		}
		remoteID, err := strconv.ParseInt(link.RemoteID, 10, 64)
		if err != nil {
			return s.record(ctx, order.ID, "", salla.FailedWith(err))
		}
		qty, err := s.allocator.TotalAvailable(ctx, item.ProductCode)
		if err != nil {
			return s.record(ctx, order.ID, "", salla.FailedWith(err))
		}
		if _, err := s.client.UpdateProduct(ctx, remoteID,
			&salla.ProductPayload{Quantity: &qty}, LocalePrimary); err != nil {
			return s.record(ctx, order.ID, "", salla.FailedWith(err))
		}
		refreshed++
	}

	order.Fulfilled = true
	if err := s.orders.Save(ctx, order); err != nil {
		return s.record(ctx, order.ID, "", salla.FailedWith(err))
	}
	return s.record(ctx, order.ID, "",
		salla.Skipped("order not linked, refreshed stock for "+strconv.Itoa(refreshed)+" items"))
}

// pullItems fetches and resolves the order's lines. Lines whose product
// cannot be matched keep an empty product code rather than failing the pull.
func (s *OrderSyncer) pullItems(ctx context.Context, remoteOrderID int64) ([]salla.OrderItem, error) {
	remoteItems, err := s.client.ListOrderItems(ctx, remoteOrderID)
	if err != nil {
		return nil, err
	}

	items := make([]salla.OrderItem, 0, len(remoteItems))
	for _, ri := range remoteItems {
		item := salla.OrderItem{
			RemoteProductID: strconv.FormatInt(ri.Product.ID, 10),
			Quantity:        ri.Quantity,
			Rate:            ri.Amounts.PriceWithoutTax.Amount,
		}

		code := s.resolveProduct(ctx, ri)
		item.ProductCode = code

		if code != "" {
			alloc, err := s.allocator.Allocate(ctx, code, ri.Quantity)
			if err != nil {
				return nil, err
			}
			item.WarehouseID = alloc.WarehouseID
			item.Backordered = alloc.Backordered
		}

		items = append(items, item)
	}
	return items, nil
}

// resolveProduct matches a line to a local product by SKU, then by the
// product link. Empty when neither matches.
func (s *OrderSyncer) resolveProduct(ctx context.Context, ri salla.RemoteOrderItem) string {
	if ri.SKU != "" {
		if _, err := s.products.ByCode(ctx, ri.SKU); err == nil {
			return ri.SKU
		}
	}
	link, err := s.links.ByRemote(ctx, salla.KindProduct, strconv.FormatInt(ri.Product.ID, 10))
	if err == nil {
		return link.LocalKey
	}
	if !errors.Is(err, salla.ErrLinkNotFound) {
		s.logger.Warn("product link lookup failed during order pull",
			zap.Int64("remote_product", ri.Product.ID), zap.Error(err))
	}
	return ""
}

func (s *OrderSyncer) record(ctx context.Context, id, remoteID string, result salla.SyncResult) salla.SyncResult {
	dir := salla.DirectionPull
	op := &salla.SyncOperation{
		Kind:      salla.KindOrder,
		Direction: dir,
		LocalKey:  id,
		RemoteID:  remoteID,
		Outcome:   result.Outcome,
		Message:   result.Reason + result.Message,
		CreatedAt: s.now(),
	}
	if err := s.ops.Record(ctx, op); err != nil {
		s.logger.Warn("failed to record sync operation",
			zap.String("order", id), zap.Error(err))
	}
	return result
}

func parseOrderDate(raw string, fallback time.Time) time.Time {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}

// Ensure OrderSyncer implements EntitySyncManager
var _ salla.EntitySyncManager = (*OrderSyncer)(nil)
