package salla

import (
	"context"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Remote wire types
// ---------------------------------------------------------------------------

// Pagination is the envelope pagination block on list endpoints.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
}

// RemoteProduct is a product record as the platform returns it.
type RemoteProduct struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       RemoteMoney     `json:"price"`
	Weight      decimal.Decimal `json:"weight"`
	Quantity    int             `json:"quantity"`
	Status      string          `json:"status"`
	Categories  []RemoteIDName  `json:"categories"`
	Images      []RemoteImage   `json:"images"`
	URLs        RemoteURLs      `json:"urls"`
}

// RemoteMoney is the platform's amount/currency pair.
type RemoteMoney struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// RemoteIDName is the id/name shape embedded in several resources.
type RemoteIDName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RemoteImage is one uploaded product image.
type RemoteImage struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// RemoteURLs carries the dashboard and storefront links of a record.
type RemoteURLs struct {
	Admin    string `json:"admin"`
	Customer string `json:"customer"`
}

// RemoteCategory is a category record, with children inlined one level of
// nesting at a time.
type RemoteCategory struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	ParentID      int64            `json:"parent_id"`
	Status        string           `json:"status"`
	SubCategories []RemoteCategory `json:"sub_categories"`
}

// RemoteCustomer is a buyer record.
type RemoteCustomer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Mobile    string `json:"mobile"`
	MobileCode string `json:"mobile_code"`
	Email     string `json:"email"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// RemoteOrder is an order record. Items are fetched separately.
type RemoteOrder struct {
	ID          int64              `json:"id"`
	ReferenceID int64              `json:"reference_id"`
	Status      RemoteOrderStatus  `json:"status"`
	Currency    string             `json:"currency"`
	Date        RemoteDate         `json:"date"`
	Customer    RemoteCustomer     `json:"customer"`
	Options     []RemoteOrderOption `json:"options"`
}

// RemoteOrderStatus is the status block embedded in an order.
type RemoteOrderStatus struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// RemoteDate is the platform's date object.
type RemoteDate struct {
	Date string `json:"date"`
}

// RemoteOrderOption is one checkout question answered by the buyer.
type RemoteOrderOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RemoteOrderItem is one order line.
type RemoteOrderItem struct {
	ID       int64       `json:"id"`
	SKU      string      `json:"sku"`
	Quantity int         `json:"quantity"`
	Amounts  RemoteAmounts `json:"amounts"`
	Product  RemoteIDName `json:"product"`
}

// RemoteAmounts carries the per-line pricing block.
type RemoteAmounts struct {
	PriceWithoutTax RemoteMoney `json:"price_without_tax"`
	Total           RemoteMoney `json:"total"`
}

// ---------------------------------------------------------------------------
// Outbound payloads
// ---------------------------------------------------------------------------
//
// Pointer fields are omitted from the wire when nil, which is how
// field-selective sync avoids clobbering platform-side edits.

// ProductPayload is the outbound product create/update body.
type ProductPayload struct {
	SKU         *string          `json:"sku,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
	ProductType *string          `json:"product_type,omitempty"`
	Status      *string          `json:"status,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Categories  []int64          `json:"categories,omitempty"`
}

// CategoryPayload is the outbound category create/update body.
type CategoryPayload struct {
	Name     *string `json:"name,omitempty"`
	ParentID *int64  `json:"parent_id,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// OrderStatusAction is the outbound status change body for orders/actions.
type OrderStatusAction struct {
	OrderID  int64  `json:"order_id"`
	StatusID int64  `json:"status_id"`
	Note     string `json:"note,omitempty"`
}

// ---------------------------------------------------------------------------
// Client port
// ---------------------------------------------------------------------------

// Client is the typed platform API port. Every method performs exactly one
// HTTP request and maps failures to the remote error taxonomy; it never
// retries. Locale selects the Accept-Language header, empty for the store
// default.
type Client interface {
	// Products
	GetProduct(ctx context.Context, id int64) (*RemoteProduct, error)
	GetProductBySKU(ctx context.Context, sku string) (*RemoteProduct, error)
	ListProducts(ctx context.Context, page, perPage int) ([]RemoteProduct, *Pagination, error)
	CreateProduct(ctx context.Context, payload *ProductPayload, locale string) (*RemoteProduct, error)
	UpdateProduct(ctx context.Context, id int64, payload *ProductPayload, locale string) (*RemoteProduct, error)
	UploadProductImage(ctx context.Context, productID int64, filename string, data []byte) (*RemoteImage, error)
	DeleteProductImage(ctx context.Context, imageID int64) error

	// Categories
	ListCategories(ctx context.Context, page, perPage int) ([]RemoteCategory, *Pagination, error)
	CreateCategory(ctx context.Context, payload *CategoryPayload, locale string) (*RemoteCategory, error)
	UpdateCategory(ctx context.Context, id int64, payload *CategoryPayload, locale string) (*RemoteCategory, error)

	// Customers
	ListCustomers(ctx context.Context, page, perPage int) ([]RemoteCustomer, *Pagination, error)

	// Orders
	GetOrder(ctx context.Context, id int64) (*RemoteOrder, error)
	ListOrders(ctx context.Context, page, perPage int) ([]RemoteOrder, *Pagination, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]RemoteOrderItem, error)
	ListOrderStatuses(ctx context.Context) ([]RemoteOrderStatus, error)
	ChangeOrderStatus(ctx context.Context, action *OrderStatusAction) error
}
