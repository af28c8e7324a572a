package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// maxResponseSize is the maximum allowed response size from the platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 2048

// ClientConfig holds the API client settings.
type ClientConfig struct {
	// APIBase is the admin API root, default https://api.salla.dev/admin/v2.
	APIBase string
	// TimeoutSeconds bounds each request, default 30.
	TimeoutSeconds int
	// PerPage is the default page size on list endpoints, default 50.
	PerPage int
}

func (c *ClientConfig) applyDefaults() {
	if c.APIBase == "" {
		c.APIBase = "https://api.salla.dev/admin/v2"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.PerPage <= 0 {
		c.PerPage = 50
	}
}

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the platform admin API. Each call performs one HTTP request
// and maps the outcome onto the domain error taxonomy; retry policy belongs
// to callers.
type Client struct {
	config     *ClientConfig
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// Interface assertion
var _ salla.Client = (*Client)(nil)

// NewClient creates an API client using tokens from the given source.
func NewClient(config *ClientConfig, tokens TokenSource, logger *zap.Logger) *Client {
	config.applyDefaults()
	return &Client{
		config: config,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// envelope is the standard response wrapper on every endpoint.
type envelope struct {
	Success    bool              `json:"success"`
	Data       json.RawMessage   `json:"data"`
	Pagination *salla.Pagination `json:"pagination"`
	Error      *apiErrorBody     `json:"error"`
}

// apiErrorBody is the error block of a failed response.
type apiErrorBody struct {
	Code    string                     `json:"code"`
	Message string                     `json:"message"`
	Fields  map[string]json.RawMessage `json:"fields"`
}

// ---------------------------------------------------------------------------
// Request plumbing
// ---------------------------------------------------------------------------

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any, locale string) (*envelope, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("salla: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	u := c.config.APIBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, locale)
}

// send attaches auth headers, executes the request and classifies the
// response. Used by doRequest and by the multipart upload path.
func (c *Client) send(req *http.Request, locale string) (*envelope, error) {
	token, err := c.tokens.Token(req.Context())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if locale != "" {
		req.Header.Set("Accept-Language", locale)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatus(resp, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("salla: malformed response: %w", err)
	}
	return &env, nil
}

// classifyStatus maps an HTTP error status onto the domain taxonomy. The
// mapping is total: every status >= 400 produces exactly one error type.
func classifyStatus(resp *http.Response, raw []byte) error {
	var env envelope
	_ = json.Unmarshal(raw, &env)

	message := http.StatusText(resp.StatusCode)
	if env.Error != nil && env.Error.Message != "" {
		message = env.Error.Message
	}
	base := salla.APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Body:       truncate(string(raw)),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &salla.AuthenticationError{APIError: base}
	case http.StatusNotFound:
		return &salla.NotFoundError{APIError: base}
	case http.StatusUnprocessableEntity:
		return &salla.ValidationError{APIError: base, FieldErrors: parseFieldErrors(env.Error)}
	case http.StatusTooManyRequests:
		return &salla.RateLimitError{APIError: base, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return &base
	}
}

// parseFieldErrors normalizes the 422 fields block, which the platform sends
// either as a list of messages or a single string per field.
func parseFieldErrors(errBody *apiErrorBody) map[string][]string {
	out := map[string][]string{}
	if errBody == nil {
		return out
	}
	for field, raw := range errBody.Fields {
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			out[field] = list
			continue
		}
		var single string
		if err := json.Unmarshal(raw, &single); err == nil {
			out[field] = []string{single}
		}
	}
	return out
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// classifyTransportError distinguishes deadline expiry from connection
// failure for requests that never produced a response.
func classifyTransportError(err error) error {
	msg := err.Error()
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &salla.TimeoutError{APIError: salla.APIError{Message: msg}}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &salla.ConnectionError{APIError: salla.APIError{Message: msg}}
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

func decodeData(env *envelope, out any) error {
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("salla: decode response data: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// GetProduct retrieves one product by platform id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*salla.RemoteProduct, error) {
	env, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil, "")
	if err != nil {
		return nil, annotateNotFound(err, fmt.Sprintf("product id=%d", id))
	}
	var p salla.RemoteProduct
	if err := decodeData(env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductBySKU retrieves one product by its SKU.
func (c *Client) GetProductBySKU(ctx context.Context, sku string) (*salla.RemoteProduct, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/products/sku/"+url.PathEscape(sku), nil, nil, "")
	if err != nil {
		return nil, annotateNotFound(err, "product sku="+sku)
	}
	var p salla.RemoteProduct
	if err := decodeData(env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns one page of products with the pagination block.
func (c *Client) ListProducts(ctx context.Context, page, perPage int) ([]salla.RemoteProduct, *salla.Pagination, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/products", pageQuery(page, perPage), nil, "")
	if err != nil {
		return nil, nil, err
	}
	var items []salla.RemoteProduct
	if err := decodeData(env, &items); err != nil {
		return nil, nil, err
	}
	return items, env.Pagination, nil
}

// CreateProduct creates a product using the given locale for translatable
// fields.
func (c *Client) CreateProduct(ctx context.Context, payload *salla.ProductPayload, locale string) (*salla.RemoteProduct, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/products", nil, payload, locale)
	if err != nil {
		return nil, err
	}
	var p salla.RemoteProduct
	if err := decodeData(env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct updates a product using the given locale for translatable
// fields.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload *salla.ProductPayload, locale string) (*salla.RemoteProduct, error) {
	env, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil, payload, locale)
	if err != nil {
		return nil, annotateNotFound(err, fmt.Sprintf("product id=%d", id))
	}
	var p salla.RemoteProduct
	if err := decodeData(env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UploadProductImage uploads one image as multipart form data and returns the
// platform image record.
func (c *Client) UploadProductImage(ctx context.Context, productID int64, filename string, data []byte) (*salla.RemoteImage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("photo", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/products/%d/images", c.config.APIBase, productID), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	env, err := c.send(req, "")
	if err != nil {
		return nil, err
	}
	var img salla.RemoteImage
	if err := decodeData(env, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteProductImage removes one uploaded image by its platform id.
func (c *Client) DeleteProductImage(ctx context.Context, imageID int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/products/images/%d", imageID), nil, nil, "")
	return annotateNotFound(err, fmt.Sprintf("image id=%d", imageID))
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// ListCategories returns one page of categories with children inlined.
func (c *Client) ListCategories(ctx context.Context, page, perPage int) ([]salla.RemoteCategory, *salla.Pagination, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/categories", pageQuery(page, perPage), nil, "")
	if err != nil {
		return nil, nil, err
	}
	var items []salla.RemoteCategory
	if err := decodeData(env, &items); err != nil {
		return nil, nil, err
	}
	return items, env.Pagination, nil
}

// CreateCategory creates a category using the given locale for its name.
func (c *Client) CreateCategory(ctx context.Context, payload *salla.CategoryPayload, locale string) (*salla.RemoteCategory, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/categories", nil, payload, locale)
	if err != nil {
		return nil, err
	}
	var cat salla.RemoteCategory
	if err := decodeData(env, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory updates a category using the given locale for its name.
func (c *Client) UpdateCategory(ctx context.Context, id int64, payload *salla.CategoryPayload, locale string) (*salla.RemoteCategory, error) {
	env, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), nil, payload, locale)
	if err != nil {
		return nil, annotateNotFound(err, fmt.Sprintf("category id=%d", id))
	}
	var cat salla.RemoteCategory
	if err := decodeData(env, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

// ListCustomers returns one page of customers.
func (c *Client) ListCustomers(ctx context.Context, page, perPage int) ([]salla.RemoteCustomer, *salla.Pagination, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/customers", pageQuery(page, perPage), nil, "")
	if err != nil {
		return nil, nil, err
	}
	var items []salla.RemoteCustomer
	if err := decodeData(env, &items); err != nil {
		return nil, nil, err
	}
	return items, env.Pagination, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// GetOrder retrieves one order by platform id, without its items.
func (c *Client) GetOrder(ctx context.Context, id int64) (*salla.RemoteOrder, error) {
	env, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, "")
	if err != nil {
		return nil, annotateNotFound(err, fmt.Sprintf("order id=%d", id))
	}
	var o salla.RemoteOrder
	if err := decodeData(env, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns one page of orders.
func (c *Client) ListOrders(ctx context.Context, page, perPage int) ([]salla.RemoteOrder, *salla.Pagination, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/orders", pageQuery(page, perPage), nil, "")
	if err != nil {
		return nil, nil, err
	}
	var items []salla.RemoteOrder
	if err := decodeData(env, &items); err != nil {
		return nil, nil, err
	}
	return items, env.Pagination, nil
}

// ListOrderItems returns all lines of one order.
func (c *Client) ListOrderItems(ctx context.Context, orderID int64) ([]salla.RemoteOrderItem, error) {
	q := url.Values{}
	q.Set("order_id", strconv.FormatInt(orderID, 10))
	env, err := c.doRequest(ctx, http.MethodGet, "/orders/items", q, nil, "")
	if err != nil {
		return nil, err
	}
	var items []salla.RemoteOrderItem
	if err := decodeData(env, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListOrderStatuses returns the store's order status catalog.
func (c *Client) ListOrderStatuses(ctx context.Context) ([]salla.RemoteOrderStatus, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/orders/statuses", nil, nil, "")
	if err != nil {
		return nil, err
	}
	var statuses []salla.RemoteOrderStatus
	if err := decodeData(env, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// ChangeOrderStatus submits a status change action for one order.
func (c *Client) ChangeOrderStatus(ctx context.Context, action *salla.OrderStatusAction) error {
	body := map[string]any{
		"operation": "change_status",
		"orders":    []*salla.OrderStatusAction{action},
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/orders/actions", nil, body, "")
	return err
}

// annotateNotFound fills the Resource on a NotFoundError so callers log what
// was looked up. Other errors pass through untouched.
func annotateNotFound(err error, resource string) error {
	if err == nil {
		return nil
	}
	var nf *salla.NotFoundError
	if errors.As(err, &nf) && nf.Resource == "" {
		nf.Resource = resource
	}
	return err
}
