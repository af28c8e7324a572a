package sync

import (
	"context"
	"errors"
	"strconv"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// ---------------------------------------------------------------------------
// in-memory repositories
// ---------------------------------------------------------------------------

var errFakeNotFound = errors.New("record not found")

type memLinks struct {
	byLocal  map[string]*salla.ExternalLink
	byRemote map[string]*salla.ExternalLink
	saves    int
}

func newMemLinks() *memLinks {
	return &memLinks{
		byLocal:  map[string]*salla.ExternalLink{},
		byRemote: map[string]*salla.ExternalLink{},
	}
}

func linkLocalKey(kind salla.EntityKind, localKey string) string {
	return string(kind) + "|" + localKey
}

func (r *memLinks) ByLocal(ctx context.Context, kind salla.EntityKind, localKey string) (*salla.ExternalLink, error) {
	if l, ok := r.byLocal[linkLocalKey(kind, localKey)]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, salla.ErrLinkNotFound
}

func (r *memLinks) ByRemote(ctx context.Context, kind salla.EntityKind, remoteID string) (*salla.ExternalLink, error) {
	if l, ok := r.byRemote[linkLocalKey(kind, remoteID)]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, salla.ErrLinkNotFound
}

func (r *memLinks) Save(ctx context.Context, link *salla.ExternalLink) error {
	if err := link.Validate(); err != nil {
		return err
	}
	cp := *link
	r.byLocal[linkLocalKey(link.Kind, link.LocalKey)] = &cp
	r.byRemote[linkLocalKey(link.Kind, link.RemoteID)] = &cp
	r.saves++
	return nil
}

func (r *memLinks) Delete(ctx context.Context, kind salla.EntityKind, localKey string) error {
	if l, ok := r.byLocal[linkLocalKey(kind, localKey)]; ok {
		delete(r.byRemote, linkLocalKey(kind, l.RemoteID))
		delete(r.byLocal, linkLocalKey(kind, localKey))
	}
	return nil
}

type memProducts struct {
	items   map[string]*salla.Product
	inserts int
}

func newMemProducts() *memProducts {
	return &memProducts{items: map[string]*salla.Product{}}
}

func (r *memProducts) ByCode(ctx context.Context, code string) (*salla.Product, error) {
	if p, ok := r.items[code]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, errFakeNotFound
}

func (r *memProducts) Save(ctx context.Context, p *salla.Product) error {
	if _, ok := r.items[p.Code]; !ok {
		r.inserts++
	}
	cp := *p
	r.items[p.Code] = &cp
	return nil
}

func (r *memProducts) ListSyncEnabled(ctx context.Context) ([]string, error) {
	var codes []string
	for code, p := range r.items {
		if p.Flags.Enabled {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

type memCategories struct {
	nodes map[string]*salla.CategoryNode
}

func newMemCategories() *memCategories {
	return &memCategories{nodes: map[string]*salla.CategoryNode{}}
}

func (r *memCategories) ByKey(ctx context.Context, key string) (*salla.CategoryNode, error) {
	if n, ok := r.nodes[key]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, salla.ErrCategoryNotFound
}

func (r *memCategories) Save(ctx context.Context, node *salla.CategoryNode) error {
	cp := *node
	r.nodes[node.Key] = &cp
	return nil
}

func (r *memCategories) Ancestors(ctx context.Context, key string) ([]*salla.CategoryNode, error) {
	var chain []*salla.CategoryNode
	node, ok := r.nodes[key]
	if !ok {
		return nil, salla.ErrCategoryNotFound
	}
	for node.ParentKey != "" {
		parent, ok := r.nodes[node.ParentKey]
		if !ok {
			break
		}
		cp := *parent
		chain = append([]*salla.CategoryNode{&cp}, chain...)
		node = parent
	}
	return chain, nil
}

func (r *memCategories) Descendants(ctx context.Context, key string) ([]*salla.CategoryNode, error) {
	var out []*salla.CategoryNode
	for _, n := range r.nodes {
		cur := n
		for cur.ParentKey != "" {
			if cur.ParentKey == key {
				cp := *n
				out = append(out, &cp)
				break
			}
			parent, ok := r.nodes[cur.ParentKey]
			if !ok {
				break
			}
			cur = parent
		}
	}
	return out, nil
}

func (r *memCategories) Roots(ctx context.Context) ([]*salla.CategoryNode, error) {
	var out []*salla.CategoryNode
	for _, n := range r.nodes {
		if n.ParentKey == "" {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memFieldStates struct {
	states map[string]*salla.FieldSyncState
}

func newMemFieldStates() *memFieldStates {
	return &memFieldStates{states: map[string]*salla.FieldSyncState{}}
}

func fieldKey(kind salla.EntityKind, localKey, field string) string {
	return string(kind) + "|" + localKey + "|" + field
}

func (r *memFieldStates) Get(ctx context.Context, kind salla.EntityKind, localKey, field string) (*salla.FieldSyncState, error) {
	if s, ok := r.states[fieldKey(kind, localKey, field)]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, salla.ErrFieldStateNotFound
}

func (r *memFieldStates) List(ctx context.Context, kind salla.EntityKind, localKey string) ([]*salla.FieldSyncState, error) {
	var out []*salla.FieldSyncState
	for _, s := range r.states {
		if s.Kind == kind && s.LocalKey == localKey {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memFieldStates) SetMany(ctx context.Context, states []*salla.FieldSyncState) error {
	for _, s := range states {
		cp := *s
		r.states[fieldKey(s.Kind, s.LocalKey, s.Field)] = &cp
	}
	return nil
}

type memManifests struct {
	manifests map[string]*salla.ImageManifest
	replaces  int
}

func newMemManifests() *memManifests {
	return &memManifests{manifests: map[string]*salla.ImageManifest{}}
}

func (r *memManifests) Get(ctx context.Context, productCode string) (*salla.ImageManifest, error) {
	if m, ok := r.manifests[productCode]; ok {
		cp := salla.ImageManifest{ProductCode: m.ProductCode, Entries: map[string]string{}}
		for k, v := range m.Entries {
			cp.Entries[k] = v
		}
		return &cp, nil
	}
	return nil, salla.ErrManifestNotFound
}

func (r *memManifests) Replace(ctx context.Context, manifest *salla.ImageManifest) error {
	cp := salla.ImageManifest{ProductCode: manifest.ProductCode, Entries: map[string]string{}}
	for k, v := range manifest.Entries {
		cp.Entries[k] = v
	}
	r.manifests[manifest.ProductCode] = &cp
	r.replaces++
	return nil
}

type memOps struct {
	ops []*salla.SyncOperation
}

func (r *memOps) Record(ctx context.Context, op *salla.SyncOperation) error {
	cp := *op
	r.ops = append(r.ops, &cp)
	return nil
}

func (r *memOps) Recent(ctx context.Context, kind salla.EntityKind, limit int) ([]*salla.SyncOperation, error) {
	return r.ops, nil
}

type memCustomers struct {
	items map[string]*salla.Customer
}

func newMemCustomers() *memCustomers {
	return &memCustomers{items: map[string]*salla.Customer{}}
}

func (r *memCustomers) ByID(ctx context.Context, id string) (*salla.Customer, error) {
	if c, ok := r.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, errFakeNotFound
}

func (r *memCustomers) ByMobile(ctx context.Context, mobile string) (*salla.Customer, error) {
	for _, c := range r.items {
		if c.Mobile == mobile {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCustomers) Save(ctx context.Context, c *salla.Customer) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

type memOrders struct {
	items map[string]*salla.Order
}

func newMemOrders() *memOrders {
	return &memOrders{items: map[string]*salla.Order{}}
}

func (r *memOrders) ByID(ctx context.Context, id string) (*salla.Order, error) {
	if o, ok := r.items[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, errFakeNotFound
}

func (r *memOrders) Save(ctx context.Context, o *salla.Order) error {
	cp := *o
	r.items[o.ID] = &cp
	return nil
}

type memOrderStatuses struct {
	bySlug map[string]*salla.OrderStatus
}

func newMemOrderStatuses() *memOrderStatuses {
	return &memOrderStatuses{bySlug: map[string]*salla.OrderStatus{}}
}

func (r *memOrderStatuses) BySlug(ctx context.Context, slug string) (*salla.OrderStatus, error) {
	if s, ok := r.bySlug[slug]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, salla.ErrOrderStatusNotFound
}

func (r *memOrderStatuses) SaveAll(ctx context.Context, statuses []*salla.OrderStatus) error {
	for _, s := range statuses {
		cp := *s
		r.bySlug[s.Slug] = &cp
	}
	return nil
}

func (r *memOrderStatuses) List(ctx context.Context) ([]*salla.OrderStatus, error) {
	var out []*salla.OrderStatus
	for _, s := range r.bySlug {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

type memStock struct {
	levels map[string]int
}

func newMemStock() *memStock {
	return &memStock{levels: map[string]int{}}
}

func (r *memStock) set(productCode, warehouseID string, qty int) {
	r.levels[productCode+"|"+warehouseID] = qty
}

func (r *memStock) Available(ctx context.Context, productCode, warehouseID string) (int, error) {
	return r.levels[productCode+"|"+warehouseID], nil
}

type memAttachments struct {
	files map[string][]byte
}

func newMemAttachments() *memAttachments {
	return &memAttachments{files: map[string][]byte{}}
}

func (r *memAttachments) Open(ctx context.Context, ref string) ([]byte, string, error) {
	data, ok := r.files[ref]
	if !ok {
		return nil, "", errFakeNotFound
	}
	return data, ref, nil
}

type fakeLocker struct {
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) Acquire(ctx context.Context, kind salla.EntityKind, localKey string) (bool, error) {
	key := string(kind) + "|" + localKey
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, kind salla.EntityKind, localKey string) error {
	delete(l.held, string(kind)+"|"+localKey)
	return nil
}

// ---------------------------------------------------------------------------
// stub platform client
// ---------------------------------------------------------------------------

var errStubUnexpected = errors.New("unexpected client call")

// stubClient implements salla.Client with overridable behavior per method.
// Unset methods fail the call.
type stubClient struct {
	getProduct        func(ctx context.Context, id int64) (*salla.RemoteProduct, error)
	getProductBySKU   func(ctx context.Context, sku string) (*salla.RemoteProduct, error)
	listProducts      func(ctx context.Context, page, perPage int) ([]salla.RemoteProduct, *salla.Pagination, error)
	createProduct     func(ctx context.Context, payload *salla.ProductPayload, locale string) (*salla.RemoteProduct, error)
	updateProduct     func(ctx context.Context, id int64, payload *salla.ProductPayload, locale string) (*salla.RemoteProduct, error)
	uploadImage       func(ctx context.Context, productID int64, filename string, data []byte) (*salla.RemoteImage, error)
	deleteImage       func(ctx context.Context, imageID int64) error
	listCategories    func(ctx context.Context, page, perPage int) ([]salla.RemoteCategory, *salla.Pagination, error)
	createCategory    func(ctx context.Context, payload *salla.CategoryPayload, locale string) (*salla.RemoteCategory, error)
	updateCategory    func(ctx context.Context, id int64, payload *salla.CategoryPayload, locale string) (*salla.RemoteCategory, error)
	listCustomers     func(ctx context.Context, page, perPage int) ([]salla.RemoteCustomer, *salla.Pagination, error)
	getOrder          func(ctx context.Context, id int64) (*salla.RemoteOrder, error)
	listOrders        func(ctx context.Context, page, perPage int) ([]salla.RemoteOrder, *salla.Pagination, error)
	listOrderItems    func(ctx context.Context, orderID int64) ([]salla.RemoteOrderItem, error)
	listOrderStatuses func(ctx context.Context) ([]salla.RemoteOrderStatus, error)
	changeOrderStatus func(ctx context.Context, action *salla.OrderStatusAction) error
}

func (c *stubClient) GetProduct(ctx context.Context, id int64) (*salla.RemoteProduct, error) {
	if c.getProduct == nil {
		return nil, errStubUnexpected
	}
	return c.getProduct(ctx, id)
}

func (c *stubClient) GetProductBySKU(ctx context.Context, sku string) (*salla.RemoteProduct, error) {
	if c.getProductBySKU == nil {
		return nil, errStubUnexpected
	}
	return c.getProductBySKU(ctx, sku)
}

func (c *stubClient) ListProducts(ctx context.Context, page, perPage int) ([]salla.RemoteProduct, *salla.Pagination, error) {
	if c.listProducts == nil {
		return nil, nil, errStubUnexpected
	}
	return c.listProducts(ctx, page, perPage)
}

func (c *stubClient) CreateProduct(ctx context.Context, payload *salla.ProductPayload, locale string) (*salla.RemoteProduct, error) {
	if c.createProduct == nil {
		return nil, errStubUnexpected
	}
	return c.createProduct(ctx, payload, locale)
}

func (c *stubClient) UpdateProduct(ctx context.Context, id int64, payload *salla.ProductPayload, locale string) (*salla.RemoteProduct, error) {
	if c.updateProduct == nil {
		return nil, errStubUnexpected
	}
	return c.updateProduct(ctx, id, payload, locale)
}

func (c *stubClient) UploadProductImage(ctx context.Context, productID int64, filename string, data []byte) (*salla.RemoteImage, error) {
	if c.uploadImage == nil {
		return nil, errStubUnexpected
	}
	return c.uploadImage(ctx, productID, filename, data)
}

func (c *stubClient) DeleteProductImage(ctx context.Context, imageID int64) error {
	if c.deleteImage == nil {
		return errStubUnexpected
	}
	return c.deleteImage(ctx, imageID)
}

func (c *stubClient) ListCategories(ctx context.Context, page, perPage int) ([]salla.RemoteCategory, *salla.Pagination, error) {
	if c.listCategories == nil {
		return nil, nil, errStubUnexpected
	}
	return c.listCategories(ctx, page, perPage)
}

func (c *stubClient) CreateCategory(ctx context.Context, payload *salla.CategoryPayload, locale string) (*salla.RemoteCategory, error) {
	if c.createCategory == nil {
		return nil, errStubUnexpected
	}
	return c.createCategory(ctx, payload, locale)
}

func (c *stubClient) UpdateCategory(ctx context.Context, id int64, payload *salla.CategoryPayload, locale string) (*salla.RemoteCategory, error) {
	if c.updateCategory == nil {
		return nil, errStubUnexpected
	}
	return c.updateCategory(ctx, id, payload, locale)
}

func (c *stubClient) ListCustomers(ctx context.Context, page, perPage int) ([]salla.RemoteCustomer, *salla.Pagination, error) {
	if c.listCustomers == nil {
		return nil, nil, errStubUnexpected
	}
	return c.listCustomers(ctx, page, perPage)
}

func (c *stubClient) GetOrder(ctx context.Context, id int64) (*salla.RemoteOrder, error) {
	if c.getOrder == nil {
		return nil, errStubUnexpected
	}
	return c.getOrder(ctx, id)
}

func (c *stubClient) ListOrders(ctx context.Context, page, perPage int) ([]salla.RemoteOrder, *salla.Pagination, error) {
	if c.listOrders == nil {
		return nil, nil, errStubUnexpected
	}
	return c.listOrders(ctx, page, perPage)
}

func (c *stubClient) ListOrderItems(ctx context.Context, orderID int64) ([]salla.RemoteOrderItem, error) {
	if c.listOrderItems == nil {
		return nil, errStubUnexpected
	}
	return c.listOrderItems(ctx, orderID)
}

func (c *stubClient) ListOrderStatuses(ctx context.Context) ([]salla.RemoteOrderStatus, error) {
	if c.listOrderStatuses == nil {
		return nil, errStubUnexpected
	}
	return c.listOrderStatuses(ctx)
}

func (c *stubClient) ChangeOrderStatus(ctx context.Context, action *salla.OrderStatusAction) error {
	if c.changeOrderStatus == nil {
		return errStubUnexpected
	}
	return c.changeOrderStatus(ctx, action)
}

var _ salla.Client = (*stubClient)(nil)

func notFoundErr(resource string) error {
	return &salla.NotFoundError{
		APIError: salla.APIError{StatusCode: 404, Message: "not found"},
		Resource: resource,
	}
}

func remoteProduct(id int64, sku string) *salla.RemoteProduct {
	return &salla.RemoteProduct{
		ID:   id,
		SKU:  sku,
		Name: "منتج " + strconv.FormatInt(id, 10),
		URLs: salla.RemoteURLs{
			Admin:    "https://s.salla.sa/admin/" + strconv.FormatInt(id, 10),
			Customer: "https://demo.salla.sa/p/" + strconv.FormatInt(id, 10),
		},
	}
}
