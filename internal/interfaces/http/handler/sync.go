package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	syncapp "github.com/erp/sallabridge/internal/application/sync"
	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/interfaces/http/dto"
)

// SyncService is the application surface the sync endpoints drive.
type SyncService interface {
	PushProduct(ctx context.Context, code string) salla.SyncResult
	PushCategory(ctx context.Context, key string) salla.SyncResult
	MarkOrderFulfilled(ctx context.Context, orderID string) salla.SyncResult
	ProductStatus(ctx context.Context, code string) (salla.FieldSyncStatus, error)
	SyncStatusCatalog(ctx context.Context) error
	LinkExistingProducts(ctx context.Context) (int, error)
}

// BulkImporter drives the paginated pull loops.
type BulkImporter interface {
	ImportProducts(ctx context.Context) (*syncapp.ImportSummary, error)
	ImportCategories(ctx context.Context) (*syncapp.ImportSummary, error)
	ImportCustomers(ctx context.Context) (*syncapp.ImportSummary, error)
	ImportOrders(ctx context.Context) (*syncapp.ImportSummary, error)
}

// SyncHandler exposes manual sync and bulk import triggers. Imports run
// inline; the paginated loops already honor request cancellation between
// pages.
type SyncHandler struct {
	BaseHandler
	service  SyncService
	importer BulkImporter
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service SyncService, importer BulkImporter) *SyncHandler {
	return &SyncHandler{service: service, importer: importer}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/products/:code", h.PushProduct)
		sync.GET("/products/:code/status", h.ProductStatus)
		sync.POST("/products/link", h.LinkProducts)
		sync.POST("/categories/:key", h.PushCategory)
		sync.POST("/orders/:id/fulfilled", h.MarkOrderFulfilled)
		sync.POST("/order-statuses", h.SyncStatusCatalog)
	}

	imports := rg.Group("/import")
	{
		imports.POST("/products", h.importWith(h.importer.ImportProducts))
		imports.POST("/categories", h.importWith(h.importer.ImportCategories))
		imports.POST("/customers", h.importWith(h.importer.ImportCustomers))
		imports.POST("/orders", h.importWith(h.importer.ImportOrders))
	}
}

// PushProduct handles POST /sync/products/:code
func (h *SyncHandler) PushProduct(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "product code is required")
		return
	}
	h.SyncResult(c, h.service.PushProduct(c.Request.Context(), code))
}

// PushCategory handles POST /sync/categories/:key
func (h *SyncHandler) PushCategory(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		h.BadRequest(c, "category key is required")
		return
	}
	h.SyncResult(c, h.service.PushCategory(c.Request.Context(), key))
}

// ProductStatus handles GET /sync/products/:code/status
func (h *SyncHandler) ProductStatus(c *gin.Context) {
	status, err := h.service.ProductStatus(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, gin.H{"code": c.Param("code"), "status": string(status)})
}

// LinkProducts handles POST /sync/products/link
func (h *SyncHandler) LinkProducts(c *gin.Context) {
	linked, err := h.service.LinkExistingProducts(c.Request.Context())
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, gin.H{"linked": linked})
}

// MarkOrderFulfilled handles POST /sync/orders/:id/fulfilled
func (h *SyncHandler) MarkOrderFulfilled(c *gin.Context) {
	h.SyncResult(c, h.service.MarkOrderFulfilled(c.Request.Context(), c.Param("id")))
}

// SyncStatusCatalog handles POST /sync/order-statuses
func (h *SyncHandler) SyncStatusCatalog(c *gin.Context) {
	if err := h.service.SyncStatusCatalog(c.Request.Context()); err != nil {
		h.HandleSyncError(c, err)
		return
	}
	h.Success(c, gin.H{"status": "synced"})
}

func (h *SyncHandler) importWith(
	run func(ctx context.Context) (*syncapp.ImportSummary, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := run(c.Request.Context())
		if err != nil {
			h.HandleSyncError(c, err)
			return
		}
		h.Success(c, dto.ImportSummaryResponse{
			Pages:     summary.Pages,
			Processed: summary.Processed,
			Failed:    summary.Failed,
		})
	}
}
