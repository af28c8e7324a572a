package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncapp "github.com/erp/sallabridge/internal/application/sync"
	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/interfaces/http/dto"
)

type fakeSyncService struct {
	pushedProducts   []string
	pushedCategories []string
	fulfilledOrders  []string
	result           salla.SyncResult
	status           salla.FieldSyncStatus
	statusErr        error
	catalogErr       error
	linked           int
	linkErr          error
}

func (f *fakeSyncService) PushProduct(_ context.Context, code string) salla.SyncResult {
	f.pushedProducts = append(f.pushedProducts, code)
	return f.result
}

func (f *fakeSyncService) PushCategory(_ context.Context, key string) salla.SyncResult {
	f.pushedCategories = append(f.pushedCategories, key)
	return f.result
}

func (f *fakeSyncService) MarkOrderFulfilled(_ context.Context, orderID string) salla.SyncResult {
	f.fulfilledOrders = append(f.fulfilledOrders, orderID)
	return f.result
}

func (f *fakeSyncService) ProductStatus(context.Context, string) (salla.FieldSyncStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeSyncService) SyncStatusCatalog(context.Context) error { return f.catalogErr }

func (f *fakeSyncService) LinkExistingProducts(context.Context) (int, error) {
	return f.linked, f.linkErr
}

type fakeBulkImporter struct {
	summary *syncapp.ImportSummary
	err     error
	calls   []string
}

func (f *fakeBulkImporter) run(name string) (*syncapp.ImportSummary, error) {
	f.calls = append(f.calls, name)
	return f.summary, f.err
}

func (f *fakeBulkImporter) ImportProducts(context.Context) (*syncapp.ImportSummary, error) {
	return f.run("products")
}

func (f *fakeBulkImporter) ImportCategories(context.Context) (*syncapp.ImportSummary, error) {
	return f.run("categories")
}

func (f *fakeBulkImporter) ImportCustomers(context.Context) (*syncapp.ImportSummary, error) {
	return f.run("customers")
}

func (f *fakeBulkImporter) ImportOrders(context.Context) (*syncapp.ImportSummary, error) {
	return f.run("orders")
}

func setupSyncRouter(service *fakeSyncService, importer *fakeBulkImporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewSyncHandler(service, importer).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestSyncHandler_PushProduct(t *testing.T) {
	t.Run("success maps to 200 with the remote id", func(t *testing.T) {
		service := &fakeSyncService{result: salla.Success("900")}
		engine := setupSyncRouter(service, &fakeBulkImporter{})

		rec, resp := doRequest(t, engine, http.MethodPost, "/api/v1/sync/products/ITEM-1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, []string{"ITEM-1"}, service.pushedProducts)

		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		assert.JSONEq(t, `{"outcome":"SUCCESS","remote_id":"900"}`, string(data))
	})

	t.Run("skip is still a 200", func(t *testing.T) {
		service := &fakeSyncService{result: salla.Skipped(salla.SkipInProgress)}
		engine := setupSyncRouter(service, &fakeBulkImporter{})

		rec, resp := doRequest(t, engine, http.MethodPost, "/api/v1/sync/products/ITEM-1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
	})

	t.Run("rate limit failure maps to 429", func(t *testing.T) {
		rateErr := &salla.RateLimitError{
			APIError:   salla.APIError{StatusCode: 429, Message: "too many requests"},
			RetryAfter: 30 * time.Second,
		}
		service := &fakeSyncService{result: salla.FailedWith(rateErr)}
		engine := setupSyncRouter(service, &fakeBulkImporter{})

		rec, resp := doRequest(t, engine, http.MethodPost, "/api/v1/sync/products/ITEM-1")

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)
	})

	t.Run("remote not found maps to 404", func(t *testing.T) {
		nfErr := &salla.NotFoundError{
			APIError: salla.APIError{StatusCode: 404, Message: "not found"},
			Resource: "product sku=ITEM-1",
		}
		service := &fakeSyncService{result: salla.FailedWith(nfErr)}
		engine := setupSyncRouter(service, &fakeBulkImporter{})

		rec, _ := doRequest(t, engine, http.MethodPost, "/api/v1/sync/products/ITEM-1")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("failure without a typed error is a 500", func(t *testing.T) {
		service := &fakeSyncService{result: salla.Failed("payload build failed")}
		engine := setupSyncRouter(service, &fakeBulkImporter{})

		rec, resp := doRequest(t, engine, http.MethodPost, "/api/v1/sync/products/ITEM-1")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "payload build failed", resp.Error.Message)
	})
}

func TestSyncHandler_ProductStatus(t *testing.T) {
	service := &fakeSyncService{status: salla.FieldSynced}
	engine := setupSyncRouter(service, &fakeBulkImporter{})

	rec, resp := doRequest(t, engine, http.MethodGet, "/api/v1/sync/products/ITEM-1/status")

	require.Equal(t, http.StatusOK, rec.Code)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"ITEM-1","status":"SYNCED"}`, string(data))
}

func TestSyncHandler_LinkProducts(t *testing.T) {
	service := &fakeSyncService{linked: 7}
	engine := setupSyncRouter(service, &fakeBulkImporter{})

	rec, resp := doRequest(t, engine, http.MethodPost, "/api/v1/sync/products/link")

	require.Equal(t, http.StatusOK, rec.Code)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"linked":7}`, string(data))
}

func TestSyncHandler_MarkOrderFulfilled(t *testing.T) {
	service := &fakeSyncService{result: salla.Success("1077")}
	engine := setupSyncRouter(service, &fakeBulkImporter{})

	rec, _ := doRequest(t, engine, http.MethodPost, "/api/v1/sync/orders/SO-1077/fulfilled")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"SO-1077"}, service.fulfilledOrders)
}

func TestSyncHandler_Import(t *testing.T) {
	t.Run("summary is returned per import kind", func(t *testing.T) {
		importer := &fakeBulkImporter{
			summary: &syncapp.ImportSummary{Pages: 3, Processed: 42, Failed: 1},
		}
		engine := setupSyncRouter(&fakeSyncService{}, importer)

		for _, kind := range []string{"products", "categories", "customers", "orders"} {
			rec, resp := doRequest(t, engine, http.MethodPost, "/api/v1/import/"+kind)

			require.Equal(t, http.StatusOK, rec.Code, kind)
			data, err := json.Marshal(resp.Data)
			require.NoError(t, err)
			assert.JSONEq(t, `{"pages":3,"processed":42,"failed":1}`, string(data), kind)
		}
		assert.Equal(t, []string{"products", "categories", "customers", "orders"}, importer.calls)
	})

	t.Run("authentication failure maps to 401", func(t *testing.T) {
		importer := &fakeBulkImporter{
			err: &salla.AuthenticationError{APIError: salla.APIError{StatusCode: 401, Message: "token rejected"}},
		}
		engine := setupSyncRouter(&fakeSyncService{}, importer)

		rec, resp := doRequest(t, engine, http.MethodPost, "/api/v1/import/orders")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	})
}

func TestSyncHandler_SyncStatusCatalog(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		engine := setupSyncRouter(&fakeSyncService{}, &fakeBulkImporter{})

		rec, resp := doRequest(t, engine, http.MethodPost, "/api/v1/sync/order-statuses")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
	})

	t.Run("plain error is a 500", func(t *testing.T) {
		service := &fakeSyncService{catalogErr: errors.New("listing order statuses failed")}
		engine := setupSyncRouter(service, &fakeBulkImporter{})

		rec, _ := doRequest(t, engine, http.MethodPost, "/api/v1/sync/order-statuses")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
