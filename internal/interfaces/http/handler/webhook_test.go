package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/interfaces/http/dto"
)

type fakeDispatcher struct {
	gotBody      []byte
	gotSignature string
	event        *salla.WebhookEvent
	err          error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, body []byte, signature string) (*salla.WebhookEvent, error) {
	f.gotBody = body
	f.gotSignature = signature
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func newWebhookRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/salla", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func setupWebhookRouter(dispatcher *fakeDispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewWebhookHandler(dispatcher).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestWebhookHandler_Receive(t *testing.T) {
	t.Run("verified delivery is acknowledged", func(t *testing.T) {
		dispatcher := &fakeDispatcher{
			event: &salla.WebhookEvent{Event: "order.created", Merchant: 4000},
		}
		engine := setupWebhookRouter(dispatcher)

		req := newWebhookRequest(`{"event":"order.created"}`)
		req.Header.Set(SignatureHeader, "deadbeef")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []byte(`{"event":"order.created"}`), dispatcher.gotBody)
		assert.Equal(t, "deadbeef", dispatcher.gotSignature)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"received","event":"order.created"}`, string(data))
	})

	t.Run("bad signature is rejected with 401", func(t *testing.T) {
		dispatcher := &fakeDispatcher{err: salla.ErrWebhookBadSignature}
		engine := setupWebhookRouter(dispatcher)

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, newWebhookRequest(`{"event":"order.created"}`))

		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("missing secret fails closed with 401", func(t *testing.T) {
		dispatcher := &fakeDispatcher{err: salla.ErrWebhookNoSecret}
		engine := setupWebhookRouter(dispatcher)

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, newWebhookRequest(`{"event":"order.created"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed payload is a 400", func(t *testing.T) {
		dispatcher := &fakeDispatcher{err: errors.New("decoding webhook envelope: unexpected character")}
		engine := setupWebhookRouter(dispatcher)

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, newWebhookRequest(`not json`))

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})
}
