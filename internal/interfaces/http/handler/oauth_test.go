package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/interfaces/http/dto"
)

type fakeExchanger struct {
	gotCode string
	cred    *salla.RemoteCredential
	err     error
}

func (f *fakeExchanger) AuthorizationURL(state string) string {
	return "https://accounts.salla.sa/oauth2/auth?state=" + state
}

func (f *fakeExchanger) ExchangeCode(_ context.Context, code string) (*salla.RemoteCredential, error) {
	f.gotCode = code
	if f.err != nil {
		return nil, f.err
	}
	return f.cred, nil
}

func setupOAuth(exchanger *fakeExchanger) (*gin.Engine, *OAuthHandler) {
	gin.SetMode(gin.TestMode)
	handler := NewOAuthHandler(exchanger)
	engine := gin.New()
	handler.RegisterRoutes(engine.Group("/api/v1"))
	return engine, handler
}

// startAuthorization performs the start request and returns the state the
// handler embedded in the redirect.
func startAuthorization(t *testing.T, engine *gin.Engine) string {
	t.Helper()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/salla/oauth/start", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestOAuthHandler_Flow(t *testing.T) {
	t.Run("callback with the issued state exchanges the code", func(t *testing.T) {
		expires := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
		exchanger := &fakeExchanger{
			cred: &salla.RemoteCredential{StoreID: "4000", AccessToken: "tok", ExpiresAt: expires},
		}
		engine, _ := setupOAuth(exchanger)

		state := startAuthorization(t, engine)

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/api/v1/salla/oauth/callback?code=abc123&state="+state, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc123", exchanger.gotCode)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("state is single use", func(t *testing.T) {
		exchanger := &fakeExchanger{cred: &salla.RemoteCredential{StoreID: "4000"}}
		engine, _ := setupOAuth(exchanger)

		state := startAuthorization(t, engine)
		target := "/api/v1/salla/oauth/callback?code=abc123&state=" + state

		first := httptest.NewRecorder()
		engine.ServeHTTP(first, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		engine.ServeHTTP(second, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, second.Code)
	})

	t.Run("unknown state is rejected", func(t *testing.T) {
		engine, _ := setupOAuth(&fakeExchanger{})

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/api/v1/salla/oauth/callback?code=abc123&state=forged", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired state is rejected", func(t *testing.T) {
		exchanger := &fakeExchanger{cred: &salla.RemoteCredential{StoreID: "4000"}}
		engine, h := setupOAuth(exchanger)

		state := startAuthorization(t, engine)
		h.now = func() time.Time { return time.Now().Add(stateTTL + time.Minute) }

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/api/v1/salla/oauth/callback?code=abc123&state="+state, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing code is a 400", func(t *testing.T) {
		engine, _ := setupOAuth(&fakeExchanger{})

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/api/v1/salla/oauth/callback?state=whatever", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exchange failure surfaces the platform status", func(t *testing.T) {
		exchanger := &fakeExchanger{
			err: &salla.AuthenticationError{APIError: salla.APIError{StatusCode: 401, Message: "invalid code"}},
		}
		engine, _ := setupOAuth(exchanger)

		state := startAuthorization(t, engine)

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/api/v1/salla/oauth/callback?code=bad&state="+state, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
