package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// stateTTL bounds how long an authorization round-trip may take.
const stateTTL = 10 * time.Minute

// OAuthExchanger is the token-manager surface the OAuth endpoints use.
type OAuthExchanger interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*salla.RemoteCredential, error)
}

// OAuthHandler drives the merchant authorization round-trip: start redirects
// to the platform's consent page with a one-time state, the callback checks
// the state and exchanges the code for credentials.
type OAuthHandler struct {
	BaseHandler
	tokens OAuthExchanger

	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(tokens OAuthExchanger) *OAuthHandler {
	return &OAuthHandler{
		tokens: tokens,
		states: make(map[string]time.Time),
		now:    time.Now,
	}
}

// RegisterRoutes registers OAuth routes
func (h *OAuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	oauth := rg.Group("/salla/oauth")
	{
		oauth.GET("/start", h.Start)
		oauth.GET("/callback", h.Callback)
	}
}

// Start handles GET /salla/oauth/start
func (h *OAuthHandler) Start(c *gin.Context) {
	state, err := newState()
	if err != nil {
		h.InternalError(c, "failed to generate authorization state")
		return
	}

	h.mu.Lock()
	h.states[state] = h.now().Add(stateTTL)
	h.mu.Unlock()

	c.Redirect(http.StatusFound, h.tokens.AuthorizationURL(state))
}

// Callback handles GET /salla/oauth/callback
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.BadRequest(c, "authorization code is required")
		return
	}
	if !h.consumeState(c.Query("state")) {
		h.Unauthorized(c, "unknown or expired authorization state")
		return
	}

	cred, err := h.tokens.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.HandleSyncError(c, err)
		return
	}

	h.Success(c, gin.H{
		"status":     "authorized",
		"expires_at": cred.ExpiresAt,
	})
}

// consumeState checks and invalidates a state token. Expired entries are
// swept on every call, the map stays tiny.
func (h *OAuthHandler) consumeState(state string) bool {
	if state == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for s, deadline := range h.states {
		if deadline.Before(now) {
			delete(h.states, s)
		}
	}

	if _, ok := h.states[state]; !ok {
		return false
	}
	delete(h.states, state)
	return true
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
