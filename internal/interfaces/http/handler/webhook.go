package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/interfaces/http/dto"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Salla-Signature"

// WebhookDispatcher verifies and routes one notification delivery.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, body []byte, signature string) (*salla.WebhookEvent, error)
}

// WebhookHandler receives platform notifications. Verification failures are
// rejected; everything past verification is acknowledged with 200 so the
// platform does not retry deliveries the bridge has already recorded.
type WebhookHandler struct {
	BaseHandler
	gateway WebhookDispatcher
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(gateway WebhookDispatcher) *WebhookHandler {
	return &WebhookHandler{gateway: gateway}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/salla", h.Receive)
}

// Receive handles POST /webhooks/salla
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}

	event, err := h.gateway.Dispatch(c.Request.Context(), body, c.GetHeader(SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, salla.ErrWebhookNoSecret),
			errors.Is(err, salla.ErrWebhookBadSignature):
			h.Unauthorized(c, "webhook signature verification failed")
		default:
			h.BadRequest(c, "malformed webhook payload")
		}
		return
	}

	h.Success(c, dto.WebhookAckResponse{Status: "received", Event: event.Event})
}
