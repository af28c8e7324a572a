package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// Gateway verifies inbound notification signatures and dispatches verified
// events to registered handlers. Verification fails closed: no configured
// secret means every delivery is rejected. Past verification everything is
// acknowledged; an unregistered event or a failing handler is logged and
// recorded but never bounced back to the platform, which would only make it
// retry.
type Gateway struct {
	secret     []byte
	registry   *Registry
	deliveries salla.WebhookDeliveryRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewGateway creates a new Gateway
func NewGateway(
	secret string,
	registry *Registry,
	deliveries salla.WebhookDeliveryRepository,
	logger *zap.Logger,
) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		secret:     []byte(secret),
		registry:   registry,
		deliveries: deliveries,
		logger:     logger,
		now:        time.Now,
	}
}

// Verify checks the hex HMAC-SHA256 signature over the raw body using a
// constant-time comparison.
func (g *Gateway) Verify(body []byte, signature string) error {
	if len(g.secret) == 0 {
		return salla.ErrWebhookNoSecret
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return salla.ErrWebhookBadSignature
	}
	return nil
}

// Dispatch verifies the delivery and hands the decoded event to its
// handler. The returned event is non-nil whenever verification and decoding
// succeeded, regardless of handler outcome.
func (g *Gateway) Dispatch(ctx context.Context, body []byte, signature string) (*salla.WebhookEvent, error) {
	if err := g.Verify(body, signature); err != nil {
		return nil, err
	}

	var event salla.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}

	delivery := &salla.WebhookDelivery{
		ID:         uuid.NewString(),
		Event:      event.Event,
		ReceivedAt: g.now(),
	}

	handler, ok := g.registry.Handler(event.Event)
	if !ok {
		g.logger.Info("no handler registered for webhook event",
			zap.String("event", event.Event),
			zap.Int64("merchant", event.Merchant),
		)
		g.recordDelivery(ctx, delivery)
		return &event, nil
	}

	delivery.Handled = true
	if err := handler(ctx, &event); err != nil {
		delivery.Error = err.Error()
		g.logger.Error("webhook handler failed",
			zap.String("event", event.Event),
			zap.Int64("merchant", event.Merchant),
			zap.Error(err),
		)
	}
	g.recordDelivery(ctx, delivery)
	return &event, nil
}

func (g *Gateway) recordDelivery(ctx context.Context, d *salla.WebhookDelivery) {
	if err := g.deliveries.Record(ctx, d); err != nil {
		g.logger.Warn("failed to record webhook delivery",
			zap.String("event", d.Event), zap.Error(err))
	}
}
