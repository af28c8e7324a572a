package salla

import (
	"context"
	"encoding/json"
	"time"
)

// ---------------------------------------------------------------------------
// Webhook events
// ---------------------------------------------------------------------------

// WebhookEvent is the decoded envelope of one platform notification.
type WebhookEvent struct {
	// Event is the dotted event name, e.g. "order.created".
	Event string `json:"event"`
	// Merchant is the numeric store id the event belongs to.
	Merchant int64 `json:"merchant"`
	// CreatedAt is the platform-side emission time.
	CreatedAt string `json:"created_at"`
	// Data is the event payload, decoded by the registered handler.
	Data json.RawMessage `json:"data"`
}

// WebhookHandler processes one verified event. A returned error is logged and
// recorded but never propagated to the platform.
type WebhookHandler func(ctx context.Context, event *WebhookEvent) error

// WebhookDelivery is one audit row per received notification.
type WebhookDelivery struct {
	ID    string
	Event string
	// Handled is false for events with no registered handler.
	Handled bool
	// Error holds the handler failure message, empty on success.
	Error      string
	ReceivedAt time.Time
}

// WebhookDeliveryRepository appends the delivery audit log.
type WebhookDeliveryRepository interface {
	Record(ctx context.Context, d *WebhookDelivery) error
}
