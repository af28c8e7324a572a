package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	syncapp "github.com/erp/sallabridge/internal/application/sync"
	"github.com/erp/sallabridge/internal/domain/salla"
)

// Platform event names handled by the bridge.
const (
	EventProductUpdated  = "product.updated"
	EventCategoryCreated = "category.created"
	EventCategoryUpdated = "category.updated"
	EventOrderCreated    = "order.created"
)

// RegisterSyncHandlers binds the bridge's inbound sync flows to their
// platform events. Order ingestion is gated by configuration since stores
// piloting the bridge often pull orders in batches only.
func RegisterSyncHandlers(r *Registry, svc *syncapp.Service, inboundOrdersEnabled bool, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r.Register(EventProductUpdated, func(ctx context.Context, event *salla.WebhookEvent) error {
		var remote salla.RemoteProduct
		if err := json.Unmarshal(event.Data, &remote); err != nil {
			return fmt.Errorf("decoding product payload: %w", err)
		}
		return resultErr(svc.PullProduct(ctx, &remote))
	})

	categoryHandler := func(ctx context.Context, event *salla.WebhookEvent) error {
		var remote salla.RemoteCategory
		if err := json.Unmarshal(event.Data, &remote); err != nil {
			return fmt.Errorf("decoding category payload: %w", err)
		}
		return resultErr(svc.PullCategory(ctx, remote))
	}
	r.Register(EventCategoryCreated, categoryHandler)
	r.Register(EventCategoryUpdated, categoryHandler)

	if inboundOrdersEnabled {
		r.Register(EventOrderCreated, func(ctx context.Context, event *salla.WebhookEvent) error {
			var remote salla.RemoteOrder
			if err := json.Unmarshal(event.Data, &remote); err != nil {
				return fmt.Errorf("decoding order payload: %w", err)
			}
			return resultErr(svc.PullOrder(ctx, &remote))
		})
	} else {
		logger.Info("inbound order webhooks disabled")
	}
}

// resultErr surfaces an error outcome so the gateway records it. Skips are
// not failures.
func resultErr(result salla.SyncResult) error {
	if result.Outcome == salla.OutcomeError {
		return errors.New(result.Message)
	}
	return nil
}
