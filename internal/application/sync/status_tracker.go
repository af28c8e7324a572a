package sync

import (
	"context"
	"time"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// StatusTracker sweeps the per-field sync states around a push: every
// enabled field goes to Pending before the remote write and to Synced or
// Failed right after. Each sweep is one repository write so a crash never
// leaves an entity partially transitioned.
type StatusTracker struct {
	states salla.FieldStateRepository
	now    func() time.Time
}

// NewStatusTracker creates a new StatusTracker
func NewStatusTracker(states salla.FieldStateRepository) *StatusTracker {
	return &StatusTracker{
		states: states,
		now:    time.Now,
	}
}

// MarkPending sets the given fields to Pending, overwriting whatever state
// they were left in. Re-running a push after a crash therefore recovers.
func (t *StatusTracker) MarkPending(ctx context.Context, kind salla.EntityKind, localKey string, fields []string) error {
	return t.set(ctx, kind, localKey, fields, salla.FieldPending, "")
}

// MarkSynced sets the given fields to Synced.
func (t *StatusTracker) MarkSynced(ctx context.Context, kind salla.EntityKind, localKey string, fields []string) error {
	return t.set(ctx, kind, localKey, fields, salla.FieldSynced, "")
}

// MarkFailed sets the given fields to Failed with the failure message.
func (t *StatusTracker) MarkFailed(ctx context.Context, kind salla.EntityKind, localKey string, fields []string, message string) error {
	return t.set(ctx, kind, localKey, fields, salla.FieldFailed, message)
}

// MarkResult resolves the pending sweep from a push outcome.
func (t *StatusTracker) MarkResult(ctx context.Context, kind salla.EntityKind, localKey string, fields []string, pushErr error) error {
	if pushErr != nil {
		return t.MarkFailed(ctx, kind, localKey, fields, pushErr.Error())
	}
	return t.MarkSynced(ctx, kind, localKey, fields)
}

// Status folds the entity's field states into one aggregate status.
func (t *StatusTracker) Status(ctx context.Context, kind salla.EntityKind, localKey string) (salla.FieldSyncStatus, error) {
	states, err := t.states.List(ctx, kind, localKey)
	if err != nil {
		return "", err
	}
	return salla.EntityStatus(states), nil
}

func (t *StatusTracker) set(
	ctx context.Context,
	kind salla.EntityKind,
	localKey string,
	fields []string,
	status salla.FieldSyncStatus,
	message string,
) error {
	if len(fields) == 0 {
		return nil
	}

	now := t.now()
	states := make([]*salla.FieldSyncState, 0, len(fields))
	for _, field := range fields {
		states = append(states, &salla.FieldSyncState{
			Kind:      kind,
			LocalKey:  localKey,
			Field:     field,
			Status:    status,
			Message:   message,
			UpdatedAt: now,
		})
	}
	return t.states.SetMany(ctx, states)
}
