package salla

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// FieldSyncStatus
// ---------------------------------------------------------------------------

// FieldSyncStatus is the lifecycle state of one syncable field of one entity.
type FieldSyncStatus string

const (
	// FieldNotSynced means the field has never been pushed.
	FieldNotSynced FieldSyncStatus = "NOT_SYNCED"
	// FieldPending means a push attempt is underway or queued.
	FieldPending FieldSyncStatus = "PENDING"
	// FieldSynced means the last push succeeded.
	FieldSynced FieldSyncStatus = "SYNCED"
	// FieldFailed means the last push failed; Message holds the reason.
	FieldFailed FieldSyncStatus = "FAILED"
)

// IsValid returns true if the status is a known field sync status.
func (s FieldSyncStatus) IsValid() bool {
	switch s {
	case FieldNotSynced, FieldPending, FieldSynced, FieldFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s FieldSyncStatus) String() string {
	return string(s)
}

// Syncable field names tracked per product. FieldSKU identifies the record on
// the platform and is written only on create, so it is excluded from the
// automatic pending/result sweep.
const (
	FieldSKU         = "sku"
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldWeight      = "weight"
	FieldCategories  = "categories"
	FieldImages      = "images"
	FieldStock       = "stock"
)

// TrackedFields lists every field that participates in the automatic sweep,
// in payload order.
func TrackedFields() []string {
	return []string{
		FieldName, FieldDescription, FieldPrice,
		FieldWeight, FieldCategories, FieldImages, FieldStock,
	}
}

// ---------------------------------------------------------------------------
// FieldSyncState
// ---------------------------------------------------------------------------

// FieldSyncState is one row of the per-field tracking table, keyed
// (kind, local key, field).
type FieldSyncState struct {
	Kind     EntityKind
	LocalKey string
	Field    string
	Status   FieldSyncStatus
	// Message carries the failure reason when Status is FieldFailed, empty
	// otherwise.
	Message string
	// UpdatedAt is the last transition time.
	UpdatedAt time.Time
}

// FieldStateRepository persists field sync states. SetMany replaces the
// status of each named field in one write so a crash never leaves a partially
// swept entity.
type FieldStateRepository interface {
	Get(ctx context.Context, kind EntityKind, localKey, field string) (*FieldSyncState, error)
	List(ctx context.Context, kind EntityKind, localKey string) ([]*FieldSyncState, error)
	SetMany(ctx context.Context, states []*FieldSyncState) error
}

// EntityStatus folds the field states of one entity into a single aggregate
// status: Synced if every tracked field is Synced, Pending while any is
// Pending, Failed when any is Failed and none are Pending, otherwise
// NotSynced. A Pending field means a sweep is still owed, so it wins over
// an earlier failure.
func EntityStatus(states []*FieldSyncState) FieldSyncStatus {
	if len(states) == 0 {
		return FieldNotSynced
	}
	var pending, failed bool
	synced := true
	for _, s := range states {
		switch s.Status {
		case FieldFailed:
			failed = true
			synced = false
		case FieldPending:
			pending = true
			synced = false
		case FieldNotSynced:
			synced = false
		}
	}
	switch {
	case pending:
		return FieldPending
	case failed:
		return FieldFailed
	case synced:
		return FieldSynced
	default:
		return FieldNotSynced
	}
}
