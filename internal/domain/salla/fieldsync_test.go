package salla

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// FieldSyncStatus Tests
// ---------------------------------------------------------------------------

func TestFieldSyncStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   FieldSyncStatus
		expected bool
	}{
		{"NotSynced valid", FieldNotSynced, true},
		{"Pending valid", FieldPending, true},
		{"Synced valid", FieldSynced, true},
		{"Failed valid", FieldFailed, true},
		{"Invalid status", FieldSyncStatus("INVALID"), false},
		{"Empty status", FieldSyncStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsValid())
		})
	}
}

func TestTrackedFields_ExcludesSKU(t *testing.T) {
	for _, f := range TrackedFields() {
		assert.NotEqual(t, FieldSKU, f)
	}
}

// ---------------------------------------------------------------------------
// EntityStatus Tests
// ---------------------------------------------------------------------------

func TestEntityStatus(t *testing.T) {
	mk := func(statuses ...FieldSyncStatus) []*FieldSyncState {
		out := make([]*FieldSyncState, len(statuses))
		for i, s := range statuses {
			out[i] = &FieldSyncState{
				Kind:     KindProduct,
				LocalKey: "ITEM-001",
				Field:    TrackedFields()[i],
				Status:   s,
			}
		}
		return out
	}

	tests := []struct {
		name     string
		states   []*FieldSyncState
		expected FieldSyncStatus
	}{
		{"no states", nil, FieldNotSynced},
		{"all synced", mk(FieldSynced, FieldSynced, FieldSynced), FieldSynced},
		{"one pending", mk(FieldSynced, FieldPending, FieldSynced), FieldPending},
		{"one failed", mk(FieldSynced, FieldFailed, FieldSynced), FieldFailed},
		{"pending wins over failed", mk(FieldPending, FieldFailed), FieldPending},
		{"failed once nothing pending", mk(FieldSynced, FieldFailed, FieldNotSynced), FieldFailed},
		{"mix of synced and not synced", mk(FieldSynced, FieldNotSynced), FieldNotSynced},
		{"all not synced", mk(FieldNotSynced, FieldNotSynced), FieldNotSynced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EntityStatus(tt.states))
		})
	}
}

// ---------------------------------------------------------------------------
// SyncFlags Tests
// ---------------------------------------------------------------------------

func TestSyncFlags_EnabledFields(t *testing.T) {
	flags := SyncFlags{Enabled: true, Name: true, Price: true, Stock: true}

	assert.Equal(t, []string{FieldName, FieldPrice, FieldStock}, flags.EnabledFields())
}

func TestSyncFlags_FieldEnabled_UnknownField(t *testing.T) {
	flags := SyncFlags{Enabled: true, Name: true}

	assert.False(t, flags.FieldEnabled("nonexistent"))
	assert.False(t, flags.FieldEnabled(FieldSKU))
}
