package salla

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// SyncOutcome / SyncResult
// ---------------------------------------------------------------------------

// SyncOutcome is the terminal state of one sync attempt.
type SyncOutcome string

const (
	// OutcomeSuccess means the entity was pushed or pulled and linked.
	OutcomeSuccess SyncOutcome = "SUCCESS"
	// OutcomeSkipped means the attempt was intentionally not performed.
	OutcomeSkipped SyncOutcome = "SKIPPED"
	// OutcomeError means the attempt ran and failed.
	OutcomeError SyncOutcome = "ERROR"
)

// IsValid returns true if the outcome is a known sync outcome.
func (o SyncOutcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeSkipped, OutcomeError:
		return true
	default:
		return false
	}
}

// String returns the string representation of the outcome.
func (o SyncOutcome) String() string {
	return string(o)
}

// SyncResult is the result of one push or pull of one entity. Exactly one of
// RemoteID, Reason or Message is meaningful, selected by Outcome.
type SyncResult struct {
	Outcome SyncOutcome
	// RemoteID is set on success: the platform id of the synced record.
	RemoteID string
	// Reason is set on skip: why the attempt was not performed.
	Reason string
	// Message is set on error: the failure description.
	Message string
	// Err is the underlying error when the attempt failed against the
	// platform, for callers that branch on the error type. Nil for
	// failures built from a bare message.
	Err error
}

// Success builds a successful result carrying the remote id.
func Success(remoteID string) SyncResult {
	return SyncResult{Outcome: OutcomeSuccess, RemoteID: remoteID}
}

// Skipped builds a skipped result carrying the reason.
func Skipped(reason string) SyncResult {
	return SyncResult{Outcome: OutcomeSkipped, Reason: reason}
}

// Failed builds an error result carrying the message.
func Failed(message string) SyncResult {
	return SyncResult{Outcome: OutcomeError, Message: message}
}

// FailedWith builds an error result from err, keeping it inspectable.
func FailedWith(err error) SyncResult {
	return SyncResult{Outcome: OutcomeError, Message: err.Error(), Err: err}
}

// IsSuccess reports whether the attempt succeeded.
func (r SyncResult) IsSuccess() bool { return r.Outcome == OutcomeSuccess }

// IsSkipped reports whether the attempt was skipped.
func (r SyncResult) IsSkipped() bool { return r.Outcome == OutcomeSkipped }

// SkipInProgress is the reason used when another worker already holds the
// entity's sync lock.
const SkipInProgress = "sync already in progress"

// ---------------------------------------------------------------------------
// SyncDirection / EntitySyncManager
// ---------------------------------------------------------------------------

// SyncDirection distinguishes push (local to platform) from pull.
type SyncDirection string

const (
	DirectionPush SyncDirection = "PUSH"
	DirectionPull SyncDirection = "PULL"
)

// String returns the string representation of the direction.
func (d SyncDirection) String() string {
	return string(d)
}

// EntitySyncManager is the per-kind sync port. Push sends the local record
// identified by localKey to the platform, creating or updating as needed.
// Pull ingests one remote record payload, already decoded by the caller.
// ShouldSync gates Push on entity-level flags.
type EntitySyncManager interface {
	Kind() EntityKind
	ShouldSync(ctx context.Context, localKey string) (bool, error)
	Push(ctx context.Context, localKey string) SyncResult
}

// ---------------------------------------------------------------------------
// SyncOperation log
// ---------------------------------------------------------------------------

// SyncOperation is one audit row recording the outcome of a push or pull.
type SyncOperation struct {
	ID        string
	Kind      EntityKind
	Direction SyncDirection
	LocalKey  string
	RemoteID  string
	Outcome   SyncOutcome
	// Message holds the skip reason or failure description.
	Message   string
	CreatedAt time.Time
}

// SyncOperationRepository appends and queries the audit log.
type SyncOperationRepository interface {
	Record(ctx context.Context, op *SyncOperation) error
	Recent(ctx context.Context, kind EntityKind, limit int) ([]*SyncOperation, error)
}
