// Package salla contains the Salla synchronization bounded context.
// This context models the two-way sync between local business records and a
// connected Salla store.
//
// Key concepts:
//   - Client: Port interface for the platform's admin API, with a typed error taxonomy
//   - ExternalLink: Entity mapping a local record to its platform counterpart
//   - FieldSyncState: Per-field push lifecycle (not synced, pending, synced, failed)
//   - SyncResult: Outcome of one push or pull (success, skipped, error)
//   - ImageManifest: Upload ledger the image reconciliation diffs against
//   - CategoryNode: Category tree node under a nested-interval encoding
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package salla
