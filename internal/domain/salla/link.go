package salla

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// EntityKind
// ---------------------------------------------------------------------------

// EntityKind names the class of record a link or sync operation refers to.
type EntityKind string

const (
	// KindProduct is a sellable item with SKU, price and stock.
	KindProduct EntityKind = "PRODUCT"
	// KindCategory is a node of the product category tree.
	KindCategory EntityKind = "CATEGORY"
	// KindCustomer is a buyer account.
	KindCustomer EntityKind = "CUSTOMER"
	// KindOrder is a placed sales order.
	KindOrder EntityKind = "ORDER"
	// KindOrderStatus is an entry of the platform's order status catalog.
	KindOrderStatus EntityKind = "ORDER_STATUS"
)

// IsValid returns true if the kind is one of the known entity kinds.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindProduct, KindCategory, KindCustomer, KindOrder, KindOrderStatus:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k EntityKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// ExternalLink
// ---------------------------------------------------------------------------

// ExternalLink records that a local record and a remote platform record are
// the same entity. At most one link exists per (kind, local key) and per
// (kind, remote id).
type ExternalLink struct {
	// Kind is the class of the linked record.
	Kind EntityKind
	// LocalKey is the local record's natural key: item code, category id,
	// customer id or order name.
	LocalKey string
	// RemoteID is the platform-assigned identifier, kept as a string since
	// the platform mixes numeric and opaque ids.
	RemoteID string
	// AdminURL is the platform dashboard page for the record, when known.
	AdminURL string
	// PublicURL is the storefront page for the record, when known.
	PublicURL string
	// CreatedAt is when the link was first established.
	CreatedAt time.Time
}

// Validate checks the link's required fields.
func (l *ExternalLink) Validate() error {
	if !l.Kind.IsValid() {
		return ErrLinkInvalidKind
	}
	if l.LocalKey == "" {
		return ErrLinkEmptyLocalKey
	}
	if l.RemoteID == "" {
		return ErrLinkEmptyRemoteID
	}
	return nil
}

// LinkRepository resolves and persists external links. Lookups return
// ErrLinkNotFound when no link exists.
type LinkRepository interface {
	ByLocal(ctx context.Context, kind EntityKind, localKey string) (*ExternalLink, error)
	ByRemote(ctx context.Context, kind EntityKind, remoteID string) (*ExternalLink, error)
	// Save upserts on (kind, local key).
	Save(ctx context.Context, link *ExternalLink) error
	Delete(ctx context.Context, kind EntityKind, localKey string) error
}
