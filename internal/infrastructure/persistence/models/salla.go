package models

import (
	"encoding/json"
	"time"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// RemoteCredentialModel is the persistence model for the OAuth token pair.
type RemoteCredentialModel struct {
	StoreID      string    `gorm:"type:varchar(64);primary_key"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text"`
	ExpiresAt    time.Time `gorm:"not null"`
	Scope        string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RemoteCredentialModel) TableName() string {
	return "salla_credentials"
}

// ToDomain converts the persistence model to a domain RemoteCredential.
func (m *RemoteCredentialModel) ToDomain() *salla.RemoteCredential {
	return &salla.RemoteCredential{
		StoreID:      m.StoreID,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		Scope:        m.Scope,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain RemoteCredential.
func (m *RemoteCredentialModel) FromDomain(c *salla.RemoteCredential) {
	m.StoreID = c.StoreID
	m.AccessToken = c.AccessToken
	m.RefreshToken = c.RefreshToken
	m.ExpiresAt = c.ExpiresAt
	m.Scope = c.Scope
}

// ExternalLinkModel is the persistence model for local-to-remote links.
type ExternalLinkModel struct {
	ID        uint             `gorm:"primary_key;auto_increment"`
	Kind      salla.EntityKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_link_local,priority:1;uniqueIndex:idx_link_remote,priority:1"`
	LocalKey  string           `gorm:"type:varchar(140);not null;uniqueIndex:idx_link_local,priority:2"`
	RemoteID  string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_link_remote,priority:2"`
	AdminURL  string           `gorm:"type:varchar(500)"`
	PublicURL string           `gorm:"type:varchar(500)"`
	CreatedAt time.Time        `gorm:"not null"`
	UpdatedAt time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExternalLinkModel) TableName() string {
	return "salla_external_links"
}

// ToDomain converts the persistence model to a domain ExternalLink.
func (m *ExternalLinkModel) ToDomain() *salla.ExternalLink {
	return &salla.ExternalLink{
		Kind:      m.Kind,
		LocalKey:  m.LocalKey,
		RemoteID:  m.RemoteID,
		AdminURL:  m.AdminURL,
		PublicURL: m.PublicURL,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain ExternalLink.
func (m *ExternalLinkModel) FromDomain(l *salla.ExternalLink) {
	m.Kind = l.Kind
	m.LocalKey = l.LocalKey
	m.RemoteID = l.RemoteID
	m.AdminURL = l.AdminURL
	m.PublicURL = l.PublicURL
}

// FieldSyncStateModel is the persistence model for per-field sync states.
type FieldSyncStateModel struct {
	ID        uint                  `gorm:"primary_key;auto_increment"`
	Kind      salla.EntityKind      `gorm:"type:varchar(20);not null;uniqueIndex:idx_field_state,priority:1"`
	LocalKey  string                `gorm:"type:varchar(140);not null;uniqueIndex:idx_field_state,priority:2"`
	Field     string                `gorm:"type:varchar(40);not null;uniqueIndex:idx_field_state,priority:3"`
	Status    salla.FieldSyncStatus `gorm:"type:varchar(20);not null;default:'NOT_SYNCED'"`
	Message   string                `gorm:"type:text"`
	UpdatedAt time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FieldSyncStateModel) TableName() string {
	return "salla_field_sync_states"
}

// ToDomain converts the persistence model to a domain FieldSyncState.
func (m *FieldSyncStateModel) ToDomain() *salla.FieldSyncState {
	return &salla.FieldSyncState{
		Kind:      m.Kind,
		LocalKey:  m.LocalKey,
		Field:     m.Field,
		Status:    m.Status,
		Message:   m.Message,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain FieldSyncState.
func (m *FieldSyncStateModel) FromDomain(s *salla.FieldSyncState) {
	m.Kind = s.Kind
	m.LocalKey = s.LocalKey
	m.Field = s.Field
	m.Status = s.Status
	m.Message = s.Message
}

// ImageManifestModel is the persistence model for product image manifests.
// Entries are stored as a JSON object mapping attachment ref to platform
// image id.
type ImageManifestModel struct {
	ProductCode string    `gorm:"type:varchar(140);primary_key"`
	EntriesJSON string    `gorm:"type:text;column:entries"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ImageManifestModel) TableName() string {
	return "salla_image_manifests"
}

// ToDomain converts the persistence model to a domain ImageManifest.
func (m *ImageManifestModel) ToDomain() *salla.ImageManifest {
	manifest := &salla.ImageManifest{
		ProductCode: m.ProductCode,
		Entries:     map[string]string{},
	}
	if m.EntriesJSON != "" {
		var entries map[string]string
		if err := json.Unmarshal([]byte(m.EntriesJSON), &entries); err == nil {
			manifest.Entries = entries
		}
	}
	return manifest
}

// FromDomain populates the persistence model from a domain ImageManifest.
func (m *ImageManifestModel) FromDomain(manifest *salla.ImageManifest) error {
	raw, err := json.Marshal(manifest.Entries)
	if err != nil {
		return err
	}
	m.ProductCode = manifest.ProductCode
	m.EntriesJSON = string(raw)
	return nil
}

// SyncOperationModel is the persistence model for the sync audit log.
type SyncOperationModel struct {
	ID        string              `gorm:"type:varchar(36);primary_key"`
	Kind      salla.EntityKind    `gorm:"type:varchar(20);not null;index:idx_sync_op_kind"`
	Direction salla.SyncDirection `gorm:"type:varchar(10);not null"`
	LocalKey  string              `gorm:"type:varchar(140)"`
	RemoteID  string              `gorm:"type:varchar(100)"`
	Outcome   salla.SyncOutcome   `gorm:"type:varchar(10);not null"`
	Message   string              `gorm:"type:text"`
	CreatedAt time.Time           `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SyncOperationModel) TableName() string {
	return "salla_sync_operations"
}

// ToDomain converts the persistence model to a domain SyncOperation.
func (m *SyncOperationModel) ToDomain() *salla.SyncOperation {
	return &salla.SyncOperation{
		ID:        m.ID,
		Kind:      m.Kind,
		Direction: m.Direction,
		LocalKey:  m.LocalKey,
		RemoteID:  m.RemoteID,
		Outcome:   m.Outcome,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain SyncOperation.
func (m *SyncOperationModel) FromDomain(op *salla.SyncOperation) {
	m.ID = op.ID
	m.Kind = op.Kind
	m.Direction = op.Direction
	m.LocalKey = op.LocalKey
	m.RemoteID = op.RemoteID
	m.Outcome = op.Outcome
	m.Message = op.Message
	m.CreatedAt = op.CreatedAt
}

// OrderStatusModel is the persistence model for the pulled status catalog.
type OrderStatusModel struct {
	RemoteID  string    `gorm:"type:varchar(100);primary_key"`
	Name      string    `gorm:"type:varchar(140);not null"`
	Slug      string    `gorm:"type:varchar(140);index:idx_order_status_slug"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderStatusModel) TableName() string {
	return "salla_order_statuses"
}

// ToDomain converts the persistence model to a domain OrderStatus.
func (m *OrderStatusModel) ToDomain() *salla.OrderStatus {
	return &salla.OrderStatus{RemoteID: m.RemoteID, Name: m.Name, Slug: m.Slug}
}

// FromDomain populates the persistence model from a domain OrderStatus.
func (m *OrderStatusModel) FromDomain(s *salla.OrderStatus) {
	m.RemoteID = s.RemoteID
	m.Name = s.Name
	m.Slug = s.Slug
}

// WebhookDeliveryModel is the persistence model for received notifications.
type WebhookDeliveryModel struct {
	ID         string    `gorm:"type:varchar(36);primary_key"`
	Event      string    `gorm:"type:varchar(100);not null;index"`
	Handled    bool      `gorm:"not null"`
	Error      string    `gorm:"type:text"`
	ReceivedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WebhookDeliveryModel) TableName() string {
	return "salla_webhook_deliveries"
}

// ToDomain converts the persistence model to a domain WebhookDelivery.
func (m *WebhookDeliveryModel) ToDomain() *salla.WebhookDelivery {
	return &salla.WebhookDelivery{
		ID:         m.ID,
		Event:      m.Event,
		Handled:    m.Handled,
		Error:      m.Error,
		ReceivedAt: m.ReceivedAt,
	}
}

// FromDomain populates the persistence model from a domain WebhookDelivery.
func (m *WebhookDeliveryModel) FromDomain(d *salla.WebhookDelivery) {
	m.ID = d.ID
	m.Event = d.Event
	m.Handled = d.Handled
	m.Error = d.Error
	m.ReceivedAt = d.ReceivedAt
}
