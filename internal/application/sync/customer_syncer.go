package sync

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// Customer detail fields fillable from order option answers.
const (
	optionFieldCompanyName        = "company_name"
	optionFieldTaxID              = "tax_id"
	optionFieldCommercialRegister = "commercial_register"
)

// CustomerSyncer ingests platform buyers. A pulled customer is matched by
// external link first, then by mobile number; only when both miss is a local
// record created.
type CustomerSyncer struct {
	customers salla.CustomerRepository
	links     salla.LinkRepository
	ops       salla.SyncOperationRepository
	// optionLabels maps checkout question labels, in the buyer's own
	// wording, to customer detail fields. Matching is exact.
	optionLabels map[string]string
	logger       *zap.Logger
	now          func() time.Time
}

// NewCustomerSyncer creates a new CustomerSyncer
func NewCustomerSyncer(
	customers salla.CustomerRepository,
	links salla.LinkRepository,
	ops salla.SyncOperationRepository,
	optionLabels map[string]string,
	logger *zap.Logger,
) *CustomerSyncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerSyncer{
		customers:    customers,
		links:        links,
		ops:          ops,
		optionLabels: optionLabels,
		logger:       logger,
		now:          time.Now,
	}
}

// Kind returns the entity kind this syncer handles
func (s *CustomerSyncer) Kind() salla.EntityKind {
	return salla.KindCustomer
}

// ShouldSync always reports true; customers carry no per-entity opt-out.
func (s *CustomerSyncer) ShouldSync(ctx context.Context, id string) (bool, error) {
	return true, nil
}

// Push is not supported; the customer flow is pull-only.
func (s *CustomerSyncer) Push(ctx context.Context, id string) salla.SyncResult {
	return salla.Skipped("customers sync inbound only")
}

// Pull ingests one remote customer and returns the local customer id it
// resolved or created.
func (s *CustomerSyncer) Pull(ctx context.Context, remote *salla.RemoteCustomer) (string, salla.SyncResult) {
	remoteID := strconv.FormatInt(remote.ID, 10)

	c, err := s.resolve(ctx, remote, remoteID)
	if err != nil {
		return "", s.record(ctx, "", remoteID, salla.FailedWith(err))
	}

	c.FirstName = remote.FirstName
	c.LastName = remote.LastName
	c.Email = remote.Email
	c.City = remote.City
	c.Country = remote.Country

	if err := s.customers.Save(ctx, c); err != nil {
		return "", s.record(ctx, c.ID, remoteID, salla.FailedWith(err))
	}
	if err := s.links.Save(ctx, &salla.ExternalLink{
		Kind:      salla.KindCustomer,
		LocalKey:  c.ID,
		RemoteID:  remoteID,
		CreatedAt: s.now(),
	}); err != nil {
		return "", s.record(ctx, c.ID, remoteID, salla.FailedWith(err))
	}

	return c.ID, s.record(ctx, c.ID, remoteID, salla.Success(remoteID))
}

// ApplyOrderOptions copies checkout answers whose label is configured into
// the customer's detail fields and persists the change. Unrecognized labels
// are ignored.
func (s *CustomerSyncer) ApplyOrderOptions(ctx context.Context, customerID string, options []salla.RemoteOrderOption) error {
	if len(options) == 0 || len(s.optionLabels) == 0 {
		return nil
	}

	c, err := s.customers.ByID(ctx, customerID)
	if err != nil {
		return err
	}

	changed := false
	for _, opt := range options {
		field, ok := s.optionLabels[opt.Name]
		if !ok || opt.Value == "" {
			continue
		}
		switch field {
		case optionFieldCompanyName:
			c.CompanyName = opt.Value
		case optionFieldTaxID:
			c.TaxID = opt.Value
		case optionFieldCommercialRegister:
			c.CommercialRegister = opt.Value
		default:
			s.logger.Warn("option label maps to unknown customer field",
				zap.String("label", opt.Name), zap.String("field", field))
			continue
		}
		changed = true
	}

	if !changed {
		return nil
	}
	return s.customers.Save(ctx, c)
}

// resolve finds the local customer for a remote record: by link, then by
// mobile, falling back to a fresh record.
func (s *CustomerSyncer) resolve(ctx context.Context, remote *salla.RemoteCustomer, remoteID string) (*salla.Customer, error) {
	link, err := s.links.ByRemote(ctx, salla.KindCustomer, remoteID)
	if err == nil {
		return s.customers.ByID(ctx, link.LocalKey)
	}
	if !errors.Is(err, salla.ErrLinkNotFound) {
		return nil, err
	}

	mobile := fullMobile(remote)
	if mobile != "" {
		c, err := s.customers.ByMobile(ctx, mobile)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}

	return &salla.Customer{
		ID:     uuid.NewString(),
		Mobile: mobile,
	}, nil
}

func (s *CustomerSyncer) record(ctx context.Context, id, remoteID string, result salla.SyncResult) salla.SyncResult {
	op := &salla.SyncOperation{
		Kind:      salla.KindCustomer,
		Direction: salla.DirectionPull,
		LocalKey:  id,
		RemoteID:  remoteID,
		Outcome:   result.Outcome,
		Message:   result.Reason + result.Message,
		CreatedAt: s.now(),
	}
	if err := s.ops.Record(ctx, op); err != nil {
		s.logger.Warn("failed to record sync operation",
			zap.String("customer", id), zap.Error(err))
	}
	return result
}

func fullMobile(remote *salla.RemoteCustomer) string {
	if remote.Mobile == "" {
		return ""
	}
	return remote.MobileCode + remote.Mobile
}

// Ensure CustomerSyncer implements EntitySyncManager
var _ salla.EntitySyncManager = (*CustomerSyncer)(nil)
