package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

func newCustomerSyncerFixture(t *testing.T) (*CustomerSyncer, *memCustomers, *memLinks) {
	t.Helper()

	customers := newMemCustomers()
	links := newMemLinks()
	labels := map[string]string{
		"اسم الشركة":    optionFieldCompanyName,
		"الرقم الضريبي": optionFieldTaxID,
		"السجل التجاري": optionFieldCommercialRegister,
	}
	s := NewCustomerSyncer(customers, links, &memOps{}, labels, zap.NewNop())
	return s, customers, links
}

func remoteCustomer(id int64) *salla.RemoteCustomer {
	return &salla.RemoteCustomer{
		ID:         id,
		FirstName:  "سارة",
		LastName:   "العتيبي",
		Mobile:     "501234567",
		MobileCode: "+966",
		Email:      "sara@example.com",
		City:       "الرياض",
		Country:    "السعودية",
	}
}

func TestCustomerSyncer_Pull_CreatesFresh(t *testing.T) {
	ctx := context.Background()
	s, customers, links := newCustomerSyncerFixture(t)

	id, result := s.Pull(ctx, remoteCustomer(500))
	require.True(t, result.IsSuccess(), "pull failed: %s", result.Message)
	require.NotEmpty(t, id)

	c, err := customers.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "سارة", c.FirstName)
	assert.Equal(t, "+966501234567", c.Mobile, "mobile is stored with its country code")

	link, err := links.ByRemote(ctx, salla.KindCustomer, "500")
	require.NoError(t, err)
	assert.Equal(t, id, link.LocalKey)
}

func TestCustomerSyncer_Pull_MatchesByLink(t *testing.T) {
	ctx := context.Background()
	s, customers, links := newCustomerSyncerFixture(t)

	require.NoError(t, customers.Save(ctx, &salla.Customer{ID: "CUST-1", Mobile: "+966501234567"}))
	require.NoError(t, links.Save(ctx, &salla.ExternalLink{
		Kind: salla.KindCustomer, LocalKey: "CUST-1", RemoteID: "500",
	}))

	id, result := s.Pull(ctx, remoteCustomer(500))
	require.True(t, result.IsSuccess(), "pull failed: %s", result.Message)
	assert.Equal(t, "CUST-1", id)
	assert.Len(t, customers.items, 1)

	c, err := customers.ByID(ctx, "CUST-1")
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", c.Email, "profile fields refresh on every pull")
}

func TestCustomerSyncer_Pull_MatchesByMobile(t *testing.T) {
	ctx := context.Background()
	s, customers, links := newCustomerSyncerFixture(t)

	require.NoError(t, customers.Save(ctx, &salla.Customer{ID: "CUST-7", Mobile: "+966501234567"}))

	id, result := s.Pull(ctx, remoteCustomer(500))
	require.True(t, result.IsSuccess(), "pull failed: %s", result.Message)
	assert.Equal(t, "CUST-7", id, "unlinked buyers match by mobile before a record is created")
	assert.Len(t, customers.items, 1)

	link, err := links.ByRemote(ctx, salla.KindCustomer, "500")
	require.NoError(t, err)
	assert.Equal(t, "CUST-7", link.LocalKey, "the mobile match becomes durable via the link")
}

func TestCustomerSyncer_ApplyOrderOptions(t *testing.T) {
	ctx := context.Background()
	s, customers, _ := newCustomerSyncerFixture(t)
	require.NoError(t, customers.Save(ctx, &salla.Customer{ID: "CUST-1"}))

	options := []salla.RemoteOrderOption{
		{Name: "اسم الشركة", Value: "شركة المثال"},
		{Name: "الرقم الضريبي", Value: "310000000000003"},
		{Name: "لون التغليف", Value: "أزرق"},
		{Name: "السجل التجاري", Value: ""},
	}
	require.NoError(t, s.ApplyOrderOptions(ctx, "CUST-1", options))

	c, err := customers.ByID(ctx, "CUST-1")
	require.NoError(t, err)
	assert.Equal(t, "شركة المثال", c.CompanyName)
	assert.Equal(t, "310000000000003", c.TaxID)
	assert.Empty(t, c.CommercialRegister, "empty answers never overwrite")
}

func TestCustomerSyncer_ApplyOrderOptions_NoMatch(t *testing.T) {
	ctx := context.Background()
	s, customers, _ := newCustomerSyncerFixture(t)
	require.NoError(t, customers.Save(ctx, &salla.Customer{ID: "CUST-1", CompanyName: "قائم"}))

	err := s.ApplyOrderOptions(ctx, "CUST-1", []salla.RemoteOrderOption{
		{Name: "لون التغليف", Value: "أزرق"},
	})
	require.NoError(t, err)

	c, err := customers.ByID(ctx, "CUST-1")
	require.NoError(t, err)
	assert.Equal(t, "قائم", c.CompanyName)
}

func TestCustomerSyncer_Push_IsInboundOnly(t *testing.T) {
	s, _, _ := newCustomerSyncerFixture(t)
	result := s.Push(context.Background(), "CUST-1")
	assert.True(t, result.IsSkipped())
}
