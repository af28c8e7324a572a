package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/sallabridge/internal/domain/salla"
)

func newServiceFixture(t *testing.T) (*Service, *productSyncerFixture, *fakeLocker) {
	t.Helper()

	pf := newProductSyncerFixture(t)
	locker := newFakeLocker()
	tracker := NewStatusTracker(pf.states)
	svc := NewService(pf.syncer, nil, nil, nil, nil, tracker, locker, zap.NewNop())
	return svc, pf, locker
}

func TestService_PushProduct_HeldLockSkips(t *testing.T) {
	ctx := context.Background()
	svc, pf, locker := newServiceFixture(t)
	pf.addProduct("ITEM-1", salla.SyncFlags{Enabled: true, Name: true})

	held, err := locker.Acquire(ctx, salla.KindProduct, "ITEM-1")
	require.NoError(t, err)
	require.True(t, held)

	result := svc.PushProduct(ctx, "ITEM-1")
	assert.True(t, result.IsSkipped())
	assert.Equal(t, salla.SkipInProgress, result.Reason)
}

func TestService_PushProduct_ReleasesLock(t *testing.T) {
	ctx := context.Background()
	svc, pf, locker := newServiceFixture(t)
	pf.addProduct("ITEM-1", salla.SyncFlags{Enabled: true, Name: true})
	require.NoError(t, pf.links.Save(ctx, &salla.ExternalLink{
		Kind: salla.KindProduct, LocalKey: "ITEM-1", RemoteID: "900",
	}))
	pf.client.updateProduct = func(ctx context.Context, id int64, payload *salla.ProductPayload, locale string) (*salla.RemoteProduct, error) {
		return remoteProduct(id, "ITEM-1"), nil
	}

	result := svc.PushProduct(ctx, "ITEM-1")
	require.True(t, result.IsSuccess(), "push failed: %s", result.Message)
	assert.Empty(t, locker.held, "the lock is released after the push")

	// Lock isolation is per key; a second push succeeds.
	result = svc.PushProduct(ctx, "ITEM-1")
	assert.True(t, result.IsSuccess())
}

func TestService_PushProduct_ReleasesLockOnFailure(t *testing.T) {
	ctx := context.Background()
	svc, _, locker := newServiceFixture(t)

	result := svc.PushProduct(ctx, "MISSING")
	assert.Equal(t, salla.OutcomeError, result.Outcome)
	assert.Empty(t, locker.held)
}

func TestService_PullProduct_LockedBySKU(t *testing.T) {
	ctx := context.Background()
	svc, _, locker := newServiceFixture(t)

	held, err := locker.Acquire(ctx, salla.KindProduct, "ITEM-9")
	require.NoError(t, err)
	require.True(t, held)

	result := svc.PullProduct(ctx, remoteProduct(900, "ITEM-9"))
	assert.True(t, result.IsSkipped(), "pull and push contend on the same key")
}

func TestService_ProductStatus(t *testing.T) {
	ctx := context.Background()
	svc, pf, _ := newServiceFixture(t)

	require.NoError(t, NewStatusTracker(pf.states).MarkSynced(
		ctx, salla.KindProduct, "ITEM-1", []string{salla.FieldName}))

	status, err := svc.ProductStatus(ctx, "ITEM-1")
	require.NoError(t, err)
	assert.Equal(t, salla.FieldSynced, status)
}
