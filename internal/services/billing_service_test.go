package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBillingFixture() (BillingService, *fakeBillRepo, uuid.UUID) {
	repo := newFakeBillRepo()
	svc := NewBillingService(zap.NewNop(), nil, &fakeTxRunner{}, repo)
	return svc, repo, uuid.New()
}

func TestListBillsSeedsStarterSetOnce(t *testing.T) {
	svc, repo, userID := newBillingFixture()

	bills, err := svc.ListBills(context.Background(), "t1", userID)
	require.NoError(t, err)
	require.Len(t, bills, 5)
	for _, bill := range bills {
		assert.Equal(t, "pending", bill.Status)
		assert.True(t, bill.Amount.IsPositive())
	}

	// A second call must not seed again.
	bills, err = svc.ListBills(context.Background(), "t1", userID)
	require.NoError(t, err)
	assert.Len(t, bills, 5)

	count, err := repo.CountByUser(context.Background(), nil, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

// The advisory lock is what keeps two concurrent first reads from both
// counting zero rows and both inserting the starter set.
func TestListBillsLocksUserBeforeCounting(t *testing.T) {
	repo := newFakeBillRepo()
	tx := &recordingTx{}
	svc := NewBillingService(zap.NewNop(), nil, &fakeTxRunner{tx: tx}, repo)
	userID := uuid.New()

	_, err := svc.ListBills(context.Background(), "t1", userID)
	require.NoError(t, err)

	sqls := tx.executed()
	require.NotEmpty(t, sqls)
	assert.Contains(t, sqls[0], "pg_advisory_xact_lock")
}

func TestListBillsConcurrentCallsSeedOnce(t *testing.T) {
	svc, repo, userID := newBillingFixture()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ListBills(context.Background(), "t1", userID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := repo.CountByUser(context.Background(), nil, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestListBillsKeepsPaidStatus(t *testing.T) {
	svc, repo, userID := newBillingFixture()

	first, err := svc.ListBills(context.Background(), "t1", userID)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	billID, err := uuid.Parse(first[0].ID)
	require.NoError(t, err)
	require.NoError(t, repo.MarkPaid(context.Background(), nil, billID))

	bills, err := svc.ListBills(context.Background(), "t1", userID)
	require.NoError(t, err)

	var paid int
	for _, bill := range bills {
		if bill.Status == "paid" {
			paid++
		}
	}
	assert.Equal(t, 1, paid)
}
