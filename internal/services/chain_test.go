package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"corepulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryChainStore struct {
	mu  sync.Mutex
	txs map[string]*models.ChainTransaction
}

func newMemoryChainStore() *memoryChainStore {
	return &memoryChainStore{txs: map[string]*models.ChainTransaction{}}
}

func (store *memoryChainStore) Insert(_ context.Context, tx *models.ChainTransaction) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	clone := *tx
	store.txs[tx.Hash] = &clone
	return nil
}

func (store *memoryChainStore) UpdateStatus(_ context.Context, hash string, status models.TxStatus, confirmedAt *time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	tx, ok := store.txs[hash]
	if !ok {
		return errors.New("not found")
	}
	tx.Status = status
	tx.ConfirmedAt = confirmedAt
	return nil
}

func (store *memoryChainStore) Find(_ context.Context, hash string) (*models.ChainTransaction, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	tx, ok := store.txs[hash]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *tx
	return &clone, nil
}

func TestNewTxHashFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^0x[0-9a-f]{64}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		hash := NewTxHash()
		assert.Regexp(t, pattern, hash)
		assert.False(t, seen[hash], "hashes must not repeat")
		seen[hash] = true
	}
}

func TestChainSubmitAndConfirm(t *testing.T) {
	store := newMemoryChainStore()
	service := &ServiceChain{store: store}

	ctx := context.Background()
	tx, err := service.Submit(ctx, "user-1", models.ActivityMintNFT, "activity-1")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, models.TxStatusPending, tx.Status)
	assert.Equal(t, models.TxKindMintNFT, tx.Kind)

	found, err := service.GetTransaction(ctx, tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusPending, found.Status)

	// confirmation is armed between 2s and 5s out
	require.Eventually(t, func() bool {
		found, err := service.GetTransaction(ctx, tx.Hash)
		return err == nil && found.Status == models.TxStatusConfirmed
	}, 7*time.Second, 100*time.Millisecond)

	found, err = service.GetTransaction(ctx, tx.Hash)
	require.NoError(t, err)
	require.NotNil(t, found.ConfirmedAt)
	assert.True(t, found.ConfirmedAt.After(found.SubmittedAt))
}

func TestFailStuckTransactions(t *testing.T) {
	store := newMemoryChainStore()
	service := &ServiceChain{store: store}

	ctx := context.Background()
	stuck := &models.ChainTransaction{
		Hash:        NewTxHash(),
		UserID:      "user-1",
		Kind:        models.TxKindClaimReward,
		Status:      models.TxStatusPending,
		SubmittedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Insert(ctx, stuck))

	require.NoError(t, service.FailStuckTransactions(ctx, []*models.ChainTransaction{stuck}))

	found, err := service.GetTransaction(ctx, stuck.Hash)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusFailed, found.Status)
	assert.Nil(t, found.ConfirmedAt)
}
