package services

import (
	"context"
	"time"

	"corepulse/internal/datastore"
	"corepulse/internal/models"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ChainStorePostgres struct {
	db *bun.DB
}

func NewChainStorePostgres(container *do.Injector) (ChainStore, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	return &ChainStorePostgres{db}, nil
}

func (store *ChainStorePostgres) Insert(ctx context.Context, tx *models.ChainTransaction) error {
	_, err := datastore.CreateChainTransaction(ctx, store.db, tx)
	return err
}

func (store *ChainStorePostgres) UpdateStatus(ctx context.Context, hash string, status models.TxStatus, confirmedAt *time.Time) error {
	return datastore.UpdateChainTransactionStatus(ctx, store.db, hash, status, confirmedAt)
}

func (store *ChainStorePostgres) Find(ctx context.Context, hash string) (*models.ChainTransaction, error) {
	return datastore.FindChainTransaction(ctx, store.db, hash)
}
