package datastore

import (
	"context"
	"time"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableChainTransaction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ChainTransaction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ChainTransaction)(nil)).Index("index_chain_transactions_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateChainTransaction(ctx context.Context, db *bun.DB, tx *models.ChainTransaction) (*models.ChainTransaction, error) {
	_, err := db.NewInsert().Model(tx).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return tx, nil
}

func FindChainTransaction(ctx context.Context, db *bun.DB, hash string) (*models.ChainTransaction, error) {
	var tx models.ChainTransaction
	err := db.NewSelect().Model(&tx).Where("hash = ?", hash).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func UpdateChainTransactionStatus(ctx context.Context, db *bun.DB, hash string, status models.TxStatus, confirmedAt *time.Time) error {
	_, err := db.NewUpdate().
		Model((*models.ChainTransaction)(nil)).
		Set("status = ?", status).
		Set("confirmed_at = ?", confirmedAt).
		Where("hash = ?", hash).
		Exec(ctx)
	return err
}

// ListStuckTransactions returns pendings older than the cutoff so a
// restart can re-arm or fail their confirmations.
func ListStuckTransactions(ctx context.Context, db *bun.DB, cutoff time.Time) ([]*models.ChainTransaction, error) {
	var txs []*models.ChainTransaction
	err := db.NewSelect().Model(&txs).
		Where("status = ?", models.TxStatusPending).
		Where("submitted_at < ?", cutoff).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
