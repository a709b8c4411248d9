package datastore

import (
	"context"
	"time"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableEpoch(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Epoch)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.LeaderboardSnapshot)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LeaderboardSnapshot)(nil)).Index("index_leaderboards_epoch_rank").IfNotExists().Column("epoch", "rank").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateEpoch(ctx context.Context, db *bun.DB, epoch *models.Epoch) (*models.Epoch, error) {
	_, err := db.NewInsert().Model(epoch).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return epoch, nil
}

// FindFirstEpoch is the launch epoch, used for early-adopter checks.
func FindFirstEpoch(ctx context.Context, db *bun.DB) (*models.Epoch, error) {
	var epoch models.Epoch
	err := db.NewSelect().Model(&epoch).
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &epoch, nil
}

func FindActiveEpoch(ctx context.Context, db *bun.DB) (*models.Epoch, error) {
	var epoch models.Epoch
	err := db.NewSelect().Model(&epoch).
		Where("status = ?", models.EpochStatusActive).
		Order("id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &epoch, nil
}

func CompleteEpoch(ctx context.Context, db *bun.DB, epochID int) error {
	_, err := db.NewUpdate().
		Model((*models.Epoch)(nil)).
		Set("status = ?", models.EpochStatusCompleted).
		Where("id = ?", epochID).
		Exec(ctx)
	return err
}

func InsertLeaderboardSnapshots(ctx context.Context, db *bun.DB, snapshots []*models.LeaderboardSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&snapshots).Exec(ctx)
	return err
}

func ListLeaderboardSnapshots(ctx context.Context, db *bun.DB, epoch, limit int) ([]*models.LeaderboardSnapshot, error) {
	var snapshots []*models.LeaderboardSnapshot
	err := db.NewSelect().Model(&snapshots).
		Where("epoch = ?", epoch).
		Order("rank ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return snapshots, nil
}

// ListExpiredEpochs feeds the rollover job.
func ListExpiredEpochs(ctx context.Context, db *bun.DB, now time.Time) ([]*models.Epoch, error) {
	var epochs []*models.Epoch
	err := db.NewSelect().Model(&epochs).
		Where("status = ?", models.EpochStatusActive).
		Where("end_date <= ?", now).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return epochs, nil
}
