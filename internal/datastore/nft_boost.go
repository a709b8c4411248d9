package datastore

import (
	"context"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableNFTBoost(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.NFTBoost)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.NFTBoost)(nil)).Index("index_nft_boosts_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateNFTBoost(ctx context.Context, db *bun.DB, boost *models.NFTBoost) (*models.NFTBoost, error) {
	_, err := db.NewInsert().Model(boost).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return boost, nil
}

func ListNFTBoostsByUser(ctx context.Context, db *bun.DB, userID string) ([]*models.NFTBoost, error) {
	var boosts []*models.NFTBoost
	err := db.NewSelect().Model(&boosts).
		Where("user_id = ?", userID).
		Order("minted_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return boosts, nil
}

func SumBoostPercent(ctx context.Context, db *bun.DB, userID string) (float64, error) {
	var total float64
	err := db.NewSelect().Model((*models.NFTBoost)(nil)).
		ColumnExpr("COALESCE(SUM(boost_percent), 0)").
		Where("user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
