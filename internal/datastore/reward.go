package datastore

import (
	"context"
	"time"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableReward(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Reward)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Reward)(nil)).Index("index_rewards_user_claimed").IfNotExists().Column("user_id", "claimed").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateReward(ctx context.Context, db *bun.DB, reward *models.Reward) (*models.Reward, error) {
	_, err := db.NewInsert().Model(reward).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return reward, nil
}

func FindRewardByID(ctx context.Context, db *bun.DB, rewardID string) (*models.Reward, error) {
	var reward models.Reward
	err := db.NewSelect().Model(&reward).Where("id = ?", rewardID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

func ListUnclaimedRewards(ctx context.Context, db *bun.DB, userID string) ([]*models.Reward, error) {
	var rewards []*models.Reward
	err := db.NewSelect().Model(&rewards).
		Where("user_id = ?", userID).
		Where("claimed = FALSE").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rewards, nil
}

// ClaimReward flips the claimed flag once. A double claim loses the
// conditional update and reports false.
func ClaimReward(ctx context.Context, db *bun.DB, rewardID, userID string, now time.Time) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.Reward)(nil)).
		Set("claimed = TRUE").
		Set("claimed_at = ?", now).
		Where("id = ?", rewardID).
		Where("user_id = ?", userID).
		Where("claimed = FALSE").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
