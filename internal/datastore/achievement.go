package datastore

import (
	"context"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableAchievement(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Achievement)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.UserAchievement)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserAchievement)(nil)).Index("index_user_achievements_user_achievement").IfNotExists().Unique().Column("user_id", "achievement_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func ListAchievements(ctx context.Context, db *bun.DB) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	err := db.NewSelect().Model(&achievements).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return achievements, nil
}

func ListUserAchievements(ctx context.Context, db *bun.DB, userID string) ([]*models.UserAchievement, error) {
	var unlocked []*models.UserAchievement
	err := db.NewSelect().Model(&unlocked).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return unlocked, nil
}

// UnlockAchievement is idempotent; re-running a trigger changes nothing.
func UnlockAchievement(ctx context.Context, db *bun.DB, unlock *models.UserAchievement) (bool, error) {
	res, err := db.NewInsert().Model(unlock).
		On("CONFLICT (user_id, achievement_id) DO NOTHING").
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

func UpsertAchievement(ctx context.Context, db *bun.DB, achievement *models.Achievement) error {
	_, err := db.NewInsert().Model(achievement).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("image_url = EXCLUDED.image_url").
		Exec(ctx)
	return err
}
