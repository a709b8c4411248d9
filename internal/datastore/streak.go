package datastore

import (
	"context"
	"time"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableStreak(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Streak)(nil)).IfNotExists().Exec(ctx)
	return err
}

func FindStreakByUser(ctx context.Context, db *bun.DB, userID string) (*models.Streak, error) {
	var streak models.Streak
	err := db.NewSelect().Model(&streak).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

func UpsertStreak(ctx context.Context, db *bun.DB, streak *models.Streak, now time.Time) error {
	streak.UpdatedAt = now
	_, err := db.NewInsert().Model(streak).
		On("CONFLICT (user_id) DO UPDATE").
		Set("current_streak_days = EXCLUDED.current_streak_days").
		Set("best_streak_days = EXCLUDED.best_streak_days").
		Set("last_check_in = EXCLUDED.last_check_in").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
