package datastore

import (
	"context"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableDailyMiningLimit(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailyMiningLimit)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DailyMiningLimit)(nil)).Index("index_daily_limits_user_date").IfNotExists().Unique().Column("user_id", "date").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// GetOrCreateDailyLimit lazily seeds the row for the user's current day.
// The unique (user_id, date) index makes concurrent seeds collapse into
// one row.
func GetOrCreateDailyLimit(ctx context.Context, db *bun.DB, limit *models.DailyMiningLimit) (*models.DailyMiningLimit, error) {
	_, err := db.NewInsert().Model(limit).
		On("CONFLICT (user_id, date) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	var existing models.DailyMiningLimit
	err = db.NewSelect().Model(&existing).
		Where("user_id = ?", limit.UserID).
		Where("date = ?", limit.Date).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// AddMinutesMined charges settled minutes against the day in place.
func AddMinutesMined(ctx context.Context, db *bun.DB, userID, date string, minutes int, sessionID string) error {
	_, err := db.NewUpdate().
		Model((*models.DailyMiningLimit)(nil)).
		Set("minutes_mined = minutes_mined + ?", minutes).
		Set("last_mining_session_id = ?", sessionID).
		Where("user_id = ?", userID).
		Where("date = ?", date).
		Exec(ctx)
	return err
}
