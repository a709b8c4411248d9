package datastore

import (
	"context"
	"time"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableWeeklyChallenge(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.WeeklyChallenge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.UserWeeklyChallenge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserWeeklyChallenge)(nil)).Index("index_user_weekly_challenges_user_challenge").IfNotExists().Unique().Column("user_id", "challenge_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateWeeklyChallenge(ctx context.Context, db *bun.DB, challenge *models.WeeklyChallenge) (*models.WeeklyChallenge, error) {
	_, err := db.NewInsert().Model(challenge).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return challenge, nil
}

func ListActiveChallenges(ctx context.Context, db *bun.DB, now time.Time) ([]*models.WeeklyChallenge, error) {
	var challenges []*models.WeeklyChallenge
	err := db.NewSelect().Model(&challenges).
		Where("start_date <= ?", now).
		Where("end_date > ?", now).
		Order("start_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

func ListUserChallenges(ctx context.Context, db *bun.DB, userID string, challengeIDs []string) ([]*models.UserWeeklyChallenge, error) {
	var progress []*models.UserWeeklyChallenge
	if len(challengeIDs) == 0 {
		return progress, nil
	}
	err := db.NewSelect().Model(&progress).
		Where("user_id = ?", userID).
		Where("challenge_id IN (?)", bun.In(challengeIDs)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// AddChallengeProgress increments in place, seeding the row on first
// progress. Completion is stamped separately so completed_at is written
// exactly once.
func AddChallengeProgress(ctx context.Context, db *bun.DB, row *models.UserWeeklyChallenge, delta int) error {
	row.Progress = delta
	_, err := db.NewInsert().Model(row).
		On("CONFLICT (user_id, challenge_id) DO UPDATE").
		Set("progress = user_weekly_challenge.progress + EXCLUDED.progress").
		Exec(ctx)
	return err
}

func CompleteChallenge(ctx context.Context, db *bun.DB, userID, challengeID string, now time.Time) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.UserWeeklyChallenge)(nil)).
		Set("completed = TRUE").
		Set("completed_at = ?", now).
		Where("user_id = ?", userID).
		Where("challenge_id = ?", challengeID).
		Where("completed = FALSE").
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
