package datastore

import (
	"context"
	"time"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableMiningSession(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.MiningSession)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.MiningSession)(nil)).Index("index_mining_sessions_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.MiningSession)(nil)).Index("index_mining_sessions_start_time").IfNotExists().Column("start_time").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateMiningSession(ctx context.Context, db *bun.DB, session *models.MiningSession) (*models.MiningSession, error) {
	_, err := db.NewInsert().Model(session).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func FindMiningSessionByID(ctx context.Context, db *bun.DB, sessionID string) (*models.MiningSession, error) {
	var session models.MiningSession
	err := db.NewSelect().Model(&session).Where("id = ?", sessionID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindOpenMiningSession returns sql.ErrNoRows wrapped by bun when the
// user has nothing running.
func FindOpenMiningSession(ctx context.Context, db *bun.DB, userID string) (*models.MiningSession, error) {
	var session models.MiningSession
	err := db.NewSelect().Model(&session).
		Where("user_id = ?", userID).
		Where("end_time IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SettleMiningSession closes a session exactly once. The end_time guard
// makes a concurrent stop and reconcile race settle a single winner.
func SettleMiningSession(ctx context.Context, db *bun.DB, sessionID string, endTime time.Time, earned float64) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.MiningSession)(nil)).
		Set("end_time = ?", endTime).
		Set("earned_amount = ?", earned).
		Where("id = ?", sessionID).
		Where("end_time IS NULL").
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

func ListOpenSessionsOlderThan(ctx context.Context, db *bun.DB, cutoff time.Time) ([]*models.MiningSession, error) {
	var sessions []*models.MiningSession
	err := db.NewSelect().Model(&sessions).
		Where("end_time IS NULL").
		Where("start_time < ?", cutoff).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func ListSettledSessionsByUser(ctx context.Context, db *bun.DB, userID string, since time.Time) ([]*models.MiningSession, error) {
	var sessions []*models.MiningSession
	err := db.NewSelect().Model(&sessions).
		Where("user_id = ?", userID).
		Where("end_time IS NOT NULL").
		Where("start_time >= ?", since).
		Order("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func SumEarnedBetween(ctx context.Context, db *bun.DB, userID string, from, to time.Time) (float64, error) {
	var total float64
	err := db.NewSelect().Model((*models.MiningSession)(nil)).
		ColumnExpr("COALESCE(SUM(earned_amount), 0)").
		Where("user_id = ?", userID).
		Where("end_time IS NOT NULL").
		Where("start_time >= ?", from).
		Where("start_time < ?", to).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
