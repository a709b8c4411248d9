package datastore

import (
	"context"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableActivity(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Activity)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Activity)(nil)).Index("index_user_activities_user_created").IfNotExists().Column("user_id", "created_at").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Activity)(nil)).Index("index_user_activities_activity").IfNotExists().Column("activity").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateActivity(ctx context.Context, db *bun.DB, activity *models.Activity) (*models.Activity, error) {
	_, err := db.NewInsert().Model(activity).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return activity, nil
}

func GetActivitiesByUser(ctx context.Context, db *bun.DB, userID string, limit, offset int) ([]*models.Activity, error) {
	var activities []*models.Activity
	err := db.NewSelect().Model(&activities).
		Where("user_id = ?", userID).
		Where("visible = TRUE").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return activities, nil
}


