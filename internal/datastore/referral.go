package datastore

import (
	"context"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableReferral(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Referral)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Referral)(nil)).Index("index_referrals_referrer_id").IfNotExists().Column("referrer_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Referral)(nil)).Index("index_referrals_code").IfNotExists().Column("code").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateReferral(ctx context.Context, db *bun.DB, referral *models.Referral) (*models.Referral, error) {
	_, err := db.NewInsert().Model(referral).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return referral, nil
}

func FindReferralByReferee(ctx context.Context, db *bun.DB, refereeID string) (*models.Referral, error) {
	var referral models.Referral
	err := db.NewSelect().Model(&referral).Where("referee_id = ?", refereeID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func CountReferralsByReferrer(ctx context.Context, db *bun.DB, referrerID string) (int, error) {
	count, err := db.NewSelect().Model((*models.Referral)(nil)).Where("referrer_id = ?", referrerID).Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}
