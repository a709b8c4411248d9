package datastore

import (
	"context"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_users_wallet_address").IfNotExists().Column("wallet_address").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_users_total_mined").IfNotExists().Column("total_mined").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db *bun.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByWallet(ctx context.Context, db *bun.DB, walletAddress string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("wallet_address = ?", models.NormalizeWallet(walletAddress)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// AddMinedAmount credits a settled session in place so concurrent
// settlements never lose an update.
func AddMinedAmount(ctx context.Context, db *bun.DB, userID string, amount float64) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("total_mined = total_mined + ?", amount).
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

// SpendMinedAmount debits the balance only while it still covers the
// cost; the conditional is the guard, so concurrent spends cannot drive
// the balance negative.
func SpendMinedAmount(ctx context.Context, db *bun.DB, userID string, amount float64) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("total_mined = total_mined - ?", amount).
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Where("total_mined >= ?", amount).
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

// AddExperience increments experience in SQL, never read-modify-write,
// and returns the fresh row for the level walk.
func AddExperience(ctx context.Context, db *bun.DB, userID string, gained int64) (*models.User, error) {
	user := new(models.User)
	_, err := db.NewUpdate().Model(user).
		Set("experience = experience + ?", gained).
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SettleUserProgress lands the level walk derived from one experience
// reading; it is a no-op when a concurrent settlement got there first.
func SettleUserProgress(ctx context.Context, db *bun.DB, user *models.User, fromLevel int, fromExperience int64) (bool, error) {
	res, err := db.NewUpdate().Model(user).
		Set("experience = ?", user.Experience).
		Set("level = ?", user.Level).
		Set("next_level_exp = ?", user.NextLevelExp).
		Set("avatar_stage = ?", user.AvatarStage).
		Set("updated_at = current_timestamp").
		Where("id = ?", user.ID).
		Where("level = ?", fromLevel).
		Where("experience = ?", fromExperience).
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

func CountUsers(ctx context.Context, db *bun.DB) (int, error) {
	count, err := db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func GetUsersByLimit(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Order("joined_at ASC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func GetUsersByIDs(ctx context.Context, db *bun.DB, userIDs []string) ([]*models.User, error) {
	var users []*models.User
	if len(userIDs) == 0 {
		return users, nil
	}
	err := db.NewSelect().Model(&users).Where("id IN (?)", bun.In(userIDs)).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}
