package services

import (
	"context"

	"corepulse/internal/datastore"
	"corepulse/internal/models"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// AchievementStore records unlocks. Unlock reports false on a replay of
// an already-held achievement; the Postgres-backed implementation leans
// on the (user_id, achievement_id) conflict rule and tests use an
// in-memory one.
type AchievementStore interface {
	Unlock(ctx context.Context, unlock *models.UserAchievement) (bool, error)
}

type AchievementStorePostgres struct {
	db *bun.DB
}

func NewAchievementStorePostgres(container *do.Injector) (AchievementStore, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	return &AchievementStorePostgres{db}, nil
}

func (store *AchievementStorePostgres) Unlock(ctx context.Context, unlock *models.UserAchievement) (bool, error) {
	return datastore.UnlockAchievement(ctx, store.db, unlock)
}
