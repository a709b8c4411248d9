package services

import (
	"context"
	"time"

	"corepulse/internal"
	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceAchievement struct {
	container          *do.Injector
	store              AchievementStore
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceReward *ServiceReward
}

func NewServiceAchievement(container *do.Injector) (*ServiceAchievement, error) {
	store, err := do.Invoke[AchievementStore](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAchievement{container, store, readonlyPostgresDB, cache, readonlyCache, serviceReward}, nil
}

// ListForUser merges the catalog with the user's unlocks.
func (service *ServiceAchievement) ListForUser(ctx context.Context, userID string) ([]*models.Achievement, error) {
	callback := func() ([]*models.Achievement, error) {
		achievements, err := datastore.ListAchievements(ctx, service.readonlyPostgresDB)
		if err != nil {
			return nil, err
		}

		unlocked, err := datastore.ListUserAchievements(ctx, service.readonlyPostgresDB, userID)
		if err != nil {
			return nil, err
		}

		unlockedAt := make(map[string]time.Time, len(unlocked))
		for _, ua := range unlocked {
			unlockedAt[ua.AchievementID] = ua.UnlockedAt
		}

		for _, achievement := range achievements {
			if at, ok := unlockedAt[achievement.ID]; ok {
				achievement.Unlocked = true
				at := at
				achievement.UnlockedAt = &at
			}
		}

		return achievements, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserAchievements(userID), CACHE_TTL_15_SECONDS, callback)
}

// OnActivity evaluates unlock rules for the activity that just landed.
// Settlement updates totals before appending stop_mining, so the fresh
// row is read straight from the store, never through the user cache.
func (service *ServiceAchievement) OnActivity(ctx context.Context, userID string, kind models.ActivityType) error {
	switch kind {
	case models.ActivityStopMining:
		user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
		if err != nil {
			return err
		}
		if internal.MiningNoviceEligible(user.TotalMined) {
			return service.Unlock(ctx, userID, models.AchievementMiningNovice)
		}
	case models.ActivityWalletConnect:
		user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
		if err != nil {
			return err
		}
		epoch, err := datastore.FindFirstEpoch(ctx, service.readonlyPostgresDB)
		if err != nil {
			return err
		}
		if internal.EarlyAdopterEligible(user.JoinedAt, epoch.StartDate, epoch.EndDate) {
			return service.Unlock(ctx, userID, models.AchievementEarlyAdopter)
		}
	case models.ActivityJoinCrew:
		// founders unlock through ServiceCrew on create
	}

	return nil
}

// Unlock is idempotent; the first unlock mints the reward row.
func (service *ServiceAchievement) Unlock(ctx context.Context, userID, achievementID string) error {
	unlocked, err := service.store.Unlock(ctx, &models.UserAchievement{
		ID:            uuid.NewString(),
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    time.Now(),
	})
	if err != nil {
		return err
	}
	if !unlocked {
		return nil
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUserAchievements(userID))

	return service.serviceReward.Grant(ctx, userID, achievementRewardAmount(achievementID), models.RewardSourceAchievement, &achievementID)
}

func achievementRewardAmount(achievementID string) float64 {
	switch achievementID {
	case models.AchievementMiningNovice:
		return 10
	case models.AchievementCrewFounder:
		return 20
	case models.AchievementEarlyAdopter:
		return 15
	}
	return 5
}
