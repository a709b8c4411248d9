package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"corepulse/internal"
	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceStreak struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
	serviceReward *ServiceReward
}

func NewServiceStreak(container *do.Injector) (*ServiceStreak, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	return &ServiceStreak{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig, serviceReward}, nil
}

func (service *ServiceStreak) GetStreak(ctx context.Context, userID string) (*models.Streak, error) {
	callback := func() (*models.Streak, error) {
		streak, err := datastore.FindStreakByUser(ctx, service.readonlyPostgresDB, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Streak{UserID: userID}, nil
		}
		if err != nil {
			return nil, err
		}

		// display the lapse without waiting for the next check-in
		if internal.StreakBroken(streak.LastCheckIn, time.Now()) {
			streak.CurrentStreakDays = 0
		}
		return streak, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserStreak(userID), CACHE_TTL_1_MIN, callback)
}

// CheckIn advances the streak on the first mining start of the day, and
// pays the milestone reward when the configured run length is hit.
func (service *ServiceStreak) CheckIn(ctx context.Context, userID string, now time.Time) error {
	streak, err := datastore.FindStreakByUser(ctx, service.postgresDB, userID)
	if errors.Is(err, sql.ErrNoRows) {
		streak = &models.Streak{
			ID:     uuid.NewString(),
			UserID: userID,
		}
	} else if err != nil {
		return err
	}

	current, best, changed := internal.AdvanceStreak(streak.CurrentStreakDays, streak.BestStreakDays, streak.LastCheckIn, now)
	if !changed {
		return nil
	}

	streak.CurrentStreakDays = current
	streak.BestStreakDays = best
	streak.LastCheckIn = &now

	err = datastore.UpsertStreak(ctx, service.postgresDB, streak, now)
	if err != nil {
		return err
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUserStreak(userID))

	rewardDays, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_STREAK_REWARD_DAYS, DEFAULT_STREAK_REWARD_DAYS)
	if rewardDays > 0 && current > 0 && current%rewardDays == 0 {
		amount, _ := service.serviceConfig.GetFloatConfig(ctx, CONFIG_STREAK_REWARD_AMOUNT, DEFAULT_STREAK_REWARD_AMOUNT)
		ref := internal.DayKey(now)
		return service.serviceReward.Grant(ctx, userID, amount, models.RewardSourceStreak, &ref)
	}

	return nil
}
