package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceReward struct {
	container          *do.Injector
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceReward(container *do.Injector) (*ServiceReward, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

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

	return &ServiceReward{container, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceReward) Grant(ctx context.Context, userID string, amount float64, source models.RewardSource, sourceRef *string) error {
	_, err := datastore.CreateReward(ctx, service.postgresDB, &models.Reward{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Source:    source,
		SourceRef: sourceRef,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUserAvailableReward(userID))
	return nil
}

func (service *ServiceReward) ListUnclaimed(ctx context.Context, userID string) ([]*models.Reward, error) {
	callback := func() ([]*models.Reward, error) {
		rewards, err := datastore.ListUnclaimedRewards(ctx, service.readonlyPostgresDB, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return rewards, err
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserAvailableReward(userID), CACHE_TTL_15_SECONDS, callback)
}

// Claim pays a reward into total_mined exactly once and logs it as a
// durable activity.
func (service *ServiceReward) Claim(ctx context.Context, userID, rewardID string) (*models.Reward, error) {
	mutex := service.rs.NewMutex(LockKeyUserClaimReward(userID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrUserLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	reward, err := datastore.FindRewardByID(ctx, service.postgresDB, rewardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("reward not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, err
	}
	if reward.UserID != userID {
		return nil, errorx.Wrap(errors.New("reward not found"), errorx.NotExist)
	}

	claimed, err := datastore.ClaimReward(ctx, service.postgresDB, rewardID, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, errorx.Wrap(ErrRewardAlreadyClaimed, errorx.Invalid)
	}

	err = datastore.AddMinedAmount(ctx, service.postgresDB, userID, reward.Amount)
	if err != nil {
		return nil, err
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUserAvailableReward(userID))
	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUser(userID))

	// invoked lazily: activity -> achievement -> reward would otherwise cycle
	if serviceActivity, err := do.Invoke[*ServiceActivity](service.container); err == nil {
		// nolint:errcheck
		serviceActivity.Append(ctx, userID, &models.ClaimRewardMeta{
			RewardID: rewardID,
			Amount:   reward.Amount,
		})
	}

	reward.Claimed = true
	return reward, nil
}
