package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"corepulse/internal/datastore"
	"corepulse/internal/datastore/redis_store"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceEpoch struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
}

func NewServiceEpoch(container *do.Injector) (*ServiceEpoch, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceEpoch{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig}, nil
}

// CurrentEpoch returns the active epoch, bootstrapping the first one on
// an empty database.
func (service *ServiceEpoch) CurrentEpoch(ctx context.Context) (*models.Epoch, error) {
	callback := func() (*models.Epoch, error) {
		epoch, err := datastore.FindActiveEpoch(ctx, service.readonlyPostgresDB)
		if errors.Is(err, sql.ErrNoRows) {
			return service.openEpoch(ctx, time.Now())
		}
		return epoch, err
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyEpochCurrent(), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceEpoch) openEpoch(ctx context.Context, start time.Time) (*models.Epoch, error) {
	lengthDays, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_EPOCH_LENGTH_DAYS, DEFAULT_EPOCH_LENGTH_DAYS)

	return datastore.CreateEpoch(ctx, service.postgresDB, &models.Epoch{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, lengthDays),
		Status:    models.EpochStatusActive,
	})
}

// Rollover closes every expired epoch, snapshots its ranking and opens
// the next one. Runs under a global lock so overlapping cron firings are
// harmless.
func (service *ServiceEpoch) Rollover(ctx context.Context) error {
	mutex := service.rs.NewMutex(LockKeyEpochRollover())
	if err := mutex.Lock(); err != nil {
		return nil
	}
	// nolint:errcheck
	defer mutex.Unlock()

	now := time.Now()
	expired, err := datastore.ListExpiredEpochs(ctx, service.postgresDB, now)
	if err != nil {
		return err
	}

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](service.container)
	if err != nil {
		return err
	}

	for _, epoch := range expired {
		if err := serviceLeaderboard.SnapshotEpoch(ctx, service.postgresDB, epoch.ID); err != nil {
			return fmt.Errorf("snapshot epoch %d: %w", epoch.ID, err)
		}

		if err := datastore.CompleteEpoch(ctx, service.postgresDB, epoch.ID); err != nil {
			return err
		}

		// nolint:errcheck
		redis_store.ClearEpochLeaderboard(ctx, service.redisDB, epoch.ID)

		next, err := service.openEpoch(ctx, now)
		if err != nil {
			return err
		}
		log.Println("epoch rollover:", epoch.ID, "->", next.ID)
	}

	if len(expired) > 0 {
		// nolint:errcheck
		service.cache.Delete(ctx, DBKeyEpochCurrent())
	}

	return nil
}
