package services

import (
	"context"
	"time"

	"corepulse/internal"
	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceEarnings struct {
	container          *do.Injector
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceEarnings(container *do.Injector) (*ServiceEarnings, error) {
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

	return &ServiceEarnings{container, readonlyPostgresDB, cache, readonlyCache}, nil
}

// GetEarnings folds the month's settled sessions into the three chart
// series; total_mined comes from the user row so it covers all time.
func (service *ServiceEarnings) GetEarnings(ctx context.Context, userID string) (*models.EarningsData, error) {
	callback := func() (*models.EarningsData, error) {
		now := time.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		sessions, err := datastore.ListSettledSessionsByUser(ctx, service.readonlyPostgresDB, userID, monthStart)
		if err != nil {
			return nil, err
		}

		data := internal.BucketEarnings(sessions, now)

		user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
		if err == nil {
			data.TotalMined = user.TotalMined
		}

		return &data, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserEarnings(userID), CACHE_TTL_1_MIN, callback)
}
