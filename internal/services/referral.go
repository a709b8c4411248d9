package services

import (
	"context"
	"database/sql"
	"errors"

	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/pkg"
	"corepulse/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const referralCodeLength = 8

type ServiceReferral struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceReferral(container *do.Injector) (*ServiceReferral, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	return &ServiceReferral{container, redisDB, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

// EnsureCode assigns the user's shareable code on first use. Codes live
// in redis keyed both ways so lookups stay cheap.
func (service *ServiceReferral) EnsureCode(ctx context.Context, userID string) (string, error) {
	code, err := service.redisDB.Get(ctx, dbKeyReferralCode(userID)).Result()
	if err == nil && code != "" {
		return code, nil
	}

	code = pkg.GenReferralCode(referralCodeLength)
	pipe := service.redisDB.TxPipeline()
	pipe.Set(ctx, dbKeyReferralCode(userID), code, 0)
	pipe.Set(ctx, dbKeyReferralOwner(code), userID, 0)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return "", err
	}

	return code, nil
}

// RecordReferral links a new user to the owner of the given code.
func (service *ServiceReferral) RecordReferral(ctx context.Context, refereeID, code string) error {
	referrerID, err := service.redisDB.Get(ctx, dbKeyReferralOwner(code)).Result()
	if err != nil || referrerID == "" {
		return errorx.Wrap(errors.New("unknown referral code"), errorx.NotExist)
	}
	if referrerID == refereeID {
		return errorx.Wrap(ErrSelfReferral, errorx.Invalid)
	}

	_, err = datastore.FindReferralByReferee(ctx, service.postgresDB, refereeID)
	if err == nil {
		return errorx.Wrap(ErrAlreadyReferred, errorx.Invalid)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = datastore.CreateReferral(ctx, service.postgresDB, &models.Referral{
		ID:         uuid.NewString(),
		ReferrerID: referrerID,
		RefereeID:  refereeID,
		Code:       code,
	})
	if err != nil {
		return err
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUserReferral(referrerID))
	return nil
}

func (service *ServiceReferral) CountReferred(ctx context.Context, userID string) (int, error) {
	return datastore.CountReferralsByReferrer(ctx, service.readonlyPostgresDB, userID)
}

func (service *ServiceReferral) GetSummary(ctx context.Context, userID string) (*models.ReferralSummary, error) {
	callback := func() (*models.ReferralSummary, error) {
		code, err := service.EnsureCode(ctx, userID)
		if err != nil {
			return nil, err
		}

		count, err := service.CountReferred(ctx, userID)
		if err != nil {
			return nil, err
		}

		summary := &models.ReferralSummary{Code: code, TotalInvited: count}
		if count > 0 {
			summary.BonusPercent = models.ReferralBonusPercent
		}
		return summary, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserReferral(userID), CACHE_TTL_1_MIN, callback)
}

func dbKeyReferralCode(userID string) string {
	return "referral:code:" + userID
}

func dbKeyReferralOwner(code string) string {
	return "referral:owner:" + code
}
