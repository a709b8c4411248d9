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

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceUser struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceActivity *ServiceActivity
	serviceNFT      *ServiceNFT
	serviceReferral *ServiceReferral
	serviceReward   *ServiceReward
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
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

	serviceActivity, err := do.Invoke[*ServiceActivity](container)
	if err != nil {
		return nil, err
	}

	serviceNFT, err := do.Invoke[*ServiceNFT](container)
	if err != nil {
		return nil, err
	}

	serviceReferral, err := do.Invoke[*ServiceReferral](container)
	if err != nil {
		return nil, err
	}

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceActivity, serviceNFT, serviceReferral, serviceReward}, nil
}

// ConnectWallet finds or creates the user behind a wallet address and
// logs the connect. First connects seed level 1 progress and a referral
// code.
func (service *ServiceUser) ConnectWallet(ctx context.Context, walletAddress string, referralCode *string) (*models.User, error) {
	walletAddress = models.NormalizeWallet(walletAddress)

	mutex := service.rs.NewMutex(LockKeyWalletConnect(walletAddress))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrUserLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	user, err := datastore.FindUserByWallet(ctx, service.postgresDB, walletAddress)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if user != nil {
		return user, nil
	}

	now := time.Now()
	user = &models.User{
		ID:            uuid.NewString(),
		WalletAddress: walletAddress,
		Level:         1,
		NextLevelExp:  internal.NextLevelExp(1),
		AvatarStage:   1,
		JoinedAt:      now,
		UpdatedAt:     now,
		IsNewUser:     true,
	}
	user, err = datastore.CreateUser(ctx, service.postgresDB, user)
	if err != nil {
		return nil, err
	}

	// nolint:errcheck
	service.serviceReferral.EnsureCode(ctx, user.ID)

	if referralCode != nil && *referralCode != "" {
		// referral failures never block a connect
		// nolint:errcheck
		service.serviceReferral.RecordReferral(ctx, user.ID, *referralCode)
	}

	_, err = service.serviceActivity.Append(ctx, user.ID, &models.WalletConnectMeta{WalletAddress: walletAddress})
	if err != nil {
		return nil, err
	}

	err = service.AddExperience(ctx, user.ID, EXPERIENCE_WALLET_CONNECT)
	if err != nil {
		return nil, err
	}

	fresh, err := datastore.FindUserByID(ctx, service.postgresDB, user.ID)
	if err != nil {
		return nil, err
	}
	fresh.IsNewUser = true

	return fresh, nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	callback := func() (*models.User, error) {
		user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("user not found"), errorx.NotExist)
		}
		return user, err
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUser(userID), CACHE_TTL_15_SECONDS, callback)
}

// GetMe assembles the dashboard profile: boosts, crew, rank and pending
// rewards on top of the user row.
func (service *ServiceUser) GetMe(ctx context.Context, userID string) (*models.User, error) {
	user, err := service.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	boosts, err := service.serviceNFT.ListBoosts(ctx, userID)
	if err == nil {
		for _, boost := range boosts {
			user.Boosts = append(user.Boosts, *boost)
			user.BoostPercent += boost.BoostPercent
		}
	}

	membership, err := datastore.FindCrewMembership(ctx, service.readonlyPostgresDB, userID)
	if err == nil {
		user.CrewID = &membership.CrewID
	}

	rewards, err := service.serviceReward.ListUnclaimed(ctx, userID)
	if err == nil {
		for _, reward := range rewards {
			user.AvailableRewards = append(user.AvailableRewards, *reward)
		}
	}

	return user, nil
}

// AddExperience credits experience with an atomic SQL increment, then
// settles any level-ups conditionally so concurrent settlements (stop
// plus reconciler, claim plus stop) never lose updates.
func (service *ServiceUser) AddExperience(ctx context.Context, userID string, gained int64) error {
	user, err := datastore.AddExperience(ctx, service.postgresDB, userID, gained)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		level, experience, nextLevelExp, leveledUp := internal.ApplyExperience(user.Level, user.Experience, 0)
		if !leveledUp {
			break
		}

		fromLevel, fromExperience := user.Level, user.Experience
		user.Level = level
		user.Experience = experience
		user.NextLevelExp = nextLevelExp
		user.AvatarStage = internal.AvatarStage(level)

		landed, err := datastore.SettleUserProgress(ctx, service.postgresDB, user, fromLevel, fromExperience)
		if err != nil {
			return err
		}
		if landed {
			break
		}

		// another settlement moved the row; walk again from its state
		user, err = datastore.FindUserByID(ctx, service.postgresDB, userID)
		if err != nil {
			return err
		}
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUser(userID))
	return nil
}

func (service *ServiceUser) ClearUserCache(ctx context.Context, userID string) {
	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUser(userID))
	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyMe(userID))
}
