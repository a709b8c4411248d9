package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math"
	"time"

	"corepulse/internal"
	"corepulse/internal/datastore"
	"corepulse/internal/datastore/redis_store"
	"corepulse/internal/models"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceMining struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	clocks             *internal.ClockRegistry

	serviceUser      *ServiceUser
	serviceConfig    *ServiceConfig
	serviceActivity  *ServiceActivity
	serviceNFT       *ServiceNFT
	serviceReferral  *ServiceReferral
	serviceStreak    *ServiceStreak
	serviceEpoch     *ServiceEpoch
	serviceChallenge *ServiceChallenge
}

func NewServiceMining(container *do.Injector) (*ServiceMining, error) {
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

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
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

	serviceStreak, err := do.Invoke[*ServiceStreak](container)
	if err != nil {
		return nil, err
	}

	serviceEpoch, err := do.Invoke[*ServiceEpoch](container)
	if err != nil {
		return nil, err
	}

	serviceChallenge, err := do.Invoke[*ServiceChallenge](container)
	if err != nil {
		return nil, err
	}

	return &ServiceMining{
		container, redisDB, rs, postgresDB, readonlyPostgresDB, internal.NewClockRegistry(),
		serviceUser, serviceConfig, serviceActivity, serviceNFT, serviceReferral, serviceStreak, serviceEpoch, serviceChallenge,
	}, nil
}

// StartMining opens a session and begins server-side accrual. The
// per-user mutex plus the open-session check keep it single-flight.
func (service *ServiceMining) StartMining(ctx context.Context, user *models.User) (*models.MiningSession, error) {
	mutex := service.rs.NewMutex(LockKeyUserMining(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrMiningLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	hasOpen := false
	_, err := datastore.FindOpenMiningSession(ctx, service.postgresDB, user.ID)
	if err == nil {
		hasOpen = true
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now()
	limit, err := service.getDailyLimit(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}

	switch internal.DecideStart(hasOpen, limit.MinutesMined, limit.MaxMinutes) {
	case internal.StartRejectedActiveSession:
		return nil, errorx.Wrap(ErrMiningAlreadyActive, errorx.Invalid)
	case internal.StartRejectedQuota:
		return nil, errorx.Wrap(ErrDailyLimitReached, errorx.Invalid)
	}

	baseRate, _ := service.serviceConfig.GetFloatConfig(ctx, CONFIG_BASE_MINING_RATE, DEFAULT_BASE_MINING_RATE)

	nftBoost, err := service.serviceNFT.TotalBoostPercent(ctx, user.ID)
	if err != nil {
		nftBoost = 0
	}

	referralBonus := 0.0
	if count, err := service.serviceReferral.CountReferred(ctx, user.ID); err == nil && count > 0 {
		referralBonus = models.ReferralBonusPercent
	}

	session := &models.MiningSession{
		ID:                   uuid.NewString(),
		UserID:               user.ID,
		BaseRate:             baseRate,
		NFTBoostPercent:      nftBoost,
		ReferralBonusPercent: referralBonus,
		StartTime:            now,
	}
	session, err = datastore.CreateMiningSession(ctx, service.postgresDB, session)
	if err != nil {
		return nil, err
	}

	rate := internal.EffectiveRate(baseRate, nftBoost, referralBonus)
	clock := internal.NewSessionClock(session.ID, rate, now)
	service.clocks.Put(user.ID, clock)
	go clock.Run(context.Background())

	// nolint:errcheck
	service.serviceStreak.CheckIn(ctx, user.ID, now)

	_, err = service.serviceActivity.Append(ctx, user.ID, &models.StartMiningMeta{
		SessionID:     session.ID,
		EffectiveRate: rate,
	})
	if err != nil {
		log.Println("append start_mining activity:", err)
	}

	return session, nil
}

// StopMining settles the open session from the server clock and charges
// the daily limit.
func (service *ServiceMining) StopMining(ctx context.Context, user *models.User) (*models.MiningSession, error) {
	mutex := service.rs.NewMutex(LockKeyUserMining(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrMiningLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	session, err := datastore.FindOpenMiningSession(ctx, service.postgresDB, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		// a stop with nothing running is a no-op, not a failure
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	service.clocks.Remove(user.ID)

	return service.settle(ctx, session, time.Now())
}

// settle closes the session, credits the user and fans out to the
// derived views. Caller holds the user's mining mutex.
func (service *ServiceMining) settle(ctx context.Context, session *models.MiningSession, endTime time.Time) (*models.MiningSession, error) {
	rate := internal.EffectiveRate(session.BaseRate, session.NFTBoostPercent, session.ReferralBonusPercent)
	earned := internal.SettlementAmount(rate, session.StartTime, endTime)
	minutes := internal.SettlementMinutes(session.StartTime, endTime)

	settled, err := datastore.SettleMiningSession(ctx, service.postgresDB, session.ID, endTime, earned)
	if err != nil {
		return nil, err
	}
	if !settled {
		// lost the race against the reconciler
		return datastore.FindMiningSessionByID(ctx, service.postgresDB, session.ID)
	}

	session.EndTime = &endTime
	session.EarnedAmount = &earned

	err = datastore.AddMinedAmount(ctx, service.postgresDB, session.UserID, earned)
	if err != nil {
		return nil, err
	}

	date := internal.DayKey(session.StartTime)
	err = datastore.AddMinutesMined(ctx, service.postgresDB, session.UserID, date, minutes, session.ID)
	if err != nil {
		return nil, err
	}

	if epoch, err := service.serviceEpoch.CurrentEpoch(ctx); err == nil {
		// nolint:errcheck
		redis_store.AddEpochScore(ctx, service.redisDB, epoch.ID, session.UserID, earned)
	}

	// experience follows the settled amount, not the duration
	// nolint:errcheck
	service.serviceUser.AddExperience(ctx, session.UserID, int64(math.Floor(earned*EXPERIENCE_PER_CORE)))

	// nolint:errcheck
	service.serviceChallenge.AddMiningProgress(ctx, session.UserID, minutes)

	_, err = service.serviceActivity.Append(ctx, session.UserID, &models.StopMiningMeta{
		SessionID:       session.ID,
		DurationMinutes: minutes,
		EarnedAmount:    earned,
	})
	if err != nil {
		log.Println("append stop_mining activity:", err)
	}

	// nolint:errcheck
	redis_store.DeleteMiningStatus(ctx, service.redisDB, session.UserID)
	service.serviceUser.ClearUserCache(ctx, session.UserID)

	return session, nil
}

// GetStatus reports the live state without touching the session row.
func (service *ServiceMining) GetStatus(ctx context.Context, user *models.User) (*models.MiningStatus, error) {
	now := time.Now()
	limit, err := service.getDailyLimit(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	remaining := internal.RemainingMinutes(limit.MinutesMined, limit.MaxMinutes)

	session, err := datastore.FindOpenMiningSession(ctx, service.readonlyPostgresDB, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.MiningStatus{
			State:            string(internal.MiningIdle),
			RemainingMinutes: remaining,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	rate := internal.EffectiveRate(session.BaseRate, session.NFTBoostPercent, session.ReferralBonusPercent)

	var earned float64
	if clock := service.clocks.Get(user.ID); clock != nil && clock.SessionID() == session.ID {
		earned = clock.Earned()
	} else {
		// restarted process, fall back to wall-clock integration
		earned = internal.SettlementAmount(rate, session.StartTime, now)
	}

	status := &models.MiningStatus{
		State:            string(internal.MiningActive),
		Session:          session,
		EarnedSoFar:      earned,
		EffectiveRate:    rate,
		RemainingMinutes: remaining,
	}

	// nolint:errcheck
	redis_store.SaveMiningStatus(ctx, service.redisDB, user.ID, status, CACHE_TTL_5_SECONDS)

	return status, nil
}

func (service *ServiceMining) GetDailyLimit(ctx context.Context, userID string) (*models.DailyMiningLimit, error) {
	return service.getDailyLimit(ctx, userID, time.Now())
}

func (service *ServiceMining) getDailyLimit(ctx context.Context, userID string, now time.Time) (*models.DailyMiningLimit, error) {
	maxMinutes, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_LIMIT_MINUTES, DEFAULT_DAILY_LIMIT_MINUTES)

	return datastore.GetOrCreateDailyLimit(ctx, service.postgresDB, &models.DailyMiningLimit{
		ID:         uuid.NewString(),
		UserID:     userID,
		Date:       internal.DayKey(now),
		MaxMinutes: maxMinutes,
	})
}

// ReconcileAbandonedSessions settles sessions whose owner walked away,
// capping the billable span at the abandon window.
func (service *ServiceMining) ReconcileAbandonedSessions(ctx context.Context) (int, error) {
	abandonMinutes, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_SESSION_ABANDON_MINUTES, DEFAULT_SESSION_ABANDON_MINUTES)
	window := time.Duration(abandonMinutes) * time.Minute

	now := time.Now()
	sessions, err := datastore.ListOpenSessionsOlderThan(ctx, service.postgresDB, now.Add(-window))
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, session := range sessions {
		mutex := service.rs.NewMutex(LockKeyUserMining(session.UserID))
		if err := mutex.Lock(); err != nil {
			continue
		}

		service.clocks.Remove(session.UserID)

		endTime := internal.CapElapsed(session.StartTime, now, window)
		if _, err := service.settle(ctx, session, endTime); err != nil {
			log.Println("reconcile session", session.ID, err)
		} else {
			settled++
		}

		// nolint:errcheck
		mutex.Unlock()
	}

	return settled, nil
}
