package services

import (
	"context"
	"fmt"
	"time"

	"corepulse/internal/datastore"
	"corepulse/internal/datastore/redis_store"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceLeaderboard struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
	serviceEpoch  *ServiceEpoch
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	serviceEpoch, err := do.Invoke[*ServiceEpoch](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, redisDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig, serviceEpoch}, nil
}

// GetLeaderboard reads the live epoch ranking and annotates entries with
// wallet and avatar, plus the caller's own row even when outside the top.
func (service *ServiceLeaderboard) GetLeaderboard(ctx context.Context, userID string) (*models.LeaderboardResponse, error) {
	epoch, err := service.serviceEpoch.CurrentEpoch(ctx)
	if err != nil {
		return nil, err
	}

	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, DEFAULT_LEADERBOARD_LIMIT)

	callback := func() (*models.LeaderboardResponse, error) {
		items, err := redis_store.GetEpochLeaderboard(ctx, service.redisDB, epoch.ID, limit)
		if err != nil {
			return nil, err
		}

		userIDs := make([]string, len(items))
		for i, item := range items {
			userIDs[i] = item.UserID
		}

		users, err := datastore.GetUsersByIDs(ctx, service.readonlyPostgresDB, userIDs)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]*models.User, len(users))
		joinedAt := make(map[string]time.Time, len(users))
		for _, user := range users {
			byID[user.ID] = user
			joinedAt[user.ID] = user.JoinedAt
		}

		for _, item := range items {
			if user, ok := byID[item.UserID]; ok {
				item.WalletAddress = user.WalletAddress
				item.AvatarStage = user.AvatarStage
			}
		}

		models.RankLeaderboard(items, joinedAt)

		return &models.LeaderboardResponse{Epoch: epoch.ID, Leaderboard: items}, nil
	}

	response, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboard(epoch.ID, limit), CACHE_TTL_15_SECONDS, callback)
	if err != nil {
		return nil, err
	}

	me, err := service.getMyRank(ctx, epoch.ID, userID)
	if err == nil {
		response.Me = me
	}

	return response, nil
}

func (service *ServiceLeaderboard) getMyRank(ctx context.Context, epoch int, userID string) (*models.LeaderboardItem, error) {
	rank, score, err := redis_store.GetEpochRank(ctx, service.redisDB, epoch, userID)
	if err != nil {
		return nil, err
	}

	item := &models.LeaderboardItem{
		UserID: userID,
		Score:  score,
		Rank:   rank,
	}

	user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
	if err == nil {
		item.WalletAddress = user.WalletAddress
		item.AvatarStage = user.AvatarStage
	}

	return item, nil
}

// SnapshotEpoch persists the final ranking of a closed epoch.
func (service *ServiceLeaderboard) SnapshotEpoch(ctx context.Context, db *bun.DB, epoch int) error {
	count, err := redis_store.GetEpochParticipantsCount(ctx, service.redisDB, epoch)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	items, err := redis_store.GetEpochLeaderboard(ctx, service.redisDB, epoch, int(count))
	if err != nil {
		return err
	}

	// persisted ranks follow the same tie-break rule as the live view
	userIDs := make([]string, len(items))
	for i, item := range items {
		userIDs[i] = item.UserID
	}
	joinedAt := map[string]time.Time{}
	if users, err := datastore.GetUsersByIDs(ctx, service.readonlyPostgresDB, userIDs); err == nil {
		for _, user := range users {
			joinedAt[user.ID] = user.JoinedAt
		}
	}
	models.RankLeaderboard(items, joinedAt)

	snapshots := make([]*models.LeaderboardSnapshot, len(items))
	for i, item := range items {
		snapshots[i] = &models.LeaderboardSnapshot{
			ID:              newSnapshotID(epoch, item.UserID),
			Epoch:           epoch,
			UserID:          item.UserID,
			EpochTotalMined: item.Score,
			Rank:            item.Rank,
		}
	}

	return datastore.InsertLeaderboardSnapshots(ctx, db, snapshots)
}

// snapshot IDs are deterministic so a retried rollover cannot duplicate
// rows.
func newSnapshotID(epoch int, userID string) string {
	return fmt.Sprintf("%d:%s", epoch, userID)
}
