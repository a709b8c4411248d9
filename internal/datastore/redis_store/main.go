package redis_store

import (
	"context"
	"fmt"
	"time"

	"corepulse/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

func dbKeyEpochLeaderboard(epoch int) string {
	return fmt.Sprintf("leaderboard:epoch:%d", epoch)
}

func dbKeyWalletNonce(walletAddress string) string {
	return fmt.Sprintf("wallet:nonce:%s", models.NormalizeWallet(walletAddress))
}

func dbKeyMiningStatus(userID string) string {
	return fmt.Sprintf("mining:status:%s", userID)
}

func dbKeyActivityFeed() string {
	return "activity:feed"
}

// SetWalletNonce stores a short-lived sign-in challenge per wallet.
func SetWalletNonce(ctx context.Context, cmd redis.Cmdable, walletAddress, nonce string, ttl time.Duration) error {
	return cmd.Set(ctx, dbKeyWalletNonce(walletAddress), nonce, ttl).Err()
}

func GetWalletNonce(ctx context.Context, cmd redis.Cmdable, walletAddress string) (string, error) {
	return cmd.Get(ctx, dbKeyWalletNonce(walletAddress)).Result()
}

func DeleteWalletNonce(ctx context.Context, cmd redis.Cmdable, walletAddress string) error {
	return cmd.Del(ctx, dbKeyWalletNonce(walletAddress)).Err()
}

// SaveMiningStatus snapshots the live accrual so status reads survive a
// cache miss without touching Postgres.
func SaveMiningStatus(ctx context.Context, cmd redis.Cmdable, userID string, status *models.MiningStatus, ttl time.Duration) error {
	b, err := msgpack.Marshal(status)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyMiningStatus(userID), b, ttl).Err()
}

func GetMiningStatus(ctx context.Context, cmd redis.Cmdable, userID string) (*models.MiningStatus, error) {
	var v *models.MiningStatus
	b, err := cmd.Get(ctx, dbKeyMiningStatus(userID)).Bytes()
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}

func DeleteMiningStatus(ctx context.Context, cmd redis.Cmdable, userID string) error {
	return cmd.Del(ctx, dbKeyMiningStatus(userID)).Err()
}

// AddEpochScore accumulates settled earnings into the epoch's ranking set.
func AddEpochScore(ctx context.Context, cmd redis.Cmdable, epoch int, userID string, amount float64) error {
	return cmd.ZIncrBy(ctx, dbKeyEpochLeaderboard(epoch), amount, userID).Err()
}

func GetEpochLeaderboard(ctx context.Context, cmd redis.Cmdable, epoch, num int) ([]*models.LeaderboardItem, error) {
	// num always greater than 0
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyEpochLeaderboard(epoch), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		results = append(results, &models.LeaderboardItem{
			UserID: item.Member.(string),
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

// GetEpochRank returns the 1-based rank, or 0 when the user has not
// mined this epoch.
func GetEpochRank(ctx context.Context, cmd redis.Cmdable, epoch int, userID string) (int, float64, error) {
	rank, err := cmd.ZRevRank(ctx, dbKeyEpochLeaderboard(epoch), userID).Result()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	score, err := cmd.ZScore(ctx, dbKeyEpochLeaderboard(epoch), userID).Result()
	if err != nil {
		return 0, 0, err
	}

	return int(rank) + 1, score, nil
}

func GetEpochParticipantsCount(ctx context.Context, cmd redis.Cmdable, epoch int) (int64, error) {
	return cmd.ZCard(ctx, dbKeyEpochLeaderboard(epoch)).Result()
}

func ClearEpochLeaderboard(ctx context.Context, cmd redis.Cmdable, epoch int) error {
	return cmd.Del(ctx, dbKeyEpochLeaderboard(epoch)).Err()
}

// PublishActivity fans a visible activity out to feed subscribers.
func PublishActivity(ctx context.Context, cmd redis.Cmdable, activity *models.Activity) error {
	b, err := msgpack.Marshal(activity)
	if err != nil {
		return err
	}

	return cmd.Publish(ctx, dbKeyActivityFeed(), b).Err()
}

func SubscribeActivityFeed(ctx context.Context, client redis.UniversalClient) *redis.PubSub {
	return client.Subscribe(ctx, dbKeyActivityFeed())
}

func DecodeActivityMessage(payload string) (*models.Activity, error) {
	var v *models.Activity
	err := msgpack.Unmarshal([]byte(payload), &v)
	return v, err
}
