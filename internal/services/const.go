package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUserLock = errors.New("user locked")
var ErrMiningLock = errors.New("mining session locked")
var ErrMiningAlreadyActive = errors.New("mining session already active")
var ErrDailyLimitReached = errors.New("daily mining limit reached")
var ErrAlreadyInCrew = errors.New("already in a crew")
var ErrNotInCrew = errors.New("not in a crew")
var ErrCrewNameTaken = errors.New("crew name taken")
var ErrRewardAlreadyClaimed = errors.New("reward already claimed")
var ErrInvalidNonce = errors.New("invalid or expired nonce")
var ErrSelfReferral = errors.New("cannot refer yourself")
var ErrAlreadyReferred = errors.New("referral already recorded")

const (
	CONFIG_SERVER_MODE             = "SERVER_MODE"
	CONFIG_BASE_MINING_RATE        = "BASE_MINING_RATE"
	CONFIG_DAILY_LIMIT_MINUTES     = "DAILY_LIMIT_MINUTES"
	CONFIG_SESSION_ABANDON_MINUTES = "SESSION_ABANDON_MINUTES"
	CONFIG_EPOCH_LENGTH_DAYS       = "EPOCH_LENGTH_DAYS"
	CONFIG_LEADERBOARD_LIMIT       = "LEADERBOARD_LIMIT"
	CONFIG_LOOT_BOX_COST           = "LOOT_BOX_COST"
	CONFIG_STREAK_REWARD_DAYS      = "STREAK_REWARD_DAYS"
	CONFIG_STREAK_REWARD_AMOUNT    = "STREAK_REWARD_AMOUNT"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	DEFAULT_BASE_MINING_RATE        = 10.0
	DEFAULT_DAILY_LIMIT_MINUTES     = 240
	DEFAULT_SESSION_ABANDON_MINUTES = 30
	DEFAULT_EPOCH_LENGTH_DAYS       = 7
	DEFAULT_LEADERBOARD_LIMIT       = 20
	DEFAULT_LOOT_BOX_COST           = 50.0
	DEFAULT_STREAK_REWARD_DAYS      = 7
	DEFAULT_STREAK_REWARD_AMOUNT    = 25.0

	EXPERIENCE_PER_CORE       = 10
	EXPERIENCE_WALLET_CONNECT = 50

	NONCE_TTL = 5 * time.Minute

	CACHE_TTL_5_SECONDS  = 5 * time.Second
	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
	CACHE_TTL_15_MINS    = 15 * time.Minute
	CACHE_TTL_1_HOUR     = 1 * time.Hour

	AUTH_RATE_LIMIT_PER_MINUTE   = 10
	MINING_RATE_LIMIT_PER_MINUTE = 30
)

func LockKeyWalletConnect(walletAddress string) string {
	return fmt.Sprintf("lock:wallet-connect:%s", walletAddress)
}

func LockKeyUserMining(userID string) string {
	return fmt.Sprintf("lock:user-mining:%s", userID)
}

func LockKeyUserClaimReward(userID string) string {
	return fmt.Sprintf("lock:user-claim-reward:%s", userID)
}

func LockKeyUserCrew(userID string) string {
	return fmt.Sprintf("lock:user-crew:%s", userID)
}

func LockKeyEpochRollover() string {
	return "lock:epoch-rollover"
}

// db
func DBKeyUser(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func DBKeyMe(userID string) string {
	return fmt.Sprintf("me:%s", userID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyEpochCurrent() string {
	return "epoch:current"
}

func DBKeyLeaderboard(epoch, limit int) string {
	return fmt.Sprintf("leaderboard:%d:%d", epoch, limit)
}

func DBKeyLeaderboardByUser(epoch int, userID string, limit int) string {
	return fmt.Sprintf("leaderboard_by_user:%d:%s:%d", epoch, userID, limit)
}

func DBKeyUserEarnings(userID string) string {
	return fmt.Sprintf("user:earnings:%s", userID)
}

func DBKeyUserStreak(userID string) string {
	return fmt.Sprintf("user:streak:%s", userID)
}

func DBKeyUserAchievements(userID string) string {
	return fmt.Sprintf("user:achievements:%s", userID)
}

func DBKeyUserChallenges(userID string) string {
	return fmt.Sprintf("user:challenges:%s", userID)
}

func DBKeyUserBoosts(userID string) string {
	return fmt.Sprintf("user:boosts:%s", userID)
}

func DBKeyUserAvailableReward(userID string) string {
	return fmt.Sprintf("user:available_rewards:%s", userID)
}

func DBKeyCrewList(page, limit int) string {
	return fmt.Sprintf("crew:list:%d:%d", page, limit)
}

func DBKeyCrew(crewID string) string {
	return fmt.Sprintf("crew:%s", crewID)
}

func DBKeyUserReferral(userID string) string {
	return fmt.Sprintf("user:referral:%s", userID)
}

func LimitKeyAuth(walletAddress string) string {
	return fmt.Sprintf("limit:auth:%s", walletAddress)
}

func LimitKeyMining(userID string) string {
	return fmt.Sprintf("limit:mining:%s", userID)
}
