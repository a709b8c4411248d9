package models

import (
	"sort"
	"time"
)

type LeaderboardItem struct {
	UserID        string  `json:"user_id"`
	WalletAddress string  `json:"wallet_address"`
	Score         float64 `json:"score"`
	Rank          int     `json:"rank,omitempty"`
	AvatarStage   int     `json:"avatar_stage"`
}

type LeaderboardResponse struct {
	Epoch       int                `json:"epoch"`
	Leaderboard []*LeaderboardItem `json:"leaderboard"`
	Me          *LeaderboardItem   `json:"me"`
}

// RankLeaderboard orders by score descending and breaks equal scores by
// the earliest joined account, then reassigns ranks. The redis sorted
// set orders ties lexically by member, which is not the product rule.
func RankLeaderboard(items []*LeaderboardItem, joinedAt map[string]time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return joinedAt[items[i].UserID].Before(joinedAt[items[j].UserID])
	})

	for i, item := range items {
		item.Rank = i + 1
	}
}
