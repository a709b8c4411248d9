package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankLeaderboard(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	joinedAt := map[string]time.Time{
		"veteran":  base,
		"newcomer": base.AddDate(0, 2, 0),
		"leader":   base.AddDate(0, 1, 0),
	}

	// redis hands ties back in lexical member order: newcomer first
	items := []*LeaderboardItem{
		{UserID: "leader", Score: 50},
		{UserID: "newcomer", Score: 10},
		{UserID: "veteran", Score: 10},
	}

	RankLeaderboard(items, joinedAt)

	require.Len(t, items, 3)
	assert.Equal(t, "leader", items[0].UserID)
	// equal scores order by earliest join
	assert.Equal(t, "veteran", items[1].UserID)
	assert.Equal(t, "newcomer", items[2].UserID)

	for i, item := range items {
		assert.Equal(t, i+1, item.Rank)
	}
}
