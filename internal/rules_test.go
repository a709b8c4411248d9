package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecideStart(t *testing.T) {
	assert.Equal(t, StartAllowed, DecideStart(false, 0, 240))
	assert.Equal(t, StartAllowed, DecideStart(false, 239, 240))

	// an open session always wins over the quota check
	assert.Equal(t, StartRejectedActiveSession, DecideStart(true, 0, 240))
	assert.Equal(t, StartRejectedActiveSession, DecideStart(true, 240, 240))

	assert.Equal(t, StartRejectedQuota, DecideStart(false, 240, 240))
	assert.Equal(t, StartRejectedQuota, DecideStart(false, 300, 240))

	// rejections consume nothing, so the same state decides the same way
	first := DecideStart(false, 240, 240)
	second := DecideStart(false, 240, 240)
	assert.Equal(t, first, second)
}

func TestDecideJoinCrew(t *testing.T) {
	assert.True(t, DecideJoinCrew(""))
	assert.False(t, DecideJoinCrew("crew-1"))

	// a member is rejected again on every retry, not just the first
	assert.False(t, DecideJoinCrew("crew-1"))
}

func TestMiningNoviceEligible(t *testing.T) {
	assert.False(t, MiningNoviceEligible(0))
	assert.False(t, MiningNoviceEligible(99.99))
	assert.True(t, MiningNoviceEligible(MiningNoviceThreshold))
	assert.True(t, MiningNoviceEligible(250))
}

func TestEarlyAdopterEligible(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)

	assert.True(t, EarlyAdopterEligible(start, start, end))
	assert.True(t, EarlyAdopterEligible(start.AddDate(0, 0, 7), start, end))

	// the window is half-open: joining at the boundary is too late
	assert.False(t, EarlyAdopterEligible(end, start, end))
	assert.False(t, EarlyAdopterEligible(end.AddDate(0, 1, 0), start, end))
	assert.False(t, EarlyAdopterEligible(start.Add(-time.Second), start, end))
}
