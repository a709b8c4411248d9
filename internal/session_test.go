package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(MiningIdle, MiningStarting))
	assert.True(t, CanTransition(MiningStarting, MiningActive))
	assert.True(t, CanTransition(MiningStarting, MiningIdle))
	assert.True(t, CanTransition(MiningActive, MiningStopping))
	assert.True(t, CanTransition(MiningStopping, MiningIdle))

	assert.False(t, CanTransition(MiningIdle, MiningActive))
	assert.False(t, CanTransition(MiningActive, MiningStarting))
	assert.False(t, CanTransition(MiningIdle, MiningStopping))
	assert.False(t, CanTransition(MiningActive, MiningActive))
}

func TestEffectiveRate(t *testing.T) {
	assert.InDelta(t, 10.0, EffectiveRate(10, 0, 0), 1e-9)
	assert.InDelta(t, 12.5, EffectiveRate(10, 0.25, 0), 1e-9)
	assert.InDelta(t, 13.5, EffectiveRate(10, 0.25, 0.10), 1e-9)
}

func TestSettlementMinutes(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, SettlementMinutes(start, start.Add(5*time.Second)))
	assert.Equal(t, 1, SettlementMinutes(start, start.Add(89*time.Second)))
	assert.Equal(t, 2, SettlementMinutes(start, start.Add(90*time.Second)))
	assert.Equal(t, 10, SettlementMinutes(start, start.Add(10*time.Minute)))
	// clock skew must never settle negative
	assert.Equal(t, 1, SettlementMinutes(start, start.Add(-time.Minute)))
}

func TestSettlementAmount(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// rate is tokens per minute
	assert.InDelta(t, 10.0, SettlementAmount(10, start, start.Add(time.Minute)), 1e-9)
	assert.InDelta(t, 600.0, SettlementAmount(10, start, start.Add(time.Hour)), 1e-9)
	assert.InDelta(t, 5.0, SettlementAmount(10, start, start.Add(30*time.Second)), 1e-9)
	assert.Zero(t, SettlementAmount(10, start, start))
}

func TestRemainingMinutes(t *testing.T) {
	assert.Equal(t, 240, RemainingMinutes(0, 240))
	assert.Equal(t, 1, RemainingMinutes(239, 240))
	assert.Equal(t, 0, RemainingMinutes(240, 240))
	assert.Equal(t, 0, RemainingMinutes(300, 240))
}

func TestCapElapsed(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	now := start.Add(10 * time.Minute)
	assert.Equal(t, now, CapElapsed(start, now, 30*time.Minute))

	now = start.Add(2 * time.Hour)
	assert.Equal(t, start.Add(30*time.Minute), CapElapsed(start, now, 30*time.Minute))
}

func TestApplyExperience(t *testing.T) {
	level, exp, next, up := ApplyExperience(1, 0, 50)
	assert.Equal(t, 1, level)
	assert.Equal(t, int64(50), exp)
	assert.Equal(t, int64(100), next)
	assert.False(t, up)

	level, exp, next, up = ApplyExperience(1, 80, 30)
	assert.Equal(t, 2, level)
	assert.Equal(t, int64(10), exp)
	assert.Equal(t, int64(150), next)
	assert.True(t, up)

	// enough experience to jump several levels at once
	level, _, _, up = ApplyExperience(1, 0, 1000)
	assert.True(t, up)
	assert.Greater(t, level, 2)
}

func TestAvatarStage(t *testing.T) {
	assert.Equal(t, 1, AvatarStage(1))
	assert.Equal(t, 1, AvatarStage(5))
	assert.Equal(t, 2, AvatarStage(6))
	assert.Equal(t, 3, AvatarStage(11))
	assert.Equal(t, 5, AvatarStage(25))
	assert.Equal(t, 5, AvatarStage(99))
}

func TestSessionClockAccrual(t *testing.T) {
	clock := NewSessionClock("session-1", 10, time.Now())

	// one minute of ticks at 10 tokens/minute accrues 10 tokens
	for i := 0; i < int(time.Minute/ClockTick); i++ {
		clock.Tick()
	}
	assert.InDelta(t, 10.0, clock.Earned(), 1e-6)

	clock.SetRate(20)
	for i := 0; i < int(time.Minute/ClockTick); i++ {
		clock.Tick()
	}
	assert.InDelta(t, 30.0, clock.Earned(), 1e-6)
}

func TestClockRegistry(t *testing.T) {
	registry := NewClockRegistry()
	require.Nil(t, registry.Get("user-1"))

	clock := NewSessionClock("session-1", 10, time.Now())
	registry.Put("user-1", clock)
	assert.Same(t, clock, registry.Get("user-1"))

	removed := registry.Remove("user-1")
	assert.Same(t, clock, removed)
	assert.Nil(t, registry.Get("user-1"))
	assert.Nil(t, registry.Remove("user-1"))
}
