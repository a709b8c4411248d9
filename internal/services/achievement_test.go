package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"corepulse/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAchievementStore struct {
	mu       sync.Mutex
	unlocked map[string]bool
}

func newMemoryAchievementStore() *memoryAchievementStore {
	return &memoryAchievementStore{unlocked: map[string]bool{}}
}

func (store *memoryAchievementStore) Unlock(_ context.Context, unlock *models.UserAchievement) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	key := unlock.UserID + "/" + unlock.AchievementID
	if store.unlocked[key] {
		return false, nil
	}
	store.unlocked[key] = true
	return true, nil
}

func TestUnlockReplayIsNoOp(t *testing.T) {
	store := newMemoryAchievementStore()
	service := &ServiceAchievement{store: store}

	ctx := context.Background()
	first, err := store.Unlock(ctx, &models.UserAchievement{
		ID:            uuid.NewString(),
		UserID:        "user-1",
		AchievementID: models.AchievementMiningNovice,
		UnlockedAt:    time.Now(),
	})
	require.NoError(t, err)
	require.True(t, first)

	// the replay returns before any cache bust or reward grant; the
	// service here carries neither, so reaching them would panic
	err = service.Unlock(ctx, "user-1", models.AchievementMiningNovice)
	require.NoError(t, err)
	assert.Len(t, store.unlocked, 1)

	// the store itself reports the replay so the caller can skip work
	replay, err := store.Unlock(ctx, &models.UserAchievement{
		ID:            uuid.NewString(),
		UserID:        "user-1",
		AchievementID: models.AchievementMiningNovice,
		UnlockedAt:    time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, replay)
}

func TestAchievementRewardAmount(t *testing.T) {
	assert.Equal(t, 10.0, achievementRewardAmount(models.AchievementMiningNovice))
	assert.Equal(t, 20.0, achievementRewardAmount(models.AchievementCrewFounder))
	assert.Equal(t, 15.0, achievementRewardAmount(models.AchievementEarlyAdopter))
	assert.Equal(t, 5.0, achievementRewardAmount("anything-else"))
}
