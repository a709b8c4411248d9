package services

import (
	"context"
	"time"

	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceChallenge struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceReward *ServiceReward
}

func NewServiceChallenge(container *do.Injector) (*ServiceChallenge, error) {
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

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	return &ServiceChallenge{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceReward}, nil
}

// ListForUser returns this week's challenges annotated with progress.
func (service *ServiceChallenge) ListForUser(ctx context.Context, userID string) ([]*models.WeeklyChallenge, error) {
	callback := func() ([]*models.WeeklyChallenge, error) {
		challenges, err := datastore.ListActiveChallenges(ctx, service.readonlyPostgresDB, time.Now())
		if err != nil {
			return nil, err
		}

		ids := make([]string, len(challenges))
		for i, challenge := range challenges {
			ids[i] = challenge.ID
		}

		progress, err := datastore.ListUserChallenges(ctx, service.readonlyPostgresDB, userID, ids)
		if err != nil {
			return nil, err
		}

		byChallenge := make(map[string]*models.UserWeeklyChallenge, len(progress))
		for _, row := range progress {
			byChallenge[row.ChallengeID] = row
		}

		for _, challenge := range challenges {
			if row, ok := byChallenge[challenge.ID]; ok {
				challenge.Progress = row.Progress
				challenge.Completed = row.Completed
			}
		}

		return challenges, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserChallenges(userID), CACHE_TTL_15_SECONDS, callback)
}

// AddMiningProgress credits settled minutes against active mining
// challenges and pays out completions.
func (service *ServiceChallenge) AddMiningProgress(ctx context.Context, userID string, minutes int) error {
	now := time.Now()
	challenges, err := datastore.ListActiveChallenges(ctx, service.readonlyPostgresDB, now)
	if err != nil {
		return err
	}

	for _, challenge := range challenges {
		if challenge.ChallengeType != models.ChallengeTypeMining {
			continue
		}

		row := &models.UserWeeklyChallenge{
			ID:          uuid.NewString(),
			UserID:      userID,
			ChallengeID: challenge.ID,
		}
		if err := datastore.AddChallengeProgress(ctx, service.postgresDB, row, minutes); err != nil {
			return err
		}

		rows, err := datastore.ListUserChallenges(ctx, service.postgresDB, userID, []string{challenge.ID})
		if err != nil || len(rows) == 0 {
			continue
		}

		if rows[0].Progress >= challenge.Goal && !rows[0].Completed {
			completed, err := datastore.CompleteChallenge(ctx, service.postgresDB, userID, challenge.ID, now)
			if err != nil {
				return err
			}
			if completed {
				challengeID := challenge.ID
				// nolint:errcheck
				service.serviceReward.Grant(ctx, userID, challenge.Reward, models.RewardSourceChallenge, &challengeID)
			}
		}
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUserChallenges(userID))
	return nil
}

// SeedWeeklyChallenges creates the standard rotation for the week
// starting at weekStart, skipping weeks already seeded.
func (service *ServiceChallenge) SeedWeeklyChallenges(ctx context.Context, weekStart time.Time) error {
	existing, err := datastore.ListActiveChallenges(ctx, service.postgresDB, weekStart.Add(time.Hour))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	weekEnd := weekStart.AddDate(0, 0, 7)
	rotation := []*models.WeeklyChallenge{
		{
			ID:            uuid.NewString(),
			Title:         "Steady Miner",
			Description:   "Mine for 120 minutes this week",
			ChallengeType: models.ChallengeTypeMining,
			Goal:          120,
			Reward:        30,
			StartDate:     weekStart,
			EndDate:       weekEnd,
		},
		{
			ID:            uuid.NewString(),
			Title:         "Deep Shift",
			Description:   "Mine for 600 minutes this week",
			ChallengeType: models.ChallengeTypeMining,
			Goal:          600,
			Reward:        100,
			StartDate:     weekStart,
			EndDate:       weekEnd,
		},
	}

	for _, challenge := range rotation {
		if _, err := datastore.CreateWeeklyChallenge(ctx, service.postgresDB, challenge); err != nil {
			return err
		}
	}

	return nil
}
