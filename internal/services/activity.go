package services

import (
	"context"
	"log"
	"time"

	"corepulse/internal/datastore"
	"corepulse/internal/datastore/redis_store"
	"corepulse/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceActivity struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB

	serviceAchievement *ServiceAchievement
	serviceChain       *ServiceChain
}

func NewServiceActivity(container *do.Injector) (*ServiceActivity, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	serviceAchievement, err := do.Invoke[*ServiceAchievement](container)
	if err != nil {
		return nil, err
	}

	serviceChain, err := do.Invoke[*ServiceChain](container)
	if err != nil {
		return nil, err
	}

	return &ServiceActivity{container, redisDB, postgresDB, readonlyPostgresDB, serviceAchievement, serviceChain}, nil
}

// Append writes one log entry and fans out: durable kinds get an
// on-chain commitment, achievement triggers run best-effort, and the
// live feed is notified. The append itself is the only hard failure.
func (service *ServiceActivity) Append(ctx context.Context, userID string, meta models.ActivityMetadata) (*models.Activity, error) {
	raw, err := models.EncodeActivityMetadata(meta)
	if err != nil {
		return nil, err
	}

	kind := meta.ActivityType()
	activity := &models.Activity{
		ID:        uuid.NewString(),
		UserID:    userID,
		Activity:  kind,
		Metadata:  raw,
		Visible:   true,
		CreatedAt: time.Now(),
	}

	// A durable row must carry its commitment, so the chain submission
	// happens before the insert. When it fails the activity is still
	// recorded, downgraded to off-chain, and the caller is told so.
	if models.DurableActivity(kind) {
		tx, err := service.serviceChain.Submit(ctx, userID, kind, activity.ID)
		if err != nil {
			log.Println("submit chain tx:", err)
			models.CommitActivity(activity, nil)
		} else {
			models.CommitActivity(activity, &tx.Hash)
		}
	}

	activity, err = datastore.CreateActivity(ctx, service.postgresDB, activity)
	if err != nil {
		return nil, err
	}

	if err := service.serviceAchievement.OnActivity(ctx, userID, kind); err != nil {
		log.Println("achievement trigger:", err)
	}

	// nolint:errcheck
	redis_store.PublishActivity(ctx, service.redisDB, activity)

	return activity, nil
}

func (service *ServiceActivity) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return datastore.GetActivitiesByUser(ctx, service.readonlyPostgresDB, userID, limit, offset)
}

// Subscribe hands back the raw pubsub; the websocket handler owns its
// lifecycle.
func (service *ServiceActivity) Subscribe(ctx context.Context) *redis.PubSub {
	return redis_store.SubscribeActivityFeed(ctx, service.redisDB)
}

func DecodeFeedMessage(payload string) (*models.Activity, error) {
	return redis_store.DecodeActivityMessage(payload)
}
