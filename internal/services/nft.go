package services

import (
	"context"
	"errors"
	"time"

	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/mroth/weightedrand/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceNFT struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	gacha              *ServiceGacha[models.NFTTier]

	serviceConfig *ServiceConfig
}

func NewServiceNFT(container *do.Injector) (*ServiceNFT, error) {
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	gacha, err := NewServiceGacha([]weightedrand.Choice[models.NFTTier, int]{
		weightedrand.NewChoice(models.TierBronze, 70),
		weightedrand.NewChoice(models.TierSilver, 25),
		weightedrand.NewChoice(models.TierGold, 5),
	})
	if err != nil {
		return nil, err
	}

	return &ServiceNFT{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, gacha, serviceConfig}, nil
}

func (service *ServiceNFT) ListBoosts(ctx context.Context, userID string) ([]*models.NFTBoost, error) {
	callback := func() ([]*models.NFTBoost, error) {
		return datastore.ListNFTBoostsByUser(ctx, service.readonlyPostgresDB, userID)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserBoosts(userID), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceNFT) TotalBoostPercent(ctx context.Context, userID string) (float64, error) {
	return datastore.SumBoostPercent(ctx, service.readonlyPostgresDB, userID)
}

// Mint issues a boost of an explicit tier and logs it as a durable
// activity.
func (service *ServiceNFT) Mint(ctx context.Context, user *models.User, tier models.NFTTier) (*models.NFTBoost, error) {
	if !tier.Valid() {
		return nil, errorx.Wrap(errors.New("unknown tier"), errorx.Validation)
	}

	boost := &models.NFTBoost{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Tier:         tier,
		BoostPercent: tier.BoostPercent(),
		MintedAt:     time.Now(),
	}
	boost, err := datastore.CreateNFTBoost(ctx, service.postgresDB, boost)
	if err != nil {
		return nil, err
	}

	// invoked lazily: activity -> achievement would otherwise cycle at
	// container build time
	serviceActivity, err := do.Invoke[*ServiceActivity](service.container)
	if err != nil {
		return nil, err
	}

	activity, err := serviceActivity.Append(ctx, user.ID, &models.MintNFTMeta{
		Tier:         string(tier),
		BoostPercent: boost.BoostPercent,
	})
	if err == nil {
		boost.TxHash = activity.TxHash
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUserBoosts(user.ID))
	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUser(user.ID))

	return boost, nil
}

// OpenLootBox pays the configured cost from total_mined and mints a
// weighted-random tier. The debit is conditional, so two concurrent
// opens cannot spend the same balance twice.
func (service *ServiceNFT) OpenLootBox(ctx context.Context, user *models.User) (*models.NFTBoost, error) {
	cost, _ := service.serviceConfig.GetFloatConfig(ctx, CONFIG_LOOT_BOX_COST, DEFAULT_LOOT_BOX_COST)

	ok, err := datastore.SpendMinedAmount(ctx, service.postgresDB, user.ID, cost)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorx.Wrap(errors.New("insufficient balance"), errorx.Invalid)
	}

	tier := service.gacha.Pick()
	return service.Mint(ctx, user, tier)
}
