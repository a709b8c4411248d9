package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"corepulse/internal"
	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceCrew struct {
	container          *do.Injector
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceActivity    *ServiceActivity
	serviceAchievement *ServiceAchievement
}

func NewServiceCrew(container *do.Injector) (*ServiceCrew, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
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

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceActivity, err := do.Invoke[*ServiceActivity](container)
	if err != nil {
		return nil, err
	}

	serviceAchievement, err := do.Invoke[*ServiceAchievement](container)
	if err != nil {
		return nil, err
	}

	return &ServiceCrew{container, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceActivity, serviceAchievement}, nil
}

func (service *ServiceCrew) ListCrews(ctx context.Context, page, limit int) ([]*models.Crew, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 0 {
		page = 0
	}

	callback := func() ([]*models.Crew, error) {
		return datastore.ListCrews(ctx, service.readonlyPostgresDB, limit, page*limit)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyCrewList(page, limit), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceCrew) GetCrew(ctx context.Context, crewID string) (*models.Crew, error) {
	callback := func() (*models.Crew, error) {
		crew, err := datastore.FindCrewByID(ctx, service.readonlyPostgresDB, crewID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("crew not found"), errorx.NotExist)
		}
		if err != nil {
			return nil, err
		}

		count, err := datastore.CountCrewMembers(ctx, service.readonlyPostgresDB, crewID)
		if err == nil {
			crew.MemberCount = count
		}
		return crew, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyCrew(crewID), CACHE_TTL_1_MIN, callback)
}

// checkNotInCrew enforces the one-crew cardinality before any create or
// join; the unique user_id column backs it up at the database.
func (service *ServiceCrew) checkNotInCrew(ctx context.Context, userID string) error {
	currentCrewID := ""
	membership, err := datastore.FindCrewMembership(ctx, service.postgresDB, userID)
	if err == nil {
		currentCrewID = membership.CrewID
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if !internal.DecideJoinCrew(currentCrewID) {
		return errorx.Wrap(ErrAlreadyInCrew, errorx.Invalid)
	}
	return nil
}

// CreateCrew makes the creator the first member and unlocks the founder
// achievement.
func (service *ServiceCrew) CreateCrew(ctx context.Context, user *models.User, name string) (*models.Crew, error) {
	mutex := service.rs.NewMutex(LockKeyUserCrew(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrUserLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	if err := service.checkNotInCrew(ctx, user.ID); err != nil {
		return nil, err
	}

	_, err := datastore.FindCrewByName(ctx, service.postgresDB, name)
	if err == nil {
		return nil, errorx.Wrap(ErrCrewNameTaken, errorx.Invalid)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	crew := &models.Crew{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: user.ID,
		CreatedAt: time.Now(),
	}
	crew, err = datastore.CreateCrew(ctx, service.postgresDB, crew)
	if err != nil {
		return nil, err
	}

	err = service.join(ctx, user.ID, crew)
	if err != nil {
		return nil, err
	}

	// nolint:errcheck
	service.serviceAchievement.Unlock(ctx, user.ID, models.AchievementCrewFounder)

	crew.MemberCount = 1
	return crew, nil
}

func (service *ServiceCrew) JoinCrew(ctx context.Context, user *models.User, crewID string) (*models.Crew, error) {
	mutex := service.rs.NewMutex(LockKeyUserCrew(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrUserLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	if err := service.checkNotInCrew(ctx, user.ID); err != nil {
		return nil, err
	}

	crew, err := datastore.FindCrewByID(ctx, service.postgresDB, crewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("crew not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, err
	}

	err = service.join(ctx, user.ID, crew)
	if err != nil {
		return nil, err
	}

	return crew, nil
}

func (service *ServiceCrew) join(ctx context.Context, userID string, crew *models.Crew) error {
	_, err := datastore.AddCrewMember(ctx, service.postgresDB, &models.CrewMember{
		ID:       uuid.NewString(),
		CrewID:   crew.ID,
		UserID:   userID,
		JoinedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	_, err = service.serviceActivity.Append(ctx, userID, &models.JoinCrewMeta{
		CrewID:   crew.ID,
		CrewName: crew.Name,
	})
	if err != nil {
		return err
	}

	service.clearCrewCaches(ctx, crew.ID, userID)
	return nil
}

func (service *ServiceCrew) LeaveCrew(ctx context.Context, user *models.User) error {
	mutex := service.rs.NewMutex(LockKeyUserCrew(user.ID))
	if err := mutex.Lock(); err != nil {
		return errorx.Wrap(ErrUserLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	membership, err := datastore.FindCrewMembership(ctx, service.postgresDB, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return errorx.Wrap(ErrNotInCrew, errorx.Invalid)
	}
	if err != nil {
		return err
	}

	removed, err := datastore.RemoveCrewMember(ctx, service.postgresDB, membership.CrewID, user.ID)
	if err != nil {
		return err
	}
	if !removed {
		return errorx.Wrap(ErrNotInCrew, errorx.Invalid)
	}

	_, err = service.serviceActivity.Append(ctx, user.ID, &models.LeaveCrewMeta{CrewID: membership.CrewID})
	if err != nil {
		return err
	}

	service.clearCrewCaches(ctx, membership.CrewID, user.ID)
	return nil
}

func (service *ServiceCrew) ListMembers(ctx context.Context, crewID string) ([]*models.User, error) {
	return datastore.ListCrewMembers(ctx, service.readonlyPostgresDB, crewID)
}

func (service *ServiceCrew) clearCrewCaches(ctx context.Context, crewID, userID string) {
	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyCrew(crewID))
	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyUser(userID))
	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyMe(userID))
}
