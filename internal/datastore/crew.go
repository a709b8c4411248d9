package datastore

import (
	"context"

	"corepulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableCrew(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Crew)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.CrewMember)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.CrewMember)(nil)).Index("index_crew_members_crew_id").IfNotExists().Column("crew_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateCrew(ctx context.Context, db *bun.DB, crew *models.Crew) (*models.Crew, error) {
	_, err := db.NewInsert().Model(crew).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return crew, nil
}

func FindCrewByID(ctx context.Context, db *bun.DB, crewID string) (*models.Crew, error) {
	var crew models.Crew
	err := db.NewSelect().Model(&crew).Where("id = ?", crewID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &crew, nil
}

func FindCrewByName(ctx context.Context, db *bun.DB, name string) (*models.Crew, error) {
	var crew models.Crew
	err := db.NewSelect().Model(&crew).Where("LOWER(name) = LOWER(?)", name).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &crew, nil
}

// ListCrews annotates each crew with its member count and pooled mined
// total.
func ListCrews(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.Crew, error) {
	var crews []*models.Crew
	err := db.NewSelect().Model(&crews).
		ColumnExpr("crew.*").
		ColumnExpr("COUNT(cm.id) AS member_count").
		ColumnExpr("COALESCE(SUM(u.total_mined), 0) AS total_mined").
		Join("LEFT JOIN crew_members cm ON cm.crew_id = crew.id").
		Join("LEFT JOIN users u ON u.id = cm.user_id").
		Group("crew.id").
		Order("total_mined DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return crews, nil
}

func FindCrewMembership(ctx context.Context, db *bun.DB, userID string) (*models.CrewMember, error) {
	var member models.CrewMember
	err := db.NewSelect().Model(&member).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddCrewMember relies on the unique user_id column: a user already in a
// crew cannot join a second one.
func AddCrewMember(ctx context.Context, db *bun.DB, member *models.CrewMember) (*models.CrewMember, error) {
	_, err := db.NewInsert().Model(member).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return member, nil
}

func RemoveCrewMember(ctx context.Context, db *bun.DB, crewID, userID string) (bool, error) {
	res, err := db.NewDelete().
		Model((*models.CrewMember)(nil)).
		Where("crew_id = ?", crewID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func ListCrewMembers(ctx context.Context, db *bun.DB, crewID string) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).
		Join("JOIN crew_members cm ON cm.user_id = \"user\".id").
		Where("cm.crew_id = ?", crewID).
		Order("\"user\".total_mined DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func CountCrewMembers(ctx context.Context, db *bun.DB, crewID string) (int, error) {
	count, err := db.NewSelect().Model((*models.CrewMember)(nil)).Where("crew_id = ?", crewID).Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}
