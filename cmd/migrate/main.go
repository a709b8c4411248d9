package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"

	"corepulse/internal"
	"corepulse/internal/datastore"
	"corepulse/internal/models"
	"corepulse/internal/services"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
			commandSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableMiningSession(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableDailyMiningLimit(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableActivity(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableCrew(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableAchievement(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableWeeklyChallenge(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableEpoch(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableNFTBoost(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableReferral(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableStreak(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableReward(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableChainTransaction(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate-config",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := []models.Config{
				{Key: services.CONFIG_BASE_MINING_RATE, Value: strconv.FormatFloat(services.DEFAULT_BASE_MINING_RATE, 'f', -1, 64)},
				{Key: services.CONFIG_DAILY_LIMIT_MINUTES, Value: strconv.Itoa(services.DEFAULT_DAILY_LIMIT_MINUTES)},
				{Key: services.CONFIG_SESSION_ABANDON_MINUTES, Value: strconv.Itoa(services.DEFAULT_SESSION_ABANDON_MINUTES)},
				{Key: services.CONFIG_EPOCH_LENGTH_DAYS, Value: strconv.Itoa(services.DEFAULT_EPOCH_LENGTH_DAYS)},
				{Key: services.CONFIG_LEADERBOARD_LIMIT, Value: strconv.Itoa(services.DEFAULT_LEADERBOARD_LIMIT)},
				{Key: services.CONFIG_LOOT_BOX_COST, Value: strconv.FormatFloat(services.DEFAULT_LOOT_BOX_COST, 'f', -1, 64)},
				{Key: services.CONFIG_STREAK_REWARD_DAYS, Value: strconv.Itoa(services.DEFAULT_STREAK_REWARD_DAYS)},
				{Key: services.CONFIG_STREAK_REWARD_AMOUNT, Value: strconv.FormatFloat(services.DEFAULT_STREAK_REWARD_AMOUNT, 'f', -1, 64)},
			}

			for _, config := range configs {
				if err := datastore.InsertConfig(ctx, db, config); err != nil {
					log.Fatal(err)
				}
			}

			fmt.Println("Config migration success")

			return nil
		},
	}
}

func commandSeed() *cli.Command {
	return &cli.Command{
		Name: "seed",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			if err := seedAchievements(ctx, db); err != nil {
				log.Fatal(err)
			}
			if err := seedEpoch(ctx, db); err != nil {
				log.Fatal(err)
			}
			if err := seedChallenges(ctx, db); err != nil {
				log.Fatal(err)
			}

			fmt.Println("Seed success")

			return nil
		},
	}
}

func seedAchievements(ctx context.Context, db *bun.DB) error {
	achievements := []*models.Achievement{
		{
			ID:          models.AchievementMiningNovice,
			Name:        "Mining Novice",
			Description: "Mine 100 $CORE all-time",
		},
		{
			ID:          models.AchievementCrewFounder,
			Name:        "Crew Founder",
			Description: "Found a mining crew",
		},
		{
			ID:          models.AchievementEarlyAdopter,
			Name:        "Early Adopter",
			Description: "Join CorePulse during the first epoch",
		},
	}

	for _, achievement := range achievements {
		if err := datastore.UpsertAchievement(ctx, db, achievement); err != nil {
			return err
		}
	}
	return nil
}

func seedEpoch(ctx context.Context, db *bun.DB) error {
	_, err := datastore.FindActiveEpoch(ctx, db)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	now := time.Now().UTC()
	_, err = datastore.CreateEpoch(ctx, db, &models.Epoch{
		StartDate: now,
		EndDate:   now.AddDate(0, 0, services.DEFAULT_EPOCH_LENGTH_DAYS),
		Status:    models.EpochStatusActive,
	})
	return err
}

func seedChallenges(ctx context.Context, db *bun.DB) error {
	now := time.Now().UTC()
	existing, err := datastore.ListActiveChallenges(ctx, db, now)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	weekStart := internal.WeekStart(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	challenges := []*models.WeeklyChallenge{
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

	for _, challenge := range challenges {
		if _, err := datastore.CreateWeeklyChallenge(ctx, db, challenge); err != nil {
			return err
		}
	}
	return nil
}

func getDb() (*bun.DB, error) {
	//nolint:errcheck
	godotenv.Load()
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
