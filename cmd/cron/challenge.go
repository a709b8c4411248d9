package main

import (
	"context"
	"log"
	"time"

	"corepulse/internal"
	"corepulse/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
)

// ChallengeJob seeds the weekly challenge rotation at the start of each week.
type ChallengeJob struct {
	container *do.Injector
}

func NewChallengeJob(container *do.Injector) *ChallengeJob {
	return &ChallengeJob{container}
}

func (j *ChallengeJob) Start(cronRunner *cron.Cron) {
	spec := schedule(j.container, CRONJOB_TIME_CHALLENGES, DEFAULT_TIME_CHALLENGES)
	_, err := cronRunner.AddFunc(spec, j.run)
	log.Println("Challenge cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", spec, err)

	// seed the current week on boot so a fresh deploy is never empty
	j.run()
}

func (j *ChallengeJob) run() {
	ctx := context.Background()
	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	weekStart := internal.WeekStart(time.Now().UTC())
	if err := serviceChallenge.SeedWeeklyChallenges(ctx, weekStart); err != nil {
		log.Println(err)
	}
}
