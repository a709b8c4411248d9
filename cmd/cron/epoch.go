package main

import (
	"context"
	"log"
	"time"

	"corepulse/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
)

// EpochJob snapshots and closes expired epochs, then opens the next one.
type EpochJob struct {
	container *do.Injector
}

func NewEpochJob(container *do.Injector) *EpochJob {
	return &EpochJob{container}
}

func (j *EpochJob) Start(cronRunner *cron.Cron) {
	spec := schedule(j.container, CRONJOB_TIME_EPOCH, DEFAULT_TIME_EPOCH)
	_, err := cronRunner.AddFunc(spec, j.run)
	log.Println("Epoch cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", spec, err)
}

func (j *EpochJob) run() {
	ctx := context.Background()
	serviceEpoch, err := do.Invoke[*services.ServiceEpoch](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	if err := serviceEpoch.Rollover(ctx); err != nil {
		log.Println(err)
	}
}
