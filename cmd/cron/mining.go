package main

import (
	"context"
	"log"
	"time"

	"corepulse/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
)

// ReconcileJob settles sessions whose owner went away without stopping.
type ReconcileJob struct {
	container *do.Injector
}

func NewReconcileJob(container *do.Injector) *ReconcileJob {
	return &ReconcileJob{container}
}

func (j *ReconcileJob) Start(cronRunner *cron.Cron) {
	spec := schedule(j.container, CRONJOB_TIME_RECONCILE, DEFAULT_TIME_RECONCILE)
	_, err := cronRunner.AddFunc(spec, j.run)
	log.Println("Reconcile cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", spec, err)
}

func (j *ReconcileJob) run() {
	ctx := context.Background()
	serviceMining, err := do.Invoke[*services.ServiceMining](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	n, err := serviceMining.ReconcileAbandonedSessions(ctx)
	if err != nil {
		log.Println(err)
		return
	}
	if n > 0 {
		log.Println("Reconciled abandoned sessions:", n)
	}
}
