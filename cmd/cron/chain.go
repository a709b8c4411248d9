package main

import (
	"context"
	"log"
	"time"

	"corepulse/internal/datastore"
	"corepulse/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// stuckTxWindow is well past the simulated confirmation delay; anything
// still pending after it lost its confirmation timer to a restart.
const stuckTxWindow = 5 * time.Minute

type StuckTxJob struct {
	container *do.Injector
}

func NewStuckTxJob(container *do.Injector) *StuckTxJob {
	return &StuckTxJob{container}
}

func (j *StuckTxJob) Start(cronRunner *cron.Cron) {
	spec := schedule(j.container, CRONJOB_TIME_STUCK_TXS, DEFAULT_TIME_STUCK_TXS)
	_, err := cronRunner.AddFunc(spec, j.run)
	log.Println("Stuck-tx cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", spec, err)
}

func (j *StuckTxJob) run() {
	ctx := context.Background()
	dbRO, err := do.InvokeNamed[*bun.DB](j.container, "db-readonly")
	if err != nil {
		log.Println(err)
		return
	}

	txs, err := datastore.ListStuckTransactions(ctx, dbRO, time.Now().Add(-stuckTxWindow))
	if err != nil {
		log.Println(err)
		return
	}
	if len(txs) == 0 {
		return
	}

	serviceChain, err := do.Invoke[*services.ServiceChain](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	if err := serviceChain.FailStuckTransactions(ctx, txs); err != nil {
		log.Println(err)
		return
	}
	log.Println("Failed stuck transactions:", len(txs))
}
