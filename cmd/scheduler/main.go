package main

import (
	"log"

	"github.com/hibiken/asynq"
	"olga-cuts/internal/config"
	"olga-cuts/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{},
	)

	ingestTask, err := tasks.NewIngestYesterdayTask()
	if err != nil {
		log.Fatalf("could not create task: %v", err)
	}
	if _, err := scheduler.Register(cfg.IngestSchedule, ingestTask); err != nil {
		log.Fatalf("could not register task: %v", err)
	}

	repairTask, err := tasks.NewRepairCutsTask(tasks.DefaultRepairLimit)
	if err != nil {
		log.Fatalf("could not create task: %v", err)
	}
	// Run every six hours
	if _, err := scheduler.Register("@every 6h", repairTask); err != nil {
		log.Fatalf("could not register task: %v", err)
	}

	log.Printf("Scheduler starting (commit: %s)", CommitSHA)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("could not run scheduler: %v", err)
	}
}
