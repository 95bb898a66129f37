package main

import (
	"log"

	"github.com/hibiken/asynq"
	"olga-cuts/internal/backfill"
	"olga-cuts/internal/calendar"
	"olga-cuts/internal/config"
	"olga-cuts/internal/db"
	"olga-cuts/internal/ingest"
	"olga-cuts/internal/worker"
	"olga-cuts/internal/youtube"
	"olga-cuts/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db.InitDB(cfg.DatabaseURL, cfg.LogQueries)

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			// Days must never be ingested concurrently: dedup relies on the previous
			// day's inserts being visible.
			Concurrency: 1,
			Queues: map[string]int{
				tasks.QueueDefault:  2,
				tasks.QueueBackfill: 1,
			},
			RetryDelayFunc: worker.RetryDelay,
		},
	)

	source := youtube.NewClient(cfg.Source.BaseURL, cfg.Source.Channel, cfg.Source.Limiter())
	pipeline := ingest.NewPipeline(source)
	driver := backfill.NewDriver(calendar.Default(), pipeline)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(client, pipeline, pipeline.Cuts(), driver)

	mux.HandleFunc(tasks.TypeIngestDay, taskHandler.HandleIngestDayTask)
	mux.HandleFunc(tasks.TypeIngestYesterday, taskHandler.HandleIngestYesterdayTask)
	mux.HandleFunc(tasks.TypeBackfillStep, taskHandler.HandleBackfillStepTask)
	mux.HandleFunc(tasks.TypeRepairCuts, taskHandler.HandleRepairCutsTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
