package main

import (
	"log"
	"net/http"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"
	"olga-cuts/internal/backfill"
	"olga-cuts/internal/calendar"
	"olga-cuts/internal/config"
	"olga-cuts/internal/db"
	"olga-cuts/internal/handlers"
	"olga-cuts/internal/ingest"
	"olga-cuts/internal/middleware"
	"olga-cuts/internal/youtube"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db.InitDB(cfg.DatabaseURL, cfg.LogQueries)
	if err := db.Migrate(); err != nil {
		log.Fatal(err)
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	source := youtube.NewClient(cfg.Source.BaseURL, cfg.Source.Channel, cfg.Source.Limiter())
	pipeline := ingest.NewPipeline(source)
	driver := backfill.NewDriver(calendar.Default(), pipeline)

	h := handlers.New(pipeline, driver, client, cfg.BaseURL, source.VideoURL)
	// One ingestion per client every 10 seconds, with a small burst for retries.
	limiter := middleware.NewRateLimiterMiddleware(rate.Limit(0.1), 3)

	log.Printf("Starting server on :%s (commit: %s)\n", cfg.Port, CommitSHA)
	if err := http.ListenAndServe(":"+cfg.Port, h.Router(limiter)); err != nil {
		log.Fatal(err)
	}
}
