package main

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"
	"olga-cuts/internal/backfill"
	"olga-cuts/internal/calendar"
	"olga-cuts/internal/config"
	"olga-cuts/internal/db"
	"olga-cuts/internal/ingest"
	"olga-cuts/internal/youtube"
	"olga-cuts/pkg/tasks"
)

type cutRepairer interface {
	RepairCuts(ctx context.Context, limit int) (int, error)
}

// commandContext connects to the store and the source the first time a command
// needs them. Tests preset ingester, repairer and enqueuer to stay offline.
type commandContext struct {
	once     sync.Once
	err      error
	ingester backfill.Ingester
	repairer cutRepairer
	enqueuer tasks.TaskEnqueuer
	days     *calendar.DayIndex
	closers  []func() error
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		if c.ingester != nil {
			return
		}
		cfg, err := config.Load()
		if err != nil {
			c.err = err
			return
		}
		db.InitDB(cfg.DatabaseURL, cfg.LogQueries)

		source := youtube.NewClient(cfg.Source.BaseURL, cfg.Source.Channel, cfg.Source.Limiter())
		pipeline := ingest.NewPipeline(source)
		c.ingester = pipeline
		c.repairer = pipeline.Cuts()
	})
	return c.err
}

func (c *commandContext) dayIndex() *calendar.DayIndex {
	if c.days == nil {
		c.days = calendar.Default()
	}
	return c.days
}

func (c *commandContext) driver() (*backfill.Driver, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return backfill.NewDriver(c.dayIndex(), c.ingester), nil
}

// queue connects to the task queue the worker consumes.
func (c *commandContext) queue() (tasks.TaskEnqueuer, error) {
	if c.enqueuer != nil {
		return c.enqueuer, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	c.enqueuer = client
	c.closers = append(c.closers, client.Close)
	return client, nil
}

func (c *commandContext) close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
}
