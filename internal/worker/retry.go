package worker

import (
	"log"
	"time"

	"github.com/hibiken/asynq"
)

const (
	firstRetryDelay = 5 * time.Minute
	maxRetryDelay   = 24 * time.Hour
)

// RetryDelay backs off exponentially: 5min, 10min, 20min, ... capped at a day.
func RetryDelay(n int, err error, task *asynq.Task) time.Duration {
	delay := firstRetryDelay
	for i := 0; i < n; i++ {
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
			break
		}
	}

	log.Printf("Task %s failed %d times, retrying in %v: %v", task.Type(), n+1, delay, err)
	return delay
}
