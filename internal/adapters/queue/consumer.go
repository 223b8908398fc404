package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eventmanager/internal/domain"
)

// errorBackoff is the pause after a failed BLPOP.
const errorBackoff = time.Second

// NotificationHandler processes one courtesy notification.
type NotificationHandler func(ctx context.Context, n *domain.CourtesyGrantedNotification) error

// Consumer drains a Queue and hands each courtesy notification to a handler.
type Consumer struct {
	queue   *Queue
	handler NotificationHandler
	logger  *slog.Logger
}

func NewConsumer(q *Queue, handler NotificationHandler, logger *slog.Logger) *Consumer {
	return &Consumer{queue: q, handler: handler, logger: logger}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("notification consumer started", "queue", c.queue.Name())
	for {
		if ctx.Err() != nil {
			c.logger.Info("notification consumer stopped")
			return
		}
		job, err := c.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.Error("dequeue failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(errorBackoff):
			}
			continue
		}
		if job == nil {
			continue
		}
		if err := c.Process(ctx, job); err != nil {
			c.logger.Warn("job failed", "jobID", job.ID, "attempt", job.Attempt, "error", err)
			if err := c.queue.Retry(ctx, job); err != nil {
				c.logger.Error("job retry failed", "jobID", job.ID, "error", err)
			}
		}
	}
}

// Process decodes and handles a single job. Unknown job types are dropped.
func (c *Consumer) Process(ctx context.Context, job *Job) error {
	if job.Type != JobTypeCourtesyGranted {
		c.logger.Warn("unknown job type dropped", "jobID", job.ID, "type", job.Type)
		return nil
	}
	var n domain.CourtesyGrantedNotification
	if err := json.Unmarshal(job.Payload, &n); err != nil {
		// A payload that cannot be decoded will never succeed.
		c.logger.Error("invalid notification payload dropped", "jobID", job.ID, "error", err)
		return nil
	}
	if err := c.handler(ctx, &n); err != nil {
		return fmt.Errorf("handle courtesy %s: %w", n.CourtesyID, err)
	}
	return nil
}
