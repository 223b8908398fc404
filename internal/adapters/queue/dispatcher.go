package queue

import (
	"context"
	"log/slog"

	"eventmanager/internal/domain"
)

type redisDispatcher struct {
	queue *Queue
}

// NewDispatcher returns a NotificationDispatcher that enqueues onto q.
func NewDispatcher(q *Queue) domain.NotificationDispatcher {
	return &redisDispatcher{queue: q}
}

func (d *redisDispatcher) Dispatch(ctx context.Context, n *domain.CourtesyGrantedNotification) error {
	_, err := d.queue.Enqueue(ctx, JobTypeCourtesyGranted, n)
	return err
}

type noopDispatcher struct {
	logger *slog.Logger
}

// NewNoopDispatcher returns a dispatcher that only logs. Used when Redis is not configured.
func NewNoopDispatcher(logger *slog.Logger) domain.NotificationDispatcher {
	return &noopDispatcher{logger: logger}
}

func (d *noopDispatcher) Dispatch(ctx context.Context, n *domain.CourtesyGrantedNotification) error {
	d.logger.DebugContext(ctx, "courtesy notification dropped (no queue)", "courtesyID", n.CourtesyID)
	return nil
}
