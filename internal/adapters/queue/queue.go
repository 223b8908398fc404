package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultQueue is the Redis list key for courtesy notification jobs.
	DefaultQueue = "queue:courtesy_notifications"
	// DeadLetterSuffix is appended to the queue name for jobs that exhausted their retries.
	DeadLetterSuffix = ":dlq"
	// MaxRetries is the number of attempts before a job is moved to the dead-letter list.
	MaxRetries = 3
	// pollTimeout bounds each BLPOP so Run notices cancellation.
	pollTimeout = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const JobTypeCourtesyGranted JobType = "courtesy_granted"

// Job is the envelope stored in Redis.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// listClient is the subset of *redis.Client the queue needs.
type listClient interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Queue enqueues and dequeues jobs on a Redis list.
type Queue struct {
	client listClient
	name   string
	logger *slog.Logger
	now    func() time.Time
}

// NewQueue returns a queue on the given list key. An empty name uses DefaultQueue.
func NewQueue(client *redis.Client, name string, logger *slog.Logger) *Queue {
	return newQueue(client, name, logger)
}

func newQueue(client listClient, name string, logger *slog.Logger) *Queue {
	if name == "" {
		name = DefaultQueue
	}
	return &Queue{client: client, name: name, logger: logger, now: time.Now}
}

// Name returns the list key.
func (q *Queue) Name() string { return q.name }

// DeadLetterName returns the list key failed jobs end up in.
func (q *Queue) DeadLetterName() string { return q.name + DeadLetterSuffix }

// Enqueue wraps payload in a new Job and pushes it.
func (q *Queue) Enqueue(ctx context.Context, jobType JobType, payload any) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	job := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   body,
		Attempt:   0,
		CreatedAt: q.now(),
	}
	if err := q.push(ctx, q.name, job); err != nil {
		return nil, err
	}
	q.logger.DebugContext(ctx, "enqueued job", "jobID", job.ID, "type", job.Type, "queue", q.name)
	return job, nil
}

// Dequeue waits up to the poll timeout for a job. A nil job with a nil error means
// nothing arrived or the entry was unreadable.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, pollTimeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.WarnContext(ctx, "invalid job payload", "raw", result[1], "error", err)
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues job with its attempt incremented, or moves it to the
// dead-letter list once MaxRetries is reached.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	if job.Attempt >= MaxRetries {
		if err := q.push(ctx, q.DeadLetterName(), job); err != nil {
			q.logger.ErrorContext(ctx, "dlq push failed", "jobID", job.ID, "error", err)
			return err
		}
		q.logger.WarnContext(ctx, "job moved to DLQ", "jobID", job.ID, "attempt", job.Attempt)
		return nil
	}
	if err := q.push(ctx, q.name, job); err != nil {
		return err
	}
	q.logger.InfoContext(ctx, "job retried", "jobID", job.ID, "attempt", job.Attempt)
	return nil
}

func (q *Queue) push(ctx context.Context, key string, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	return nil
}
