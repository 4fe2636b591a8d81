// Package queue runs analysis jobs out-of-band from the requests that
// trigger them, on a Redis-backed at-least-once queue. A single ready
// list keeps all jobs in one priority tier; a sorted set holds delayed
// and retrying jobs until they come due. Claimed jobs are parked on a
// processing list until their outcome is recorded, so a crash mid-job
// redelivers instead of losing work.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storynest/storynest/internal/config"
	"github.com/storynest/storynest/internal/core/model"
	"github.com/storynest/storynest/internal/metrics"
)

const (
	readyKey      = "storynest:analysis:ready"
	processingKey = "storynest:analysis:processing"
	delayedKey    = "storynest:analysis:delayed"
	eventsChannel = "storynest:analysis:events"
)

// Handler executes one job. A returned error triggers the retry policy;
// at-least-once delivery means handlers must be idempotent.
type Handler func(ctx context.Context, job *model.AnalysisJob) error

// Queue is an explicit lifecycle object with injected dependencies.
// Construct once at process start; no ambient global state.
type Queue struct {
	rdb     *redis.Client
	cfg     config.QueueConfig
	handler Handler
	log     *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func New(rdb *redis.Client, cfg config.QueueConfig, handler Handler) *Queue {
	return &Queue{
		rdb:     rdb,
		cfg:     cfg,
		handler: handler,
		log:     slog.With("component", "queue"),
	}
}

// Enqueue schedules a job. The configured artificial delay batches
// near-simultaneous edits of the same story into later, fewer runs.
// Callers do not wait for execution; this returns once the job is
// durably queued.
func (q *Queue) Enqueue(ctx context.Context, job *model.AnalysisJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Attempt == 0 {
		job.Attempt = 1
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	delay := q.cfg.EnqueueDelay()
	if delay > 0 {
		err = q.rdb.ZAdd(ctx, delayedKey, redis.Z{
			Score:  float64(time.Now().Add(delay).UnixMilli()),
			Member: string(payload),
		}).Err()
	} else {
		err = q.rdb.LPush(ctx, readyKey, payload).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue job for story %s: %w", job.StoryID, err)
	}

	metrics.JobsEnqueued.Inc()
	q.log.Info("job enqueued", "job_id", job.ID, "story_id", job.StoryID, "delay", delay)
	return nil
}

// Start launches the worker pool. Jobs for different stories may run
// concurrently and in any order; same-story jobs are not serialized
// (the analysis upsert is last-write-wins).
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true

	ctx, q.cancel = context.WithCancel(ctx)
	q.recoverStale(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.log.Info("queue started", "workers", q.cfg.Workers)
}

// Shutdown stops accepting work and waits for in-flight jobs, up to
// ctx's deadline.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.cancel != nil {
		q.cancel()
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue shutdown timed out: %w", ctx.Err())
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()

	ticker := time.NewTicker(q.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.promoteDue(ctx)
			q.drainReady(ctx)
		}
	}
}

// promoteDue moves delayed jobs whose time has come onto the ready
// list. ZRem decides the winner when several workers see the same
// member, so each job is promoted exactly once.
func (q *Queue) promoteDue(ctx context.Context) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	members, err := q.rdb.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		q.queueError(ctx, fmt.Errorf("failed to read delayed jobs: %w", err))
		return
	}

	for _, member := range members {
		removed, err := q.rdb.ZRem(ctx, delayedKey, member).Result()
		if err != nil {
			q.queueError(ctx, fmt.Errorf("failed to promote job: %w", err))
			continue
		}
		if removed == 0 {
			continue // another worker promoted it first
		}
		if err := q.rdb.LPush(ctx, readyKey, member).Err(); err != nil {
			q.queueError(ctx, fmt.Errorf("failed to push promoted job: %w", err))
		}
	}
}

// recoverStale returns jobs left on the processing list by a previous
// run to the ready list. Runs before any worker starts, so nothing on
// the list is legitimately in flight.
func (q *Queue) recoverStale(ctx context.Context) {
	for {
		_, err := q.rdb.LMove(ctx, processingKey, readyKey, "RIGHT", "LEFT").Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			q.queueError(ctx, fmt.Errorf("failed to recover stale job: %w", err))
			return
		}
		q.log.Warn("requeued stale job from previous run")
	}
}

func (q *Queue) drainReady(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		// The claim parks the payload on the processing list; a crash
		// before the outcome is recorded leaves a copy to recover.
		payload, err := q.rdb.LMove(ctx, readyKey, processingKey, "RIGHT", "LEFT").Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			q.queueError(ctx, fmt.Errorf("failed to claim job: %w", err))
			return
		}

		var job model.AnalysisJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			q.ack(ctx, payload)
			q.queueError(ctx, fmt.Errorf("failed to decode job payload: %w", err))
			continue
		}
		q.dispatch(ctx, &job, payload)
	}
}

// ack drops a claimed payload from the processing list once its outcome
// is durable elsewhere. Shutdown cancels the worker context while a
// handler may still be in flight, so bookkeeping ignores cancellation.
func (q *Queue) ack(ctx context.Context, payload string) {
	bctx := context.WithoutCancel(ctx)
	if err := q.rdb.LRem(bctx, processingKey, 1, payload).Err(); err != nil {
		q.queueError(bctx, fmt.Errorf("failed to ack job: %w", err))
	}
}

func (q *Queue) dispatch(ctx context.Context, job *model.AnalysisJob, payload string) {
	err := q.handler(ctx, job)
	if err == nil {
		q.ack(ctx, payload)
		metrics.JobsCompleted.Inc()
		q.publishEvent(ctx, Event{Type: EventCompleted, JobID: job.ID, StoryID: job.StoryID, Attempt: job.Attempt})
		q.log.Info("job completed", "job_id", job.ID, "story_id", job.StoryID, "attempt", job.Attempt)
		return
	}

	if job.Attempt < q.cfg.MaxAttempts {
		backoff := q.cfg.Backoff() << (job.Attempt - 1)
		q.log.Warn("job failed, scheduling retry",
			"job_id", job.ID, "story_id", job.StoryID,
			"attempt", job.Attempt, "backoff", backoff, "error", err)

		job.Attempt++
		retry, marshalErr := json.Marshal(job)
		if marshalErr != nil {
			q.ack(ctx, payload)
			q.queueError(ctx, fmt.Errorf("failed to encode retry payload: %w", marshalErr))
			return
		}
		// The worker context is canceled during shutdown; the retry
		// must still land, then the claim can be released.
		bctx := context.WithoutCancel(ctx)
		if zerr := q.rdb.ZAdd(bctx, delayedKey, redis.Z{
			Score:  float64(time.Now().Add(backoff).UnixMilli()),
			Member: string(retry),
		}).Err(); zerr != nil {
			// Left on the processing list; the next run recovers it.
			q.queueError(bctx, fmt.Errorf("failed to schedule retry: %w", zerr))
			return
		}
		q.ack(ctx, payload)
		metrics.JobsRetried.Inc()
		return
	}

	q.ack(ctx, payload)
	metrics.JobsFailed.Inc()
	q.publishEvent(ctx, Event{Type: EventFailed, JobID: job.ID, StoryID: job.StoryID, Attempt: job.Attempt, Error: err.Error()})
	q.log.Error("job failed terminally",
		"job_id", job.ID, "story_id", job.StoryID,
		"attempts", job.Attempt, "error", err)
}

func (q *Queue) queueError(ctx context.Context, err error) {
	metrics.QueueErrors.Inc()
	q.publishEvent(ctx, Event{Type: EventError, Error: err.Error()})
	q.log.Error("queue error", "error", err)
}
