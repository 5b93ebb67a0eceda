package review

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/openlore/lorebase/internal/moderation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Task status constants
const (
	TaskStatusQueued    = "queued"
	TaskStatusRunning   = "running"
	TaskStatusSucceeded = "succeeded"
	TaskStatusFailed    = "failed"
)

// RetryPolicy caps how often one review task is attempted. Only
// transient classifier failures are retried; terminal outcomes and
// everything else fail the task on the first occurrence.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 60 * time.Second}
}

// TaskHandle tracks one asynchronous review task.
type TaskHandle struct {
	ID          string
	ContentID   primitive.ObjectID
	ContentType string

	done    chan struct{}
	started chan struct{}

	mu      sync.Mutex
	outcome *Outcome
	err     error
}

func newTaskHandle(contentID primitive.ObjectID, contentType string) *TaskHandle {
	return &TaskHandle{
		ID:          uuid.NewString(),
		ContentID:   contentID,
		ContentType: contentType,
		done:        make(chan struct{}),
		started:     make(chan struct{}),
	}
}

// Done is closed when the task reaches a final state.
func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task finishes or ctx is cancelled.
func (h *TaskHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result returns the outcome and error once the task has finished.
func (h *TaskHandle) Result() (*Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome, h.err
}

// Failed reports whether the task finished with an error.
func (h *TaskHandle) Failed() bool {
	select {
	case <-h.done:
	default:
		return false
	}
	_, err := h.Result()
	return err != nil
}

// Status reports the task's current lifecycle state.
func (h *TaskHandle) Status() string {
	select {
	case <-h.done:
		if h.Failed() {
			return TaskStatusFailed
		}
		return TaskStatusSucceeded
	default:
	}
	select {
	case <-h.started:
		return TaskStatusRunning
	default:
		return TaskStatusQueued
	}
}

func (h *TaskHandle) finish(outcome *Outcome, err error) {
	h.mu.Lock()
	h.outcome = outcome
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

// Runner executes review tasks on a bounded worker pool. Tasks for
// different content items run concurrently with no ordering guarantee;
// the per-item pending guard lives in the orchestrator, not here.
type Runner struct {
	orchestrator *Orchestrator
	sem          *semaphore.Weighted
	policy       RetryPolicy
	log          *zap.Logger

	mu    sync.RWMutex
	tasks map[string]*TaskHandle

	wg sync.WaitGroup
}

func NewRunner(orchestrator *Orchestrator, workers int, policy RetryPolicy, log *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		orchestrator: orchestrator,
		sem:          semaphore.NewWeighted(int64(workers)),
		policy:       policy,
		log:          log,
		tasks:        make(map[string]*TaskHandle),
	}
}

// Submit queues one review task and returns immediately.
func (r *Runner) Submit(contentID primitive.ObjectID, contentType string) *TaskHandle {
	handle := newTaskHandle(contentID, contentType)

	r.mu.Lock()
	r.tasks[handle.ID] = handle
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if err := r.sem.Acquire(context.Background(), 1); err != nil {
			handle.finish(nil, err)
			return
		}
		defer r.sem.Release(1)

		close(handle.started)
		outcome, err := r.run(handle)
		handle.finish(outcome, err)
	}()

	return handle
}

// SubmitBatch fans a list of content IDs out into independent tasks.
// There is no coordination between them: each task evaluates its own
// pending guard and succeeds or fails alone.
func (r *Runner) SubmitBatch(contentIDs []primitive.ObjectID, contentType string) []*TaskHandle {
	handles := make([]*TaskHandle, 0, len(contentIDs))
	for _, id := range contentIDs {
		handles = append(handles, r.Submit(id, contentType))
	}
	return handles
}

// Task looks up a previously submitted task by its ID.
func (r *Runner) Task(id string) (*TaskHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.tasks[id]
	return handle, ok
}

// Wait blocks until every submitted task has finished. Used for
// graceful shutdown.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(handle *TaskHandle) (*Outcome, error) {
	ctx := context.Background()

	var outcome *Outcome
	attempt := 0

	operation := func() error {
		attempt++
		result, err := r.orchestrator.ExecuteReview(ctx, handle.ContentID, handle.ContentType)
		if err != nil {
			if moderation.IsTransient(err) {
				r.log.Warn("review attempt failed, will retry",
					zap.String("taskId", handle.ID),
					zap.String("contentId", handle.ContentID.Hex()),
					zap.Int("attempt", attempt),
					zap.Error(err))
				return err
			}
			return backoff.Permanent(err)
		}
		outcome = result
		return nil
	}

	bo := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(r.policy.Delay),
		uint64(r.policy.MaxAttempts-1),
	)
	if err := backoff.Retry(operation, bo); err != nil {
		r.log.Error("review task failed",
			zap.String("taskId", handle.ID),
			zap.String("contentId", handle.ContentID.Hex()),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return nil, err
	}

	return outcome, nil
}
