package mint

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// JobStatus enumerates the lifecycle states of a mint job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"

	// StatusNotFound is the sentinel returned for unknown job ids. It is
	// never stored in the job table.
	StatusNotFound JobStatus = "not_found"
)

// terminal reports whether a job may no longer transition.
func (s JobStatus) terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobInput is the caller-supplied payload of a mint job.
type JobInput struct {
	EventID         string
	WalletAddresses []string
}

// Job is one unit of asynchronous minting work. Values handed out by
// the tracker are snapshots; mutating them does not affect stored state.
type Job struct {
	ID                   string
	EventID              string
	WalletAddresses      []string
	Status               JobStatus
	TransactionSignature string
	Error                string
	CreatedAt            time.Time
	CompletedAt          time.Time
}

func (j Job) snapshot() Job {
	j.WalletAddresses = slices.Clone(j.WalletAddresses)
	return j
}

// CompletionSource schedules the one-shot completion signal for a job.
// The timer implementation stands in for an out-of-process worker; a
// real deployment would invoke Tracker.Complete from a consumed message
// or webhook instead.
type CompletionSource interface {
	Schedule(jobID string, fn func())
}

// TimerSource completes jobs after a fixed delay.
type TimerSource struct {
	Delay time.Duration
}

func (s TimerSource) Schedule(_ string, fn func()) {
	time.AfterFunc(s.Delay, fn)
}

// TrackerConfig holds job tracker configuration.
type TrackerConfig struct {
	Logger *slog.Logger

	// Completion defaults to a TimerSource firing after CompletionDelay.
	Completion      CompletionSource
	CompletionDelay time.Duration

	// Now is the clock used for CreatedAt/CompletedAt; tests inject a
	// fake. Defaults to time.Now.
	Now func() time.Time

	// OnFinish, if set, is invoked with a snapshot of each job as it
	// reaches a terminal state. Runs while no tracker locks are held.
	OnFinish func(Job)
}

// Tracker owns the in-memory table of mint jobs. Jobs are inserted by
// Submit and mutated exactly once afterwards, by Complete or Fail.
// Completed jobs are never evicted; the table grows for the life of the
// process. That matches the upstream service and is a known limitation,
// not something this type papers over.
type Tracker struct {
	logger     *slog.Logger
	ids        *IDGenerator
	completion CompletionSource
	now        func() time.Time
	onFinish   func(Job)

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewTracker creates a job tracker.
func NewTracker(cfg *TrackerConfig) *Tracker {
	completion := cfg.Completion
	if completion == nil {
		completion = TimerSource{Delay: cfg.CompletionDelay}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Tracker{
		logger:     cfg.Logger,
		ids:        NewIDGenerator(),
		completion: completion,
		now:        now,
		onFinish:   cfg.OnFinish,
		jobs:       make(map[string]*Job),
	}
}

// Submit records a new queued job, schedules its deferred completion,
// and returns the created record immediately. It never blocks on the
// completion path.
func (t *Tracker) Submit(input JobInput) Job {
	job := &Job{
		ID:              t.ids.Next("mint"),
		EventID:         input.EventID,
		WalletAddresses: slices.Clone(input.WalletAddresses),
		Status:          StatusQueued,
		CreatedAt:       t.now(),
	}

	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()

	t.logger.Info("Mint job submitted",
		slog.String("job_id", job.ID),
		slog.String("event_id", job.EventID),
		slog.Int("wallet_count", len(job.WalletAddresses)),
	)

	id := job.ID
	t.completion.Schedule(id, func() {
		t.Complete(id, transactionSignature())
	})

	return job.snapshot()
}

// Status returns a snapshot of the stored job, or a record with the
// not_found sentinel status when id is unknown. Lookups never fail.
func (t *Tracker) Status(id string) Job {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{ID: id, Status: StatusNotFound}
	}
	return job.snapshot()
}

// Complete marks the job completed with the given transaction
// signature. It is the completion source's entry point and a no-op for
// unknown ids or jobs already in a terminal state.
func (t *Tracker) Complete(id, signature string) {
	t.transition(id, StatusCompleted, signature, "")
}

// Fail marks the job failed with the given reason. No-op once terminal.
func (t *Tracker) Fail(id, reason string) {
	t.transition(id, StatusFailed, "", reason)
}

func (t *Tracker) transition(id string, status JobStatus, signature, reason string) {
	t.mu.Lock()

	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		t.logger.Warn("Completion signal for unknown job",
			slog.String("job_id", id),
		)
		return
	}

	if job.Status.terminal() {
		t.mu.Unlock()
		return
	}

	job.Status = status
	job.TransactionSignature = signature
	job.Error = reason
	job.CompletedAt = t.now()
	finished := job.snapshot()
	t.mu.Unlock()

	t.logger.Info("Mint job finished",
		slog.String("job_id", id),
		slog.String("status", string(status)),
	)

	if t.onFinish != nil {
		t.onFinish(finished)
	}
}

// Len reports the number of tracked jobs.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}

// transactionSignature fabricates a hexadecimal reference in the shape
// of an on-chain transaction signature.
func transactionSignature() string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 64)
	for i := range b {
		b[i] = hexDigits[rand.IntN(len(hexDigits))]
	}
	return fmt.Sprintf("0x%s", b)
}
