package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/devagency-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs queued jobs on a fixed pool of goroutines, fire-and-forget
// jobs under a concurrency cap, and named recurring jobs.
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int

	mu        sync.RWMutex
	closed    bool
	stats     WorkerStats
	schedules map[string]*ScheduleStatus
	closeOnce sync.Once
}

// WorkerStats holds statistics about the worker. CompletedJobs counts every
// finished job; FailedJobs is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int              `json:"active_jobs"`
	CompletedJobs int64            `json:"completed_jobs"`
	FailedJobs    int64            `json:"failed_jobs"`
	QueueLength   int              `json:"queue_length"`
	MaxConcurrent int              `json:"max_concurrent"`
	Schedules     []ScheduleStatus `json:"schedules"`
}

// ScheduleStatus describes one recurring job
type ScheduleStatus struct {
	Name      string     `json:"name"`
	Interval  string     `json:"interval"`
	Runs      int64      `json:"runs"`
	LastRunAt *time.Time `json:"last_run_at"`
	LastError string     `json:"last_error,omitempty"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		schedules:     make(map[string]*ScheduleStatus),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to the pool queue. Jobs submitted after Shutdown are dropped.
func (w *Worker) Enqueue(job Job) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		logger.Warn("[Worker] Shut down, dropping job")
		return
	}

	select {
	case w.queue <- job:
		w.mu.RUnlock()
	default:
		w.mu.RUnlock()
		logger.Warn("[Worker] Queue full, running job synchronously")
		w.run("Worker", job)
	}
}

// EnqueueAsync runs a job in a new goroutine, bounded by a semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		logger.Warn("[Worker] Shut down, dropping async job")
		return
	}
	w.wg.Add(1)
	w.mu.RUnlock()

	go func() {
		defer w.wg.Done()

		select {
		case w.asyncSem <- struct{}{}:
		case <-w.ctx.Done():
			return
		}
		defer func() { <-w.asyncSem }()

		w.run("Async", job)
	}()
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(fmt.Sprintf("Worker %d", workerID), job)
		}
	}
}

// ScheduleEvery runs a named job at fixed intervals. The first run happens after the interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, false, job)
}

// ScheduleEveryImmediate runs a named job once at startup, then at fixed intervals
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, true, job)
}

func (w *Worker) schedule(name string, interval time.Duration, immediate bool, job Job) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	status := &ScheduleStatus{Name: name, Interval: interval.String()}
	w.schedules[name] = status
	w.wg.Add(1)
	w.mu.Unlock()

	tracked := func(ctx context.Context) error {
		err := job(ctx)
		now := time.Now()

		w.mu.Lock()
		status.Runs++
		status.LastRunAt = &now
		status.LastError = ""
		if err != nil {
			status.LastError = err.Error()
		}
		w.mu.Unlock()
		return err
	}

	go func() {
		defer w.wg.Done()
		if immediate {
			w.run(name, tracked)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(name, tracked)
			}
		}
	}()
}

// run executes a job with stats tracking and panic recovery
func (w *Worker) run(label string, job Job) {
	w.trackJobStart()
	start := time.Now()
	failed := false
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panic", "job", label, "panic", fmt.Sprint(r))
			failed = true
		}
		w.trackJobEnd(failed)
	}()

	if err := job(w.ctx); err != nil {
		logger.Error("Job failed", "job", label, "error", err)
		failed = true
		return
	}
	logger.Debug("Job completed", "job", label, "elapsed", time.Since(start))
}

// Shutdown stops accepting work, cancels running jobs and waits for them to return
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		w.cancel()
		close(w.queue)
	})
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	stats.Schedules = make([]ScheduleStatus, 0, len(w.schedules))
	for _, s := range w.schedules {
		stats.Schedules = append(stats.Schedules, *s)
	}
	return stats
}

func (w *Worker) trackJobStart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd(failed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
	if failed {
		w.stats.FailedJobs++
	}
}
