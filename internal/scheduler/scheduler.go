package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job is one recurring unit of work.
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Runner drives jobs on their own tickers, with an immediate first run.
// Runs are serialized across jobs: the pipelines share the action log and the
// broker account, and nothing downstream expects to race itself.
type Runner struct {
	mu   sync.Mutex
	jobs []Job
}

func NewRunner(jobs ...Job) *Runner {
	return &Runner{jobs: jobs}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range r.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			r.runJob(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (r *Runner) runJob(ctx context.Context, job Job) {
	r.execute(ctx, job)

	ticker := time.NewTicker(job.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Printf("Job %s failed after %s: %v", job.Name, time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("Job %s completed in %s, next run in %s", job.Name, time.Since(start).Round(time.Millisecond), job.Every)
}

// FrequencyDuration maps a configured update frequency to a run interval.
// Unknown values fall back to weekly.
func FrequencyDuration(frequency string) time.Duration {
	switch frequency {
	case "hourly":
		return time.Hour
	case "daily":
		return 24 * time.Hour
	case "weekly":
		return 7 * 24 * time.Hour
	case "monthly":
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}
