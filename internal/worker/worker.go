// Package worker runs periodic maintenance jobs.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs each job on its own ticker until the context ends.
type Scheduler struct {
	jobs []Job
	// ErrSkip is treated as a quiet skip rather than a failure.
	ErrSkip error
}

func NewScheduler(skip error, jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, ErrSkip: skip}
}

func (s *Scheduler) Add(j Job) {
	s.jobs = append(s.jobs, j)
}

// Run blocks until ctx is done and every job loop has returned.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, j := range s.jobs {
		if j.Interval <= 0 || j.Run == nil {
			continue
		}
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			s.loop(ctx, j)
		}(j)
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	l := logging.FromContext(ctx).With("job", j.Name)
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Debug("job_stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx, l, j)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, l *slog.Logger, j Job) {
	start := time.Now()
	err := j.Run(logging.IntoContext(ctx, l))
	switch {
	case err == nil:
		l.Debug("job_done", "duration", time.Since(start))
	case s.ErrSkip != nil && errors.Is(err, s.ErrSkip):
		l.Info("job_skipped", "reason", err.Error())
	case ctx.Err() != nil:
	default:
		l.Error("job_error", "error", err)
	}
}
