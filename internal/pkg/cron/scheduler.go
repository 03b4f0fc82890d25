package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler fires each registered job on its own interval. A job never
// overlaps itself: the next tick is armed only after the current run
// returns.
type Scheduler struct {
	log    *slog.Logger
	mu     sync.Mutex
	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{log: log}
}

func (s *Scheduler) AddJob(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	s.log.Info("cron job registered", "job", job.Name, "interval", job.Interval)
}

// Start launches one goroutine per registered job. Every job runs once
// immediately, then on each interval tick until Stop is called.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.log.Info("cron scheduler started", "jobs", len(s.jobs))
}

// Stop cancels all jobs and blocks until in-flight runs return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.log.Info("cron scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.fire(ctx, job)
			timer.Reset(job.Interval)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, job Job) {
	started := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Error("cron job failed", "job", job.Name, "error", err, "elapsed", time.Since(started))
		return
	}
	s.log.Debug("cron job done", "job", job.Name, "elapsed", time.Since(started))
}

// RunOnce executes every registered job a single time, in registration
// order, with the given context.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.fire(ctx, job)
	}
}
