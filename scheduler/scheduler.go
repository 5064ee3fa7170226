// Package scheduler runs named background jobs on fixed intervals.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFn is one run of a job. ctx is cancelled when the scheduler stops.
type JobFn func(ctx context.Context) error

// Scheduler manages periodic jobs.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]context.CancelFunc
	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	ctx, stop := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]context.CancelFunc),
		ctx:    ctx,
		stop:   stop,
		logger: logger,
	}
}

// Every runs fn every interval until the scheduler stops.
// A job registered under an existing name replaces it.
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.jobs[name]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.jobs[name] = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(ctx, name, fn)
			case <-ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler job registered", zap.String("name", name), zap.Duration("interval", interval))
}

func (s *Scheduler) run(ctx context.Context, name string, fn JobFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler job panicked",
				zap.String("job", name),
				zap.Any("recover", r))
		}
	}()
	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Warn("scheduler job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Debug("scheduler job done", zap.String("job", name), zap.Duration("took", time.Since(start)))
}

// Remove stops the named job. A run in progress sees its context cancelled.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.jobs[name]; ok {
		cancel()
		delete(s.jobs, name)
	}
}

// Stop cancels every job and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.stop()
	s.wg.Wait()
}

// Jobs returns the registered job names, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
