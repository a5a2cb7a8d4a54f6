// Package scheduler runs the service's periodic maintenance jobs on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopping-cart-api/internal/logging"
)

const defaultJobTimeout = 5 * time.Minute

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler manages job scheduling and execution
type Scheduler struct {
	cron     *cron.Cron
	entryMap map[string]cron.EntryID
	mu       sync.RWMutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	log      logging.Logger
}

// NewScheduler creates a new scheduler. A run of a job is skipped while the
// previous run of the same job is still in progress.
func NewScheduler(log logging.Logger) *Scheduler {
	log = log.With("component", "scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		entryMap: make(map[string]cron.EntryID),
		log:      log,
	}
}

// Add registers job. A job with an empty schedule is disabled and not
// registered.
func (s *Scheduler) Add(job Job) error {
	if job.Schedule == "" {
		s.log.Info(context.Background(), "job disabled", "job", job.Name)
		return nil
	}
	if job.Timeout <= 0 {
		job.Timeout = defaultJobTimeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entryMap[job.Name]; ok {
		return fmt.Errorf("job %q already scheduled", job.Name)
	}

	entryID, err := s.cron.AddFunc(normalizeSchedule(job.Schedule), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression '%s' for job %s: %w", job.Schedule, job.Name, err)
	}

	s.entryMap[job.Name] = entryID
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.running = true

	s.log.Info(ctx, "scheduler started", "jobs", len(s.entryMap))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()

	s.log.Info(context.Background(), "scheduler stopped")
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetNextRun returns the next run time for a job
func (s *Scheduler) GetNextRun(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entryID, ok := s.entryMap[name]; ok {
		entry := s.cron.Entry(entryID)
		if !entry.Next.IsZero() {
			return &entry.Next
		}
	}
	return nil
}

// GetScheduledJobs returns the names of all registered jobs
func (s *Scheduler) GetScheduledJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entryMap))
	for name := range s.entryMap {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) runJob(job Job) {
	s.mu.RLock()
	base := s.ctx
	s.mu.RUnlock()
	if base == nil {
		base = context.Background()
	}

	ctx, cancel := context.WithTimeout(base, job.Timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Error(ctx, "job failed", "job", job.Name, "error", err, "duration", time.Since(start).String())
		return
	}
	s.log.Debug(ctx, "job finished", "job", job.Name, "duration", time.Since(start).String())
}

// normalizeSchedule expands the supported shortcuts and promotes 5-field
// specs to the 6-field, seconds-first form.
func normalizeSchedule(schedule string) string {
	switch schedule {
	case "@hourly":
		return "0 0 * * * *"
	case "@daily":
		return "0 0 0 * * *"
	case "@weekly":
		return "0 0 0 * * 0"
	case "@monthly":
		return "0 0 0 1 * *"
	}

	if len(splitCronParts(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

func splitCronParts(schedule string) []string {
	var parts []string
	current := ""
	for _, r := range schedule {
		if r == ' ' || r == '\t' {
			if current != "" {
				parts = append(parts, current)
				current = ""
			}
		} else {
			current += string(r)
		}
	}
	if current != "" {
		parts = append(parts, current)
	}
	return parts
}

// cronLogger routes robfig/cron's own log lines through the service logger.
type cronLogger struct {
	log logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(context.Background(), msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error(context.Background(), msg, append(keysAndValues, "error", err)...)
}
