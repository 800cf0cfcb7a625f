// Package jobs runs the admin API's background maintenance on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	applog "github.com/opsdesk/admin-api/internal/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on cron expressions with an optional seconds field
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewScheduler creates a scheduler; each run is cancelled after timeout
func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cron.NewParser(
				cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
			)),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger), cron.Recover(cronLogger)),
		),
		logger:  logger,
		timeout: timeout,
		entries: make(map[string]cron.EntryID),
	}
}

// Register schedules the job under its name
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.RunNow(context.Background(), job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.entries[name] = id

	s.logger.Info("scheduled job registered",
		zap.String("job_name", name),
		zap.String("schedule", spec))
	return nil
}

// Unregister removes a job by name
func (s *Scheduler) Unregister(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	s.cron.Remove(id)
	delete(s.entries, name)
	return nil
}

// JobNames returns the registered job names in order
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow runs the job once outside its schedule and logs the outcome
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := applog.WithJob(s.logger, job.Name())
	start := time.Now()
	err := job.Run(ctx)
	if err != nil {
		log.Error("scheduled job failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return err
	}
	log.Info("scheduled job completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler", zap.Strings("jobs", s.JobNames()))
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	return s.cron.Stop()
}
