package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const OverdueReportJobName = "overdue_report"

// OverdueCounter counts records that are overdue at now
type OverdueCounter interface {
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}

// OverdueReportJob logs how many invoices, projects and tasks are overdue.
// It only reads; stored statuses are never transitioned.
type OverdueReportJob struct {
	counters map[string]OverdueCounter
	logger   *zap.Logger
	now      func() time.Time
}

func NewOverdueReportJob(invoices, projects, tasks OverdueCounter, logger *zap.Logger) *OverdueReportJob {
	return &OverdueReportJob{
		counters: map[string]OverdueCounter{
			"invoices": invoices,
			"projects": projects,
			"tasks":    tasks,
		},
		logger: logger,
		now:    time.Now,
	}
}

func (j *OverdueReportJob) Name() string {
	return OverdueReportJobName
}

// Run counts every resource even when one count fails
func (j *OverdueReportJob) Run(ctx context.Context) error {
	_, err := j.Report(ctx)
	return err
}

// Report returns the overdue count per resource
func (j *OverdueReportJob) Report(ctx context.Context) (map[string]int64, error) {
	now := j.now().UTC()
	counts := make(map[string]int64, len(j.counters))
	var firstErr error

	for resource, counter := range j.counters {
		n, err := counter.CountOverdue(ctx, now)
		if err != nil {
			j.logger.Warn("overdue count failed", zap.String("resource", resource), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to count overdue %s: %w", resource, err)
			}
			continue
		}
		counts[resource] = n
	}

	j.logger.Info("overdue report",
		zap.Int64("invoices", counts["invoices"]),
		zap.Int64("projects", counts["projects"]),
		zap.Int64("tasks", counts["tasks"]),
		zap.Time("at", now))
	return counts, firstErr
}
