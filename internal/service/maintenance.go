package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MaintenanceJob is one periodic housekeeping task.
type MaintenanceJob struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// MaintenanceScheduler runs housekeeping jobs on standard five-field cron specs.
type MaintenanceScheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger
}

// NewMaintenanceScheduler constructs a scheduler. Each run gets timeout.
func NewMaintenanceScheduler(timeout time.Duration, logger *zap.Logger) *MaintenanceScheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceScheduler{cron: cron.New(), timeout: timeout, logger: logger}
}

// Add registers a job. It fails on an invalid spec.
func (s *MaintenanceScheduler) Add(job MaintenanceJob) error {
	if _, err := s.cron.AddFunc(job.Spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %s %q: %w", job.Name, job.Spec, err)
	}
	s.logger.Info("maintenance job scheduled", zap.String("job", job.Name), zap.String("spec", job.Spec))
	return nil
}

// Start begins running registered jobs.
func (s *MaintenanceScheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *MaintenanceScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *MaintenanceScheduler) run(job MaintenanceJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Warn("maintenance job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.logger.Info("maintenance job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
}
