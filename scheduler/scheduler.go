package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Dosada05/swiss-tournament/services"
)

const exportTimeout = 30 * time.Second

// ExportScheduler periodically uploads a standings workbook.
type ExportScheduler struct {
	sched    gocron.Scheduler
	exporter services.ExportService
	logger   *slog.Logger
}

func NewExportScheduler(exporter services.ExportService, interval time.Duration, logger *slog.Logger) (*ExportScheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("export interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &ExportScheduler{
		sched:    sched,
		exporter: exporter,
		logger:   logger.With(slog.String("component", "export_scheduler")),
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.RunOnce),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to register export job: %w", err), sched.Shutdown())
	}
	return s, nil
}

func (s *ExportScheduler) Start() {
	s.sched.Start()
	s.logger.Info("export scheduler started")
}

func (s *ExportScheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// RunOnce exports standings a single time; failures are logged.
func (s *ExportScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	result, err := s.exporter.ExportStandings(ctx)
	if err != nil {
		s.logger.Error("scheduled export failed", slog.Any("error", err))
		return
	}
	s.logger.Info("scheduled export uploaded", slog.String("key", result.Key))
}
