package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/servicing/ventas/ventas"
)

// Scheduler builds the dataset on a cron schedule and logs a report
type Scheduler struct {
	svc     *Service
	spec    string
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler; an empty spec disables it
func NewScheduler(svc *Service, spec string) *Scheduler {
	return &Scheduler{
		svc:  svc,
		spec: spec,
		cron: cron.New(),
	}
}

// Start registers the report job and starts the cron runner
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.spec == "" {
		slog.Info("Scheduled sales report disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		slog.Info("Starting scheduled sales report")
		if err := s.RunReport(context.Background()); err != nil {
			slog.Error("Scheduled sales report failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("adding report schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.running = true

	slog.Info("Sales report scheduler started", "schedule", s.spec)
	return nil
}

// Stop waits for a running report to finish and stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	slog.Info("Sales report scheduler stopped")
}

// RunReport builds a dataset and logs its summary and month outcomes
func (s *Scheduler) RunReport(ctx context.Context) error {
	ds, err := s.svc.Dataset(ctx)
	if err != nil {
		return err
	}

	summary := ventas.NewSummary(ds)
	slog.Info("Sales report",
		"total_sales", summary.TotalSales,
		"total_nap", summary.TotalNap,
		"average_sales", summary.AverageSales,
		"average_nap", summary.AverageNap,
		"months", summary.MonthsProcessed,
	)
	for _, r := range ds.Report {
		slog.Info("Month outcome",
			"month", r.Month,
			"outcome", string(r.Outcome),
			"approved", r.Approved,
			"unparseable_nap", r.Unparseable,
		)
	}
	return nil
}
