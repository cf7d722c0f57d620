package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/config"
	"github.com/mamadbah2/kitstock/internal/domain/models"
	"github.com/mamadbah2/kitstock/pkg/clients/whatsapp"
)

const (
	reportTimeout = 2 * time.Minute
	maxAlertLines = 20
)

// DashboardSource computes the current dashboard.
type DashboardSource interface {
	Dashboard(ctx context.Context) (models.DashboardMetrics, error)
}

// SnapshotStore keeps dashboard history.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
}

// Options carries the optional collaborators. Nil fields disable the matching step.
type Options struct {
	Snapshots SnapshotStore
	Notifier  whatsapp.Client
	AlertTo   string
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	location  *time.Location
	dashboard DashboardSource
	opts      Options
	threshold int
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, dashboard DashboardSource, opts Options, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		schedule:  cfg.CronSchedule,
		location:  loc,
		dashboard: dashboard,
		opts:      opts,
		threshold: cfg.LowStockThreshold,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start registers the report job and starts the cron loop. An empty schedule
// leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("report schedule empty, scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runScheduledReport); err != nil {
		return fmt.Errorf("schedule report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.schedule),
		zap.String("timezone", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduledReport() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := s.RunReport(ctx); err != nil {
		s.logger.Error("scheduled report failed", zap.Error(err))
	}
}

// RunReport computes the dashboard, stores a snapshot and alerts on low stock.
// Snapshot and alert failures are logged and do not stop each other.
func (s *Scheduler) RunReport(ctx context.Context) error {
	metrics, err := s.dashboard.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("compute dashboard: %w", err)
	}

	s.logger.Info("dashboard computed",
		zap.String("total_revenue", metrics.TotalRevenue.StringFixed(2)),
		zap.Int("total_sales", metrics.TotalSales),
		zap.Int("low_stock", len(metrics.LowStock)))

	if s.opts.Snapshots != nil {
		snapshot := models.NewDashboardSnapshot(metrics, s.now().In(s.location))
		if err := s.opts.Snapshots.SaveSnapshot(ctx, snapshot); err != nil {
			s.logger.Error("failed to save dashboard snapshot", zap.Error(err))
		}
	}

	if s.opts.Notifier != nil && s.opts.AlertTo != "" && len(metrics.LowStock) > 0 {
		msg := whatsapp.TextMessage{To: s.opts.AlertTo, Body: FormatLowStockAlert(metrics.LowStock, s.threshold)}
		if id, err := s.opts.Notifier.SendText(ctx, msg); err != nil {
			s.logger.Error("failed to send low stock alert", zap.Error(err))
		} else {
			s.logger.Info("low stock alert sent", zap.String("message_id", id))
		}
	}

	return nil
}

// FormatLowStockAlert renders low stock entries as a short text message.
func FormatLowStockAlert(entries []models.LowStockEntry, threshold int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Low stock (%d or fewer left):\n", threshold)
	for i, e := range entries {
		if i == maxAlertLines {
			fmt.Fprintf(&b, "…and %d more", len(entries)-maxAlertLines)
			break
		}
		fmt.Fprintf(&b, "- %s %s %s: %d\n", e.Team, e.Kit, e.Size, e.Qty)
	}
	return strings.TrimRight(b.String(), "\n")
}
