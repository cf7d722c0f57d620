package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/kitstock/internal/config"
	"github.com/mamadbah2/kitstock/internal/domain/models"
	"github.com/mamadbah2/kitstock/pkg/clients/whatsapp"
)

type fakeDashboard struct {
	metrics models.DashboardMetrics
	err     error
}

func (f fakeDashboard) Dashboard(context.Context) (models.DashboardMetrics, error) {
	return f.metrics, f.err
}

type fakeSnapshots struct {
	saved []models.DashboardSnapshot
	err   error
}

func (f *fakeSnapshots) SaveSnapshot(_ context.Context, s models.DashboardSnapshot) error {
	f.saved = append(f.saved, s)
	return f.err
}

type fakeNotifier struct {
	sent []whatsapp.TextMessage
}

func (f *fakeNotifier) SendText(_ context.Context, msg whatsapp.TextMessage) (string, error) {
	f.sent = append(f.sent, msg)
	return "wamid.1", nil
}

func reportingConfig() config.ReportingConfig {
	return config.ReportingConfig{LowStockThreshold: 2, CronSchedule: "0 20 * * *", Timezone: "UTC"}
}

func TestRunReportSnapshotsAndAlerts(t *testing.T) {
	metrics := models.DashboardMetrics{
		TotalRevenue: decimal.RequireFromString("120.5"),
		TotalSales:   4,
		LowStock:     []models.LowStockEntry{{Team: "Arsenal", Kit: "Home", Size: "S", Qty: 1}},
	}
	snapshots := &fakeSnapshots{}
	notifier := &fakeNotifier{}

	s, err := NewScheduler(reportingConfig(), fakeDashboard{metrics: metrics}, Options{
		Snapshots: snapshots, Notifier: notifier, AlertTo: "224600000000",
	}, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, s.RunReport(context.Background()))

	require.Len(t, snapshots.saved, 1)
	assert.Equal(t, "120.50", snapshots.saved[0].TotalRevenue)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), snapshots.saved[0].Date)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "224600000000", notifier.sent[0].To)
	assert.Equal(t, "Low stock (2 or fewer left):\n- Arsenal Home S: 1", notifier.sent[0].Body)
}

func TestRunReportSkipsAlertWithoutLowStock(t *testing.T) {
	notifier := &fakeNotifier{}
	s, err := NewScheduler(reportingConfig(), fakeDashboard{}, Options{Notifier: notifier, AlertTo: "1"}, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunReport(context.Background()))
	assert.Empty(t, notifier.sent)
}

func TestRunReportKeepsGoingWhenSnapshotFails(t *testing.T) {
	notifier := &fakeNotifier{}
	metrics := models.DashboardMetrics{LowStock: []models.LowStockEntry{{Team: "A", Kit: "B", Size: "M"}}}
	s, err := NewScheduler(reportingConfig(), fakeDashboard{metrics: metrics}, Options{
		Snapshots: &fakeSnapshots{err: errors.New("mongo down")}, Notifier: notifier, AlertTo: "1",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunReport(context.Background()))
	assert.Len(t, notifier.sent, 1)
}

func TestRunReportDashboardError(t *testing.T) {
	s, err := NewScheduler(reportingConfig(), fakeDashboard{err: errors.New("sheet unreachable")}, Options{}, nil)
	require.NoError(t, err)

	assert.ErrorContains(t, s.RunReport(context.Background()), "compute dashboard")
}

func TestNewSchedulerRejectsBadTimezone(t *testing.T) {
	cfg := reportingConfig()
	cfg.Timezone = "Mars/Olympus"

	_, err := NewScheduler(cfg, fakeDashboard{}, Options{}, nil)
	assert.Error(t, err)
}

func TestStart(t *testing.T) {
	cfg := reportingConfig()
	cfg.CronSchedule = "not a schedule"
	s, err := NewScheduler(cfg, fakeDashboard{}, Options{}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())

	cfg.CronSchedule = ""
	s, err = NewScheduler(cfg, fakeDashboard{}, Options{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
	s.Stop()
}

func TestFormatLowStockAlertTruncates(t *testing.T) {
	entries := make([]models.LowStockEntry, maxAlertLines+3)
	for i := range entries {
		entries[i] = models.LowStockEntry{Team: fmt.Sprintf("T%d", i), Kit: "Home", Size: "S"}
	}

	msg := FormatLowStockAlert(entries, 2)

	assert.Equal(t, maxAlertLines+2, strings.Count(msg, "\n")+1)
	assert.True(t, strings.HasSuffix(msg, "…and 3 more"))
}
