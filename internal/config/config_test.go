package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DISCOUNT_MODE", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	t.Setenv("SHEET_KEY", " abc ")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSheets, cfg.Sheets.Driver)
	assert.Equal(t, DiscountPerLine, cfg.Sales.DiscountMode)
	assert.Equal(t, 2, cfg.Reporting.LowStockThreshold)
	assert.Equal(t, "abc", cfg.Sheets.SpreadsheetKey)
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "STORE_DRIVER", "postgres"},
		{"unknown discount mode", "DISCOUNT_MODE", "apportioned"},
		{"non numeric threshold", "LOW_STOCK_THRESHOLD", "few"},
		{"negative threshold", "LOW_STOCK_THRESHOLD", "-1"},
		{"bad rps", "RATE_LIMIT_RPS", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}

func TestEmptyCronScheduleDisablesJob(t *testing.T) {
	t.Setenv("REPORT_CRON_SCHEDULE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Reporting.CronSchedule)
}

func TestMaterializeCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "credentials.json")
	s := SheetsConfig{CredentialsPath: path, CredentialsJSON: `{"type":"service_account"}`}

	written, err := s.MaterializeCredentials()
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account"}`, string(data))

	s.CredentialsJSON = `{"type":"other"}`
	written, err = s.MaterializeCredentials()
	require.NoError(t, err)
	assert.False(t, written, "existing file must not be overwritten")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "NOT SET", MaskSecret(""))
	assert.Equal(t, "short", MaskSecret("short"))
	assert.Equal(t, "1Bxi...upms", MaskSecret("1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"))
}
