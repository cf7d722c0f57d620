package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	repo "github.com/mamadbah2/kitstock/internal/repository/sheets"
)

// ErrUnknownExportTarget is returned for export names other than stock and sales.
var ErrUnknownExportTarget = errors.New("unknown export")

var targets = map[string]repo.Table{
	"stock": repo.TableStock,
	"sales": repo.TableSales,
}

// Service streams sheets as CSV downloads.
type Service struct {
	repo   repo.Repository
	logger *zap.Logger
}

func NewService(repository repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger}
}

// Filename returns the download name for an export target.
func Filename(which string) string {
	return strings.ToLower(which) + ".csv"
}

// Write renders the named sheet as CSV: the header row first, then every data row
// in header order.
func (s *Service) Write(ctx context.Context, which string, w io.Writer) error {
	table, ok := targets[strings.ToLower(strings.TrimSpace(which))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExportTarget, which)
	}

	sheet, err := s.repo.ReadTable(ctx, table)
	if err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(sheet.Headers); err != nil {
		return err
	}
	record := make([]string, len(sheet.Headers))
	for _, row := range sheet.Rows {
		for i, h := range sheet.Headers {
			record[i] = row.Record[h]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write %s csv: %w", table, err)
	}

	s.logger.Debug("sheet exported", zap.String("table", string(table)), zap.Int("rows", len(sheet.Rows)))
	return nil
}
