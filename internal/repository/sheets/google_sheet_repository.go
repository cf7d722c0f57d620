package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/kitstock/internal/config"
)

var (
	// ErrMissingSpreadsheetKey is wrapped in a StoreConnectionError when SHEET_KEY is empty.
	ErrMissingSpreadsheetKey = errors.New("spreadsheet key not provided, set SHEET_KEY")
	// ErrMissingCredentials is wrapped in a StoreConnectionError when the credentials file is absent.
	ErrMissingCredentials = errors.New("service account credentials not found")
)

var spreadsheetURLPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// SpreadsheetID accepts a raw spreadsheet ID or a full Google Sheets URL.
func SpreadsheetID(key string) string {
	key = strings.TrimSpace(key)
	if m := spreadsheetURLPattern.FindStringSubmatch(key); m != nil {
		return m[1]
	}
	return key
}

// GoogleSheetRepository implements Repository using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository validates the configuration and builds a Sheets client
// authenticated with the service-account file. It does not contact the API; call
// Ping for that.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if cfg.SpreadsheetKey == "" {
		return nil, &StoreConnectionError{Op: "configure", Err: ErrMissingSpreadsheetKey}
	}
	if _, err := os.Stat(cfg.CredentialsPath); err != nil {
		return nil, &StoreConnectionError{Op: "configure", Err: fmt.Errorf("%w at %s: %v", ErrMissingCredentials, cfg.CredentialsPath, err)}
	}

	return newGoogleSheetRepository(ctx, SpreadsheetID(cfg.SpreadsheetKey), logger,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
}

func newGoogleSheetRepository(ctx context.Context, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, &StoreConnectionError{Op: "initialize client", Err: err}
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// ReadTable fetches the whole worksheet and maps rows onto the header row.
func (r *GoogleSheetRepository) ReadTable(ctx context.Context, table Table) (*Sheet, error) {
	values, err := r.readRange(ctx, quoteTitle(table))
	if err != nil {
		return nil, err
	}
	return buildSheet(table, values), nil
}

// FindRow returns the first row matching the predicate.
func (r *GoogleSheetRepository) FindRow(ctx context.Context, table Table, match Predicate) (Row, error) {
	sheet, err := r.ReadTable(ctx, table)
	if err != nil {
		return Row{}, err
	}
	return findInSheet(sheet, match)
}

// UpdateCell overwrites one cell, locating the column through the header row.
func (r *GoogleSheetRepository) UpdateCell(ctx context.Context, ref RowRef, column string, value any) error {
	if ref.Number < 2 {
		return fmt.Errorf("update %s: invalid row number %d", ref.Table, ref.Number)
	}

	headers, err := r.headers(ctx, ref.Table)
	if err != nil {
		return err
	}
	idx := headerIndex(headers, column)
	if idx < 0 {
		return &ColumnNotFoundError{Table: ref.Table, Column: column}
	}

	cell := fmt.Sprintf("%s!%s%d", quoteTitle(ref.Table), ColumnLetter(idx), ref.Number)
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{{cellValue(value)}}}

	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, cell, payload).
		ValueInputOption("RAW").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return &StoreConnectionError{Op: "update " + cell, Err: err}
	}

	r.logger.Debug("cell updated", zap.String("range", cell), zap.String("column", column))
	return nil
}

// AppendRow appends values in header order; missing columns are left empty.
func (r *GoogleSheetRepository) AppendRow(ctx context.Context, table Table, values map[string]any) error {
	headers, err := r.headers(ctx, table)
	if err != nil {
		return err
	}
	if len(headers) == 0 {
		return fmt.Errorf("append to %s: sheet has no header row", table)
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		if v, ok := values[strings.TrimSpace(h)]; ok {
			row[i] = cellValue(v)
		} else {
			row[i] = ""
		}
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}
	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, quoteTitle(table), payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return &StoreConnectionError{Op: "append " + string(table), Err: err}
	}

	r.logger.Debug("row appended to sheet", zap.String("table", string(table)))
	return nil
}

// Worksheets lists the worksheet titles of the spreadsheet.
func (r *GoogleSheetRepository) Worksheets(ctx context.Context) ([]string, error) {
	resp, err := r.service.Spreadsheets.Get(r.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &StoreConnectionError{Op: "open spreadsheet", Err: err}
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// Ping checks that the spreadsheet can be opened with the configured credentials.
func (r *GoogleSheetRepository) Ping(ctx context.Context) error {
	_, err := r.Worksheets(ctx)
	return err
}

func (r *GoogleSheetRepository) headers(ctx context.Context, table Table) ([]string, error) {
	values, err := r.readRange(ctx, quoteTitle(table)+"!1:1")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

func (r *GoogleSheetRepository) readRange(ctx context.Context, sheetRange string) ([][]string, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &StoreConnectionError{Op: "read " + sheetRange, Err: err}
	}

	out := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		out[i] = make([]string, len(raw))
		for j, cell := range raw {
			out[i][j] = CellString(cell)
		}
	}
	return out, nil
}

func quoteTitle(table Table) string {
	return "'" + strings.ReplaceAll(string(table), "'", "''") + "'"
}

// cellValue keeps numbers numeric on the wire so RAW input stores them as numbers.
func cellValue(value any) interface{} {
	switch v := value.(type) {
	case decimal.Decimal:
		return json.Number(v.String())
	case time.Time:
		return v.UTC().Format(TimestampLayout)
	case nil:
		return ""
	default:
		return v
	}
}
