package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Table names a worksheet used as a table. The first row holds the column headers.
type Table string

const (
	TableStock     Table = "Stock"
	TableSales     Table = "Sales"
	TableCustomers Table = "Customers"
)

// Column headers.
const (
	ColTeam      = "Team"
	ColKit       = "Kit"
	ColTotal     = "Total"
	ColPrice     = "Price"
	ColTimestamp = "Timestamp"
	ColSize      = "Size"
	ColQuantity  = "Quantity"
	ColSoldPrice = "Sold Price"
	ColDiscount  = "Discount"
	ColDealType  = "Deal Type"
	ColBuyerName = "Buyer Name"

	ColName           = "Name"
	ColContact        = "Contact"
	ColTotalPurchases = "TotalPurchases"
	ColTotalSpent     = "TotalSpent"
	ColLastPurchase   = "LastPurchase"
)

// DefaultHeaders is the layout a fresh spreadsheet is expected to have.
var DefaultHeaders = map[Table][]string{
	TableStock:     {ColTeam, ColKit, "S", "M", "L", "XL", "XXL", ColTotal, ColPrice},
	TableSales:     {ColTimestamp, ColTeam, ColKit, ColSize, ColQuantity, ColSoldPrice, ColDiscount, ColDealType, ColBuyerName, ColTotal},
	TableCustomers: {ColName, ColContact, ColTotalPurchases, ColTotalSpent, ColLastPurchase},
}

// TimestampLayout is how timestamps are written to the sheets.
const TimestampLayout = time.RFC3339

// ErrRowNotFound is returned by FindRow when no row matches.
var ErrRowNotFound = errors.New("row not found")

// ColumnNotFoundError reports a write to a header that does not exist.
type ColumnNotFoundError struct {
	Table  Table
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("Column %s not found in %s sheet", e.Column, e.Table)
}

// StoreConnectionError covers missing credentials, an invalid spreadsheet key and
// an unreachable API.
type StoreConnectionError struct {
	Op  string
	Err error
}

func (e *StoreConnectionError) Error() string {
	return fmt.Sprintf("spreadsheet %s: %v", e.Op, e.Err)
}

func (e *StoreConnectionError) Unwrap() error {
	return e.Err
}

// RowRef addresses a row by its sheet row number (the header is row 1). It is only
// valid until the next write by someone else; re-fetch by key before writing.
type RowRef struct {
	Table  Table
	Number int
}

// Record maps column headers to cell text.
type Record map[string]string

// Has reports whether the column exists in the record.
func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Get returns the trimmed cell text, or "" when the column is absent.
func (r Record) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Int parses the cell as an integer. Missing or unparsable cells count as 0 and
// decimals are truncated.
func (r Record) Int(column string) int {
	return parseInt(r.Get(column))
}

// Decimal parses the cell as a decimal. Missing or unparsable cells count as 0.
func (r Record) Decimal(column string) decimal.Decimal {
	return parseDecimal(r.Get(column))
}

// Row is a record with the reference needed to update it.
type Row struct {
	Ref    RowRef
	Record Record
}

// Sheet is a full read of a table.
type Sheet struct {
	Table   Table
	Headers []string
	Rows    []Row
}

// HasColumn reports whether the header row contains column.
func (s *Sheet) HasColumn(column string) bool {
	return headerIndex(s.Headers, column) >= 0
}

// Predicate selects rows in FindRow.
type Predicate func(Record) bool

// MatchStock matches the stock row of a (team, kit) pair. Comparison is exact.
func MatchStock(team, kit string) Predicate {
	return func(r Record) bool {
		return r[ColTeam] == team && r[ColKit] == kit
	}
}

// MatchCustomer matches a customer by name, ignoring case and surrounding spaces.
func MatchCustomer(name string) Predicate {
	key := CustomerKey(name)
	return func(r Record) bool {
		return CustomerKey(r[ColName]) == key
	}
}

// CustomerKey normalizes a customer name for comparisons.
func CustomerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Repository is the narrow interface to the spreadsheet. Every call on the Google
// implementation is a network round trip; nothing is cached.
type Repository interface {
	ReadTable(ctx context.Context, table Table) (*Sheet, error)
	FindRow(ctx context.Context, table Table, match Predicate) (Row, error)
	UpdateCell(ctx context.Context, ref RowRef, column string, value any) error
	AppendRow(ctx context.Context, table Table, values map[string]any) error
	Worksheets(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

func findInSheet(sheet *Sheet, match Predicate) (Row, error) {
	for _, row := range sheet.Rows {
		if match(row.Record) {
			return row, nil
		}
	}
	return Row{}, fmt.Errorf("find row in %s: %w", sheet.Table, ErrRowNotFound)
}

func buildSheet(table Table, values [][]string) *Sheet {
	sheet := &Sheet{Table: table}
	if len(values) == 0 {
		return sheet
	}

	sheet.Headers = make([]string, len(values[0]))
	for i, h := range values[0] {
		sheet.Headers[i] = strings.TrimSpace(h)
	}

	for i, raw := range values[1:] {
		if isBlankRow(raw) {
			continue
		}
		rec := make(Record, len(sheet.Headers))
		for j, h := range sheet.Headers {
			if h == "" {
				continue
			}
			if j < len(raw) {
				rec[h] = raw[j]
			} else {
				rec[h] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, Row{Ref: RowRef{Table: table, Number: i + 2}, Record: rec})
	}

	return sheet
}

func orderedRow(headers []string, values map[string]any) []string {
	row := make([]string, len(headers))
	for i, h := range headers {
		if v, ok := values[h]; ok {
			row[i] = CellString(v)
		}
	}
	return row
}

func headerIndex(headers []string, column string) int {
	column = strings.TrimSpace(column)
	for i, h := range headers {
		if strings.TrimSpace(h) == column {
			return i
		}
	}
	return -1
}

func isBlankRow(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// CellString renders a value the way it reads back from a sheet.
func CellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return v.UTC().Format(TimestampLayout)
	default:
		return fmt.Sprint(v)
	}
}

// ColumnLetter converts a zero-based column index to A1 notation (0 -> A, 26 -> AA).
func ColumnLetter(index int) string {
	var out []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		out = append([]byte{byte('A' + (n-1)%26)}, out...)
	}
	return string(out)
}

func parseInt(str string) int {
	if str == "" {
		return 0
	}
	if v, err := strconv.Atoi(str); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(str, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseDecimal(str string) decimal.Decimal {
	if str == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero
	}
	return d
}
