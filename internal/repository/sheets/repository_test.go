package sheets

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecordParsing(t *testing.T) {
	r := Record{"S": "2", "M": " 10 ", "L": "x", "XL": "3.0", "Price": "25.50", "Total": "n/a"}

	assert.Equal(t, 2, r.Int("S"))
	assert.Equal(t, 10, r.Int("M"))
	assert.Equal(t, 0, r.Int("L"))
	assert.Equal(t, 3, r.Int("XL"))
	assert.Equal(t, 0, r.Int("XXL"))
	assert.True(t, decimal.RequireFromString("25.5").Equal(r.Decimal("Price")))
	assert.True(t, r.Decimal("Total").IsZero())
	assert.True(t, r.Has("L"))
	assert.False(t, r.Has("XXL"))
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{2, "C"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnLetter(tt.index))
		})
	}
}

func TestSpreadsheetID(t *testing.T) {
	assert.Equal(t, "1AbC-d_9", SpreadsheetID("1AbC-d_9"))
	assert.Equal(t, "1AbC-d_9", SpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0"))
	assert.Equal(t, "raw", SpreadsheetID("  raw "))
}

func TestMatchCustomerIgnoresCaseAndSpaces(t *testing.T) {
	match := MatchCustomer(" jane doe ")

	assert.True(t, match(Record{ColName: "Jane Doe"}))
	assert.True(t, match(Record{ColName: "JANE DOE  "}))
	assert.False(t, match(Record{ColName: "Jane Does"}))
}

func TestMatchStockIsExact(t *testing.T) {
	match := MatchStock("Arsenal", "Home")

	assert.True(t, match(Record{ColTeam: "Arsenal", ColKit: "Home"}))
	assert.False(t, match(Record{ColTeam: "arsenal", ColKit: "Home"}))
	assert.False(t, match(Record{ColTeam: "Arsenal", ColKit: "Away"}))
}

func TestCellString(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("X", 3600))

	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "3", CellString(float64(3)))
	assert.Equal(t, "2.5", CellString(2.5))
	assert.Equal(t, "7", CellString(7))
	assert.Equal(t, "45.5", CellString(decimal.RequireFromString("45.50")))
	assert.Equal(t, "12.10", CellString(json.Number("12.10")))
	assert.Equal(t, "2024-05-01T11:30:00Z", CellString(ts))
}

func TestBuildSheetSkipsBlankRowsAndKeepsNumbering(t *testing.T) {
	sheet := buildSheet(TableStock, [][]string{
		{"Team", " Kit ", "S"},
		{"Arsenal", "Home", "4"},
		{"", "", ""},
		{"Chelsea", "Away"},
	})

	assert.Equal(t, []string{"Team", "Kit", "S"}, sheet.Headers)
	if assert.Len(t, sheet.Rows, 2) {
		assert.Equal(t, 2, sheet.Rows[0].Ref.Number)
		assert.Equal(t, 4, sheet.Rows[1].Ref.Number)
		assert.Equal(t, "", sheet.Rows[1].Record["S"])
		assert.True(t, sheet.Rows[1].Record.Has("S"))
	}
	assert.True(t, sheet.HasColumn("Kit"))
}
