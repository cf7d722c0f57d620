package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one (team, kit, size, quantity) unit within a sale. SoldPrice is
// optional; the stock price applies when it is nil.
type LineItem struct {
	Team      string           `json:"team" binding:"required"`
	Kit       string           `json:"kit"`
	Size      string           `json:"size" binding:"required"`
	Quantity  int              `json:"quantity"`
	SoldPrice *decimal.Decimal `json:"sold_price,omitempty"`
}

// SaleRequest carries a multi-line sale as submitted by the operator.
type SaleRequest struct {
	Buyer    string          `json:"buyer"`
	Contact  string          `json:"contact"`
	Discount decimal.Decimal `json:"discount"`
	DealType string          `json:"deal_type"`
	Lines    []LineItem      `json:"lines" binding:"required,dive"`
}

// SaleRecord is one appended row of the Sales sheet.
type SaleRecord struct {
	Timestamp time.Time
	Team      string
	Kit       string
	Size      string
	Quantity  int
	SoldPrice decimal.Decimal
	Discount  decimal.Decimal
	DealType  string
	BuyerName string
	Total     decimal.Decimal
}

// LineStatus tracks what happened to a line during commit.
type LineStatus string

const (
	LineCommitted LineStatus = "committed"
	LineFailed    LineStatus = "failed"
	LineSkipped   LineStatus = "skipped"
)

// LineOutcome reports the commit result of a single line.
type LineOutcome struct {
	Team      string          `json:"team"`
	Kit       string          `json:"kit"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	SoldPrice decimal.Decimal `json:"sold_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Status    LineStatus      `json:"status"`
}

// SaleReceipt summarizes a recorded sale.
type SaleReceipt struct {
	Buyer     string          `json:"buyer"`
	Discount  decimal.Decimal `json:"discount"`
	DealType  string          `json:"deal_type"`
	Lines     []LineOutcome   `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

// Committed counts lines that reached the store.
func (r SaleReceipt) Committed() int {
	n := 0
	for _, l := range r.Lines {
		if l.Status == LineCommitted {
			n++
		}
	}
	return n
}
