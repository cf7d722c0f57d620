package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SizeColumns lists the size headers recognised in the Stock sheet, in display order.
var SizeColumns = []string{"S", "M", "L", "XL", "XXL"}

// IsSizeColumn reports whether a Stock header holds a per-size quantity.
func IsSizeColumn(header string) bool {
	h := strings.TrimSpace(header)
	for _, size := range SizeColumns {
		if h == size {
			return true
		}
	}
	return false
}

// StockItem is one row of the Stock sheet. Team and Kit identify it.
type StockItem struct {
	Team  string          `json:"team"`
	Kit   string          `json:"kit"`
	Sizes map[string]int  `json:"sizes"`
	Total int             `json:"total"`
	Price decimal.Decimal `json:"price"`
}

// LowStockEntry flags a size running out.
type LowStockEntry struct {
	Team string `json:"team" bson:"team"`
	Kit  string `json:"kit" bson:"kit"`
	Size string `json:"size" bson:"size"`
	Qty  int    `json:"qty" bson:"qty"`
}
