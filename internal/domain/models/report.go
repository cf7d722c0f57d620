package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKey identifies a stock item.
type ItemKey struct {
	Team string `json:"team" bson:"team"`
	Kit  string `json:"kit" bson:"kit"`
}

// TeamRevenue is one bar of the revenue-by-team chart.
type TeamRevenue struct {
	Team    string          `json:"team"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardMetrics are the headline figures shown on the dashboard.
type DashboardMetrics struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalSales    int             `json:"total_sales"`
	TopItem       *ItemKey        `json:"top_item,omitempty"`
	TopBuyer      string          `json:"top_buyer,omitempty"`
	LowStock      []LowStockEntry `json:"low_stock"`
	RevenueByTeam []TeamRevenue   `json:"revenue_by_team"`
}

// DashboardSnapshot is the periodic copy of the dashboard kept in MongoDB.
type DashboardSnapshot struct {
	Date         time.Time       `bson:"date" json:"date"`
	TotalRevenue string          `bson:"total_revenue" json:"total_revenue"`
	TotalSales   int             `bson:"total_sales" json:"total_sales"`
	TopItem      *ItemKey        `bson:"top_item,omitempty" json:"top_item,omitempty"`
	TopBuyer     string          `bson:"top_buyer,omitempty" json:"top_buyer,omitempty"`
	LowStock     []LowStockEntry `bson:"low_stock" json:"low_stock"`
	CreatedAt    time.Time       `bson:"created_at" json:"created_at"`
}

// NewDashboardSnapshot copies metrics into their stored form.
func NewDashboardSnapshot(m DashboardMetrics, at time.Time) DashboardSnapshot {
	return DashboardSnapshot{
		Date:         time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
		TotalRevenue: m.TotalRevenue.StringFixed(2),
		TotalSales:   m.TotalSales,
		TopItem:      m.TopItem,
		TopBuyer:     m.TopBuyer,
		LowStock:     m.LowStock,
		CreatedAt:    at,
	}
}
