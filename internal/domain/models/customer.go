package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a row of the Customers sheet, keyed by case-insensitive trimmed name.
type Customer struct {
	Name           string          `json:"name"`
	Contact        string          `json:"contact"`
	TotalPurchases int             `json:"total_purchases"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	LastPurchase   *time.Time      `json:"last_purchase,omitempty"`
}
