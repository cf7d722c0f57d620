package reporting

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/kitstock/internal/domain/models"
	repo "github.com/mamadbah2/kitstock/internal/repository/sheets"
)

// DefaultLowStockThreshold flags sizes with two or fewer units left.
const DefaultLowStockThreshold = 2

// Service computes dashboard metrics from the Sales and Stock sheets.
type Service struct {
	repo      repo.Repository
	threshold int
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repository repo.Repository, lowStockThreshold int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lowStockThreshold < 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{repo: repository, threshold: lowStockThreshold, logger: logger}
}

// Dashboard reads both sheets concurrently and summarizes them.
func (s *Service) Dashboard(ctx context.Context) (models.DashboardMetrics, error) {
	var sales, stock *repo.Sheet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.repo.ReadTable(gctx, repo.TableSales)
		if err != nil {
			return fmt.Errorf("load sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stock, err = s.repo.ReadTable(gctx, repo.TableStock)
		if err != nil {
			return fmt.Errorf("load stock: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.DashboardMetrics{}, err
	}

	metrics := Summarize(sales, stock, s.threshold)
	s.logger.Debug("dashboard computed",
		zap.Int("sales_rows", len(sales.Rows)),
		zap.Int("low_stock", len(metrics.LowStock)))
	return metrics, nil
}

// Summarize computes the dashboard from full reads of Sales and Stock. Unparsable
// numbers count as 0. Ties for top item and top buyer go to whichever appears
// first in the Sales sheet.
func Summarize(sales, stock *repo.Sheet, threshold int) models.DashboardMetrics {
	metrics := models.DashboardMetrics{
		TotalRevenue:  decimal.Zero,
		LowStock:      LowStock(stock, threshold),
		RevenueByTeam: []models.TeamRevenue{},
	}
	if sales == nil || len(sales.Rows) == 0 {
		return metrics
	}

	hasQuantity := sales.HasColumn(repo.ColQuantity)

	var (
		itemOrder  []models.ItemKey
		itemQty    = make(map[models.ItemKey]int)
		buyerOrder []string
		buyerRows  = make(map[string]int)
		teamOrder  []string
		teamTotal  = make(map[string]decimal.Decimal)
	)

	for _, row := range sales.Rows {
		rec := row.Record
		total := rec.Decimal(repo.ColTotal)
		metrics.TotalRevenue = metrics.TotalRevenue.Add(total)

		qty := rec.Int(repo.ColQuantity)
		if hasQuantity {
			metrics.TotalSales += qty
		} else {
			metrics.TotalSales++
		}

		key := models.ItemKey{Team: rec.Get(repo.ColTeam), Kit: rec.Get(repo.ColKit)}
		if _, seen := itemQty[key]; !seen {
			itemOrder = append(itemOrder, key)
		}
		itemQty[key] += qty

		buyer := rec.Get(repo.ColBuyerName)
		if _, seen := buyerRows[buyer]; !seen {
			buyerOrder = append(buyerOrder, buyer)
		}
		buyerRows[buyer]++

		team := key.Team
		if _, seen := teamTotal[team]; !seen {
			teamOrder = append(teamOrder, team)
			teamTotal[team] = decimal.Zero
		}
		teamTotal[team] = teamTotal[team].Add(total)
	}

	if hasQuantity {
		best := -1
		for _, key := range itemOrder {
			if itemQty[key] > best {
				k := key
				metrics.TopItem = &k
				best = itemQty[key]
			}
		}
	}

	best := 0
	for _, buyer := range buyerOrder {
		if buyerRows[buyer] > best {
			metrics.TopBuyer = buyer
			best = buyerRows[buyer]
		}
	}

	for _, team := range teamOrder {
		metrics.RevenueByTeam = append(metrics.RevenueByTeam, models.TeamRevenue{Team: team, Revenue: teamTotal[team]})
	}

	return metrics
}

// LowStock returns every (team, kit, size) whose quantity is at or below the
// threshold, in sheet order.
func LowStock(stock *repo.Sheet, threshold int) []models.LowStockEntry {
	out := []models.LowStockEntry{}
	if stock == nil {
		return out
	}

	var sizes []string
	for _, h := range stock.Headers {
		if models.IsSizeColumn(h) {
			sizes = append(sizes, h)
		}
	}

	for _, row := range stock.Rows {
		for _, size := range sizes {
			qty := row.Record.Int(size)
			if qty <= threshold {
				out = append(out, models.LowStockEntry{
					Team: row.Record.Get(repo.ColTeam),
					Kit:  row.Record.Get(repo.ColKit),
					Size: size,
					Qty:  qty,
				})
			}
		}
	}
	return out
}
