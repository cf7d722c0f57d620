package reporting

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/kitstock/internal/domain/models"
	repo "github.com/mamadbah2/kitstock/internal/repository/sheets"
)

func sale(team, kit, buyer string, qty any, total any) map[string]any {
	return map[string]any{
		repo.ColTeam:      team,
		repo.ColKit:       kit,
		repo.ColBuyerName: buyer,
		repo.ColQuantity:  qty,
		repo.ColTotal:     total,
	}
}

func readSheet(t *testing.T, store repo.Repository, table repo.Table) *repo.Sheet {
	t.Helper()
	sheet, err := store.ReadTable(context.Background(), table)
	require.NoError(t, err)
	return sheet
}

func TestTotalRevenueTreatsGarbageAsZero(t *testing.T) {
	store := repo.NewMemoryRepository()
	store.Seed(repo.TableSales,
		sale("Arsenal", "Home", "Ann", 1, 10),
		sale("Arsenal", "Home", "Ann", 1, "x"),
		sale("Chelsea", "Away", "Bob", 1, 5),
	)

	m := Summarize(readSheet(t, store, repo.TableSales), nil, DefaultLowStockThreshold)
	assert.True(t, decimal.NewFromInt(15).Equal(m.TotalRevenue))
}

func TestSummarize(t *testing.T) {
	store := repo.NewMemoryRepository()
	store.Seed(repo.TableSales,
		sale("Arsenal", "Home", "Ann", 1, "30"),
		sale("Chelsea", "Away", "Bob", 4, "100"),
		sale("Arsenal", "Home", "Bob", 2, "60"),
		sale("Arsenal", "Away", "Cat", "?", "12.5"),
		sale("Chelsea", "Away", "Bob", 1, "25"),
	)

	m := Summarize(readSheet(t, store, repo.TableSales), nil, DefaultLowStockThreshold)

	assert.True(t, decimal.RequireFromString("227.5").Equal(m.TotalRevenue))
	assert.Equal(t, 8, m.TotalSales)
	require.NotNil(t, m.TopItem)
	assert.Equal(t, models.ItemKey{Team: "Chelsea", Kit: "Away"}, *m.TopItem)
	assert.Equal(t, "Bob", m.TopBuyer)

	require.Len(t, m.RevenueByTeam, 2)
	assert.Equal(t, "Arsenal", m.RevenueByTeam[0].Team)
	assert.True(t, decimal.RequireFromString("102.5").Equal(m.RevenueByTeam[0].Revenue))
	assert.Equal(t, "Chelsea", m.RevenueByTeam[1].Team)
}

func TestSummarizeTiesGoToFirstSeen(t *testing.T) {
	store := repo.NewMemoryRepository()
	store.Seed(repo.TableSales,
		sale("Arsenal", "Home", "Ann", 2, 1),
		sale("Chelsea", "Away", "Bob", 2, 1),
	)

	m := Summarize(readSheet(t, store, repo.TableSales), nil, DefaultLowStockThreshold)
	assert.Equal(t, models.ItemKey{Team: "Arsenal", Kit: "Home"}, *m.TopItem)
	assert.Equal(t, "Ann", m.TopBuyer)
}

func TestTotalSalesFallsBackToRowCount(t *testing.T) {
	store := repo.NewMemoryRepository()
	store.SetHeaders(repo.TableSales, repo.ColTeam, repo.ColKit, repo.ColBuyerName, repo.ColTotal)
	store.Seed(repo.TableSales,
		map[string]any{repo.ColTeam: "Arsenal", repo.ColBuyerName: "Ann", repo.ColTotal: 5},
		map[string]any{repo.ColTeam: "Arsenal", repo.ColBuyerName: "Ann", repo.ColTotal: 5},
		map[string]any{repo.ColTeam: "Chelsea", repo.ColBuyerName: "Bob", repo.ColTotal: 5},
	)

	m := Summarize(readSheet(t, store, repo.TableSales), nil, DefaultLowStockThreshold)
	assert.Equal(t, 3, m.TotalSales)
	assert.Nil(t, m.TopItem)
	assert.Equal(t, "Ann", m.TopBuyer)
}

func TestSummarizeEmptySales(t *testing.T) {
	m := Summarize(readSheet(t, repo.NewMemoryRepository(), repo.TableSales), nil, DefaultLowStockThreshold)

	assert.True(t, m.TotalRevenue.IsZero())
	assert.Zero(t, m.TotalSales)
	assert.Nil(t, m.TopItem)
	assert.Empty(t, m.TopBuyer)
	assert.NotNil(t, m.LowStock)
}

func TestLowStockBoundaryIsInclusive(t *testing.T) {
	store := repo.NewMemoryRepository()
	store.SetHeaders(repo.TableStock, repo.ColTeam, repo.ColKit, "S", "M", repo.ColTotal)
	store.Seed(repo.TableStock, map[string]any{repo.ColTeam: "Arsenal", repo.ColKit: "Home", "S": 2, "M": 10, repo.ColTotal: 1})

	low := LowStock(readSheet(t, store, repo.TableStock), DefaultLowStockThreshold)
	assert.Equal(t, []models.LowStockEntry{{Team: "Arsenal", Kit: "Home", Size: "S", Qty: 2}}, low)
}

func TestLowStockTreatsGarbageAsZero(t *testing.T) {
	store := repo.NewMemoryRepository()
	store.Seed(repo.TableStock, map[string]any{repo.ColTeam: "Chelsea", repo.ColKit: "Away", "S": "n/a", "M": 3, "L": 3, "XL": 3, "XXL": 3})

	low := LowStock(readSheet(t, store, repo.TableStock), DefaultLowStockThreshold)
	require.Len(t, low, 1)
	assert.Equal(t, "S", low[0].Size)
	assert.Equal(t, 0, low[0].Qty)
}

func TestDashboard(t *testing.T) {
	store := repo.NewMemoryRepository()
	store.Seed(repo.TableStock, map[string]any{repo.ColTeam: "Arsenal", repo.ColKit: "Home", "S": 1, "M": 5, "L": 5, "XL": 5, "XXL": 5})
	store.Seed(repo.TableSales, sale("Arsenal", "Home", "Ann", 2, "60"))

	svc := NewService(store, 0, nil)
	m, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(60).Equal(m.TotalRevenue))
	assert.Empty(t, m.LowStock, "threshold 0 excludes a size with one left")

	m, err = NewService(store, 2, nil).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, m.LowStock, 1)
}

func TestDashboardStoreError(t *testing.T) {
	cause := errors.New("unreachable")
	svc := NewService(repo.NewUnavailable(cause), DefaultLowStockThreshold, nil)

	_, err := svc.Dashboard(context.Background())
	assert.ErrorIs(t, err, cause)
}
