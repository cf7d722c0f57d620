package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/config"
	"github.com/mamadbah2/kitstock/internal/domain/models"
	repo "github.com/mamadbah2/kitstock/internal/repository/sheets"
)

// Commit steps, reported in CommitError.
const (
	StepRefreshStock   = "refresh stock"
	StepRecheckStock   = "recheck stock"
	StepDecrementSize  = "decrement size"
	StepDecrementTotal = "decrement total"
	StepAppendSale     = "append sale"
	StepUpdateCustomer = "update customer"
)

// CustomerUpserter keeps customer running totals.
type CustomerUpserter interface {
	Upsert(ctx context.Context, name, contact string, addCount int, addSpent decimal.Decimal) error
}

// Service records multi-line sales against the Stock, Sales and Customers sheets.
type Service struct {
	repo         repo.Repository
	customers    CustomerUpserter
	discountMode string
	logger       *zap.Logger
	now          func() time.Time

	// mu serializes sales so two requests cannot both pass validation against
	// the same stock.
	mu sync.Mutex
}

// NewService wires a sale service. An empty discount mode means per line.
func NewService(repository repo.Repository, customers CustomerUpserter, discountMode string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if discountMode == "" {
		discountMode = config.DiscountPerLine
	}
	return &Service{
		repo:         repository,
		customers:    customers,
		discountMode: discountMode,
		logger:       logger,
		now:          time.Now,
	}
}

type resolvedLine struct {
	item      models.LineItem
	soldPrice decimal.Decimal
}

type stockKey struct {
	team, kit, size string
}

// Record validates every line against current stock and, only when all lines pass,
// commits them one by one. Validation problems come back together in a
// *models.ValidationError with nothing written. A failure during commit stops at
// that line and returns a *models.CommitError whose receipt tells which lines
// reached the store.
func (s *Service) Record(ctx context.Context, req models.SaleRequest) (models.SaleReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.Buyer = strings.TrimSpace(req.Buyer)
	req.DealType = strings.TrimSpace(req.DealType)
	req.Lines = append([]models.LineItem(nil), req.Lines...)
	for i := range req.Lines {
		req.Lines[i].Size = strings.TrimSpace(req.Lines[i].Size)
	}

	lines, err := s.validate(ctx, req)
	if err != nil {
		return models.SaleReceipt{}, err
	}

	receipt, err := s.commit(ctx, req, lines)
	if err != nil {
		s.logger.Error("sale partially committed",
			zap.String("buyer", req.Buyer),
			zap.Int("committed", receipt.Committed()),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return receipt, err
	}

	s.logger.Info("sale recorded",
		zap.String("buyer", receipt.Buyer),
		zap.Int("lines", len(receipt.Lines)),
		zap.String("total", receipt.Total.StringFixed(2)))
	return receipt, nil
}

func (s *Service) validate(ctx context.Context, req models.SaleRequest) ([]resolvedLine, error) {
	var problems []error

	if len(req.Lines) == 0 {
		problems = append(problems, models.ErrNoLineItems)
	}
	if req.Buyer == "" {
		problems = append(problems, models.ErrBuyerRequired)
	}
	if req.Discount.IsNegative() {
		problems = append(problems, models.ErrNegativeDiscount)
	}

	var stock *repo.Sheet
	if len(req.Lines) > 0 {
		var err error
		stock, err = s.repo.ReadTable(ctx, repo.TableStock)
		if err != nil {
			return nil, fmt.Errorf("load stock: %w", err)
		}
	}

	requested := make(map[stockKey]int)
	lines := make([]resolvedLine, 0, len(req.Lines))

	for _, item := range req.Lines {
		if item.Quantity <= 0 {
			problems = append(problems, &models.InvalidQuantityError{Team: item.Team, Kit: item.Kit, Size: item.Size, Quantity: item.Quantity})
			continue
		}
		if !models.IsSizeColumn(item.Size) {
			problems = append(problems, &models.InvalidSizeError{Team: item.Team, Kit: item.Kit, Size: item.Size})
			continue
		}

		row, ok := findStock(stock, item.Team, item.Kit)
		if !ok {
			problems = append(problems, &models.ItemNotFoundError{Team: item.Team, Kit: item.Kit})
			continue
		}

		// A size the sheet has no column for has nothing available.
		available := 0
		if stock.HasColumn(item.Size) {
			available = row.Record.Int(item.Size)
		}
		key := stockKey{item.Team, item.Kit, item.Size}
		requested[key] += item.Quantity
		if requested[key] > available {
			problems = append(problems, &models.InsufficientStockError{Team: item.Team, Kit: item.Kit, Size: item.Size, Available: available})
			continue
		}

		price := row.Record.Decimal(repo.ColPrice)
		if item.SoldPrice != nil {
			price = *item.SoldPrice
		}
		lines = append(lines, resolvedLine{item: item, soldPrice: price})
	}

	if len(problems) > 0 {
		s.logger.Info("sale rejected", zap.String("buyer", req.Buyer), zap.Int("problems", len(problems)))
		return nil, &models.ValidationError{Problems: problems}
	}
	return lines, nil
}

func (s *Service) commit(ctx context.Context, req models.SaleRequest, lines []resolvedLine) (models.SaleReceipt, error) {
	now := s.now().UTC()
	receipt := models.SaleReceipt{
		Buyer:     req.Buyer,
		Discount:  req.Discount,
		DealType:  req.DealType,
		Lines:     make([]models.LineOutcome, len(lines)),
		Total:     decimal.Zero,
		Timestamp: now,
	}

	for i, line := range lines {
		receipt.Lines[i] = models.LineOutcome{
			Team:      line.item.Team,
			Kit:       line.item.Kit,
			Size:      line.item.Size,
			Quantity:  line.item.Quantity,
			SoldPrice: line.soldPrice,
			LineTotal: LineTotal(line.soldPrice, line.item.Quantity, s.lineDiscount(req.Discount, i, len(lines))),
			Status:    models.LineSkipped,
		}
	}

	for i, line := range lines {
		discount := s.lineDiscount(req.Discount, i, len(lines))
		outcome := &receipt.Lines[i]

		if step, err := s.commitLine(ctx, req, line, discount, outcome.LineTotal, now); err != nil {
			outcome.Status = models.LineFailed
			return receipt, &models.CommitError{Receipt: receipt, Line: i, Step: step, Err: err}
		}

		outcome.Status = models.LineCommitted
		receipt.Total = receipt.Total.Add(outcome.LineTotal)
	}

	return receipt, nil
}

func (s *Service) commitLine(ctx context.Context, req models.SaleRequest, line resolvedLine, discount, lineTotal decimal.Decimal, now time.Time) (string, error) {
	item := line.item

	row, err := s.repo.FindRow(ctx, repo.TableStock, repo.MatchStock(item.Team, item.Kit))
	if err != nil {
		return StepRefreshStock, err
	}

	available := row.Record.Int(item.Size)
	if item.Quantity > available {
		return StepRecheckStock, &models.InsufficientStockError{Team: item.Team, Kit: item.Kit, Size: item.Size, Available: available}
	}

	if err := s.repo.UpdateCell(ctx, row.Ref, item.Size, available-item.Quantity); err != nil {
		return StepDecrementSize, err
	}

	if row.Record.Has(repo.ColTotal) {
		if err := s.repo.UpdateCell(ctx, row.Ref, repo.ColTotal, row.Record.Int(repo.ColTotal)-item.Quantity); err != nil {
			return StepDecrementTotal, err
		}
	} else {
		s.logger.Warn("stock sheet has no Total column", zap.String("team", item.Team), zap.String("kit", item.Kit))
	}

	record := models.SaleRecord{
		Timestamp: now,
		Team:      item.Team,
		Kit:       item.Kit,
		Size:      item.Size,
		Quantity:  item.Quantity,
		SoldPrice: line.soldPrice,
		Discount:  discount,
		DealType:  req.DealType,
		BuyerName: req.Buyer,
		Total:     lineTotal,
	}
	if err := s.repo.AppendRow(ctx, repo.TableSales, saleRow(record)); err != nil {
		return StepAppendSale, err
	}

	if s.customers != nil {
		if err := s.customers.Upsert(ctx, req.Buyer, req.Contact, item.Quantity, lineTotal); err != nil {
			return StepUpdateCustomer, err
		}
	}

	return "", nil
}

// lineDiscount returns the discount charged against line i of n. Per line, every
// line carries the full discount; per transaction, only the last line does.
func (s *Service) lineDiscount(discount decimal.Decimal, i, n int) decimal.Decimal {
	if s.discountMode == config.DiscountPerTransaction && i != n-1 {
		return decimal.Zero
	}
	return discount
}

// LineTotal is sold price times quantity minus discount.
func LineTotal(soldPrice decimal.Decimal, quantity int, discount decimal.Decimal) decimal.Decimal {
	return soldPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
}

func saleRow(r models.SaleRecord) map[string]any {
	return map[string]any{
		repo.ColTimestamp: r.Timestamp,
		repo.ColTeam:      r.Team,
		repo.ColKit:       r.Kit,
		repo.ColSize:      r.Size,
		repo.ColQuantity:  r.Quantity,
		repo.ColSoldPrice: r.SoldPrice,
		repo.ColDiscount:  r.Discount,
		repo.ColDealType:  r.DealType,
		repo.ColBuyerName: r.BuyerName,
		repo.ColTotal:     r.Total,
	}
}

func findStock(stock *repo.Sheet, team, kit string) (repo.Row, bool) {
	if stock == nil {
		return repo.Row{}, false
	}
	match := repo.MatchStock(team, kit)
	for _, row := range stock.Rows {
		if match(row.Record) {
			return row, true
		}
	}
	return repo.Row{}, false
}

// IsValidation reports whether err means the sale was rejected before any write.
func IsValidation(err error) bool {
	var v *models.ValidationError
	return errors.As(err, &v)
}
