package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/domain/models"
	repo "github.com/mamadbah2/kitstock/internal/repository/sheets"
)

// Service maintains the Customers sheet.
type Service struct {
	repo   repo.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a customer service.
func NewService(repository repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger, now: time.Now}
}

// Upsert adds to the running totals of an existing customer, matched by name
// ignoring case and surrounding spaces, or appends a new customer row.
func (s *Service) Upsert(ctx context.Context, name, contact string, addCount int, addSpent decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ErrBuyerRequired
	}
	now := s.now().UTC()

	row, err := s.repo.FindRow(ctx, repo.TableCustomers, repo.MatchCustomer(name))
	switch {
	case errors.Is(err, repo.ErrRowNotFound):
		return s.create(ctx, name, contact, addCount, addSpent, now)
	case err != nil:
		return fmt.Errorf("lookup customer %q: %w", name, err)
	}

	purchases := row.Record.Int(repo.ColTotalPurchases) + addCount
	spent := row.Record.Decimal(repo.ColTotalSpent).Add(addSpent)

	if err := s.repo.UpdateCell(ctx, row.Ref, repo.ColTotalPurchases, purchases); err != nil {
		return fmt.Errorf("update purchases of %q: %w", name, err)
	}
	if err := s.repo.UpdateCell(ctx, row.Ref, repo.ColTotalSpent, spent); err != nil {
		return fmt.Errorf("update spent of %q: %w", name, err)
	}
	if err := s.repo.UpdateCell(ctx, row.Ref, repo.ColLastPurchase, now); err != nil {
		return fmt.Errorf("update last purchase of %q: %w", name, err)
	}
	if contact = strings.TrimSpace(contact); contact != "" && row.Record.Get(repo.ColContact) == "" {
		if err := s.repo.UpdateCell(ctx, row.Ref, repo.ColContact, contact); err != nil {
			return fmt.Errorf("update contact of %q: %w", name, err)
		}
	}

	s.logger.Debug("customer updated", zap.String("name", name), zap.Int("purchases", purchases), zap.String("spent", spent.String()))
	return nil
}

func (s *Service) create(ctx context.Context, name, contact string, count int, spent decimal.Decimal, now time.Time) error {
	err := s.repo.AppendRow(ctx, repo.TableCustomers, map[string]any{
		repo.ColName:           name,
		repo.ColContact:        strings.TrimSpace(contact),
		repo.ColTotalPurchases: count,
		repo.ColTotalSpent:     spent,
		repo.ColLastPurchase:   now,
	})
	if err != nil {
		return fmt.Errorf("create customer %q: %w", name, err)
	}

	s.logger.Info("customer created", zap.String("name", name))
	return nil
}

// List returns every customer in sheet order.
func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	sheet, err := s.repo.ReadTable(ctx, repo.TableCustomers)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	out := make([]models.Customer, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		c := models.Customer{
			Name:           row.Record.Get(repo.ColName),
			Contact:        row.Record.Get(repo.ColContact),
			TotalPurchases: row.Record.Int(repo.ColTotalPurchases),
			TotalSpent:     row.Record.Decimal(repo.ColTotalSpent),
		}
		if ts, err := time.Parse(repo.TimestampLayout, row.Record.Get(repo.ColLastPurchase)); err == nil {
			c.LastPurchase = &ts
		}
		out = append(out, c)
	}
	return out, nil
}
