package catalogue

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/domain/models"
	repo "github.com/mamadbah2/kitstock/internal/repository/sheets"
)

// CombinedSeparator joins team and kit in the sale form's item selector.
const CombinedSeparator = "|||"

// Option is one entry of the sale form's item selector.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Listing is a filtered view of the Stock sheet.
type Listing struct {
	Columns []string      `json:"columns"`
	Rows    []repo.Record `json:"rows"`
}

// SaleForm holds what the sale form needs to render.
type SaleForm struct {
	Options []Option `json:"options"`
	Sizes   []string `json:"sizes"`
}

// Service serves the stock catalogue.
type Service struct {
	repo   repo.Repository
	logger *zap.Logger
}

// NewService wires a catalogue service.
func NewService(repository repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger}
}

// List returns stock rows whose team or kit contains query, ignoring case. An
// empty query returns everything.
func (s *Service) List(ctx context.Context, query string) (Listing, error) {
	sheet, err := s.repo.ReadTable(ctx, repo.TableStock)
	if err != nil {
		return Listing{}, fmt.Errorf("load stock: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	listing := Listing{Columns: sheet.Headers, Rows: []repo.Record{}}
	for _, row := range sheet.Rows {
		if q == "" ||
			strings.Contains(strings.ToLower(row.Record[repo.ColTeam]), q) ||
			strings.Contains(strings.ToLower(row.Record[repo.ColKit]), q) {
			listing.Rows = append(listing.Rows, row.Record)
		}
	}
	return listing, nil
}

// Items returns the stock rows as typed items.
func (s *Service) Items(ctx context.Context) ([]models.StockItem, error) {
	sheet, err := s.repo.ReadTable(ctx, repo.TableStock)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}

	sizes := SizeColumns(sheet)
	items := make([]models.StockItem, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		item := models.StockItem{
			Team:  row.Record.Get(repo.ColTeam),
			Kit:   row.Record.Get(repo.ColKit),
			Sizes: make(map[string]int, len(sizes)),
			Total: row.Record.Int(repo.ColTotal),
			Price: row.Record.Decimal(repo.ColPrice),
		}
		for _, size := range sizes {
			item.Sizes[size] = row.Record.Int(size)
		}
		items = append(items, item)
	}
	return items, nil
}

// SaleForm builds the deduplicated item options and the size choices.
func (s *Service) SaleForm(ctx context.Context) (SaleForm, error) {
	sheet, err := s.repo.ReadTable(ctx, repo.TableStock)
	if err != nil {
		return SaleForm{}, fmt.Errorf("load stock: %w", err)
	}

	form := SaleForm{Options: []Option{}, Sizes: SizeColumns(sheet)}
	seen := make(map[string]struct{})
	for _, row := range sheet.Rows {
		team, kit := row.Record[repo.ColTeam], row.Record[repo.ColKit]
		value := team + CombinedSeparator + kit
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		form.Options = append(form.Options, Option{Value: value, Label: strings.TrimSpace(team + " " + kit)})
	}
	return form, nil
}

// SizeColumns returns the size headers of the Stock sheet in sheet order.
func SizeColumns(sheet *repo.Sheet) []string {
	sizes := []string{}
	for _, h := range sheet.Headers {
		if models.IsSizeColumn(h) {
			sizes = append(sizes, h)
		}
	}
	return sizes
}

// ParseCombined splits a "Team|||Kit" selector value. Values without the
// separator fall back to "Team - Kit", then to the whole value as the team.
func ParseCombined(value string) (team, kit string) {
	if t, k, ok := strings.Cut(value, CombinedSeparator); ok {
		return t, k
	}
	if t, k, ok := strings.Cut(value, " - "); ok {
		return t, k
	}
	return value, ""
}
