package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/domain/models"
	"github.com/mamadbah2/kitstock/internal/repository/sheets"
	"github.com/mamadbah2/kitstock/internal/service/catalogue"
)

// DashboardProvider computes the dashboard figures.
type DashboardProvider interface {
	Dashboard(ctx context.Context) (models.DashboardMetrics, error)
}

// CatalogueProvider serves stock listings and the sale form.
type CatalogueProvider interface {
	List(ctx context.Context, query string) (catalogue.Listing, error)
	SaleForm(ctx context.Context) (catalogue.SaleForm, error)
	Items(ctx context.Context) ([]models.StockItem, error)
}

// SaleRecorder records multi-line sales.
type SaleRecorder interface {
	Record(ctx context.Context, req models.SaleRequest) (models.SaleReceipt, error)
}

// CustomerLister lists customers.
type CustomerLister interface {
	List(ctx context.Context) ([]models.Customer, error)
}

// Exporter streams a sheet as CSV.
type Exporter interface {
	Write(ctx context.Context, which string, w io.Writer) error
}

// StoreInspector lists worksheets for the debug endpoint.
type StoreInspector interface {
	Worksheets(ctx context.Context) ([]string, error)
}

// SnapshotLister reads dashboard history.
type SnapshotLister interface {
	RecentSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error)
}

// Dependencies groups what the handler needs.
type Dependencies struct {
	Dashboard DashboardProvider
	Catalogue CatalogueProvider
	Sales     SaleRecorder
	Customers CustomerLister
	Export    Exporter
	Store     StoreInspector
	// Snapshots is nil when snapshot history is disabled.
	Snapshots SnapshotLister
	// MaskedSheetKey is shown by the debug endpoint.
	MaskedSheetKey string
}

// Handler serves the HTML pages, the JSON API and the operational endpoints.
type Handler struct {
	deps   Dependencies
	logger *zap.Logger
}

// New constructs the HTTP handler adapter.
func New(deps Dependencies, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{deps: deps, logger: logger}
}

// failureStatus maps store errors to 503 and everything else to 500.
func failureStatus(err error) (int, string) {
	var connErr *sheets.StoreConnectionError
	if errors.As(err, &connErr) {
		return http.StatusServiceUnavailable, "service unavailable"
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

func (h *Handler) failPage(c *gin.Context, msg string, err error) {
	status, body := failureStatus(err)
	h.logger.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.String(status, body)
}

func (h *Handler) failJSON(c *gin.Context, msg string, err error) {
	status, body := failureStatus(err)
	h.logger.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(status, gin.H{"error": body})
}
