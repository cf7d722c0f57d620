package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/domain/models"
)

// APIDashboard returns the dashboard metrics as JSON.
func (h *Handler) APIDashboard(c *gin.Context) {
	metrics, err := h.deps.Dashboard.Dashboard(c.Request.Context())
	if err != nil {
		h.failJSON(c, "failed computing dashboard", err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// APICatalogue returns the filtered stock rows as JSON.
func (h *Handler) APICatalogue(c *gin.Context) {
	listing, err := h.deps.Catalogue.List(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		h.failJSON(c, "failed loading catalogue", err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// APIStock returns the stock rows as typed items with per-size quantities.
func (h *Handler) APIStock(c *gin.Context) {
	items, err := h.deps.Catalogue.Items(c.Request.Context())
	if err != nil {
		h.failJSON(c, "failed loading stock", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// APICustomers returns every customer as JSON.
func (h *Handler) APICustomers(c *gin.Context) {
	customers, err := h.deps.Customers.List(c.Request.Context())
	if err != nil {
		h.failJSON(c, "failed loading customers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// APIRecordSale records a sale submitted as JSON.
func (h *Handler) APIRecordSale(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	receipt, err := h.deps.Sales.Record(c.Request.Context(), req)
	if err != nil {
		var validation *models.ValidationError
		var partial *models.CommitError
		switch {
		case errors.As(err, &validation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":    "sale rejected",
				"problems": validation.Messages(),
			})
		case errors.As(err, &partial):
			h.logger.Error("sale partially recorded", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "sale partially recorded",
				"receipt": partial.Receipt,
			})
		default:
			h.failJSON(c, "failed recording sale", err)
		}
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

const (
	defaultSnapshotLimit = 30
	maxSnapshotLimit     = 365
)

// APISnapshots returns the most recent dashboard snapshots.
func (h *Handler) APISnapshots(c *gin.Context) {
	if h.deps.Snapshots == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot history is disabled"})
		return
	}

	limit := int64(defaultSnapshotLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxSnapshotLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 365"})
			return
		}
		limit = n
	}

	snapshots, err := h.deps.Snapshots.RecentSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.failJSON(c, "failed loading snapshots", err)
		return
	}
	if snapshots == nil {
		snapshots = []models.DashboardSnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}
