package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Dashboard renders the headline figures, the low stock list and revenue by team.
func (h *Handler) Dashboard(c *gin.Context) {
	metrics, err := h.deps.Dashboard.Dashboard(c.Request.Context())
	if err != nil {
		h.failPage(c, "failed computing dashboard", err)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":   "Dashboard",
		"Metrics": metrics,
	})
}

// Catalogue renders the stock sheet, filtered by the q query parameter.
func (h *Handler) Catalogue(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	listing, err := h.deps.Catalogue.List(c.Request.Context(), query)
	if err != nil {
		h.failPage(c, "failed loading catalogue", err)
		return
	}

	c.HTML(http.StatusOK, "catalogue.html", gin.H{
		"Title":   "Catalogue",
		"Query":   query,
		"Listing": listing,
	})
}

// Customers renders the customers sheet.
func (h *Handler) Customers(c *gin.Context) {
	customers, err := h.deps.Customers.List(c.Request.Context())
	if err != nil {
		h.failPage(c, "failed loading customers", err)
		return
	}

	c.HTML(http.StatusOK, "customers.html", gin.H{
		"Title":     "Customers",
		"Customers": customers,
	})
}
