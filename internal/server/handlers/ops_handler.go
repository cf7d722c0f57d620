package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/service/export"
)

// Health answers without touching the store.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// DebugSheet shows the masked spreadsheet key and whether the spreadsheet opens.
// Failure details are logged, never returned.
func (h *Handler) DebugSheet(c *gin.Context) {
	titles, err := h.deps.Store.Worksheets(c.Request.Context())
	if err != nil {
		h.logger.Warn("spreadsheet check failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"sheet_key": h.deps.MaskedSheetKey,
			"status":    "error",
			"error":     "unable to open spreadsheet",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sheet_key":  h.deps.MaskedSheetKey,
		"status":     "ok",
		"worksheets": titles,
	})
}

// Export downloads the stock or sales sheet as CSV.
func (h *Handler) Export(c *gin.Context) {
	which := c.Param("which")

	var buf bytes.Buffer
	if err := h.deps.Export.Write(c.Request.Context(), which, &buf); err != nil {
		if errors.Is(err, export.ErrUnknownExportTarget) {
			c.String(http.StatusBadRequest, "Unknown export")
			return
		}
		h.failPage(c, "failed exporting sheet", err)
		return
	}

	c.Header("Content-Disposition", "attachment;filename="+export.Filename(which))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
