package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/domain/models"
	"github.com/mamadbah2/kitstock/internal/service/catalogue"
)

// SaleForm renders the multi-line sale form with any pending flash messages.
func (h *Handler) SaleForm(c *gin.Context) {
	flashes := popFlashes(c)

	form, err := h.deps.Catalogue.SaleForm(c.Request.Context())
	if err != nil {
		h.failPage(c, "failed loading sale form", err)
		return
	}

	c.HTML(http.StatusOK, "record_sale.html", gin.H{
		"Title":   "Record sale",
		"Flashes": flashes,
		"Form":    form,
	})
}

// RecordSale handles the sale form submission. Rejected sales go back to the form
// with every problem flashed; recorded sales render a confirmation.
func (h *Handler) RecordSale(c *gin.Context) {
	req, problems := parseSaleForm(c)
	if len(problems) > 0 {
		h.logger.Info("sale form rejected", zap.Strings("problems", problems))
		setFlashes(c, dangerFlashes(problems))
		c.Redirect(http.StatusSeeOther, "/record-sale")
		return
	}

	receipt, err := h.deps.Sales.Record(c.Request.Context(), req)
	if err != nil {
		var validation *models.ValidationError
		var partial *models.CommitError
		switch {
		case errors.As(err, &validation):
			setFlashes(c, dangerFlashes(validation.Messages()))
			c.Redirect(http.StatusSeeOther, "/record-sale")
		case errors.As(err, &partial):
			h.logger.Error("sale partially recorded", zap.Error(err))
			c.HTML(http.StatusBadGateway, "sale_confirmation.html", gin.H{
				"Title":   "Sale incomplete",
				"Receipt": partial.Receipt,
				"Flashes": []Flash{{Kind: FlashDanger, Message: fmt.Sprintf(
					"The sale was only partly recorded: %d of %d lines were saved. Check the sheet before retrying.",
					partial.Receipt.Committed(), len(partial.Receipt.Lines))}},
			})
		default:
			h.failPage(c, "failed recording sale", err)
		}
		return
	}

	c.HTML(http.StatusOK, "sale_confirmation.html", gin.H{
		"Title":   "Sale recorded",
		"Receipt": receipt,
		"Flashes": []Flash{{Kind: FlashSuccess, Message: "Sale recorded. Total: " + receipt.Total.StringFixed(2)}},
	})
}

// parseSaleForm reads the parallel form arrays into a sale request. Lines without
// an item are ignored so blank rows added in the browser do not count. Values that
// cannot be parsed come back as problems; quantities that fail to parse are left at
// zero for the sale service to reject.
func parseSaleForm(c *gin.Context) (models.SaleRequest, []string) {
	var teams, kits []string
	if combined := c.PostFormArray("combined[]"); len(combined) > 0 {
		for _, v := range combined {
			team, kit := catalogue.ParseCombined(v)
			teams = append(teams, team)
			kits = append(kits, kit)
		}
	} else {
		teams = c.PostFormArray("team[]")
		kits = c.PostFormArray("kit[]")
	}
	sizes := c.PostFormArray("size[]")
	quantities := c.PostFormArray("quantity[]")
	prices := c.PostFormArray("sold_price[]")

	req := models.SaleRequest{
		Buyer:    strings.TrimSpace(c.PostForm("buyer")),
		Contact:  strings.TrimSpace(c.PostForm("contact")),
		DealType: strings.TrimSpace(c.PostForm("deal_type")),
		Discount: decimal.Zero,
	}

	var problems []string
	if raw := strings.TrimSpace(c.PostForm("discount")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Invalid discount %q", raw))
		} else {
			req.Discount = d
		}
	}

	for i, team := range teams {
		if strings.TrimSpace(team) == "" {
			continue
		}
		line := models.LineItem{
			Team: team,
			Kit:  valueAt(kits, i),
			Size: strings.TrimSpace(valueAt(sizes, i)),
		}
		line.Quantity, _ = strconv.Atoi(strings.TrimSpace(valueAt(quantities, i)))

		if raw := strings.TrimSpace(valueAt(prices, i)); raw != "" {
			p, err := decimal.NewFromString(raw)
			if err != nil {
				problems = append(problems, fmt.Sprintf("Invalid sold price %q for %s %s", raw, line.Team, line.Kit))
				continue
			}
			line.SoldPrice = &p
		}
		req.Lines = append(req.Lines, line)
	}

	return req, problems
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
