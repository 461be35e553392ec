package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/repository"
)

// SearchHandler serves the public listing catalogue.
type SearchHandler struct {
	Listings *repository.ListingRepo
}

func NewSearchHandler(l *repository.ListingRepo) *SearchHandler {
	return &SearchHandler{Listings: l}
}

// SearchListings is the public catalogue endpoint.  Only approved
// listings are ever returned.  Supported query params: brand, model,
// location, year, min_price_cents, max_price_cents, q (free text),
// page, page_size (1..100, default 20).
func (h *SearchHandler) SearchListings(c echo.Context) error {
	q := repository.ListingSearchQuery{
		Brand:    strings.TrimSpace(c.QueryParam("brand")),
		Model:    strings.TrimSpace(c.QueryParam("model")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Page:     1,
		PageSize: 20,
	}
	if v := c.QueryParam("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Year = n
		}
	}
	if v := c.QueryParam("min_price_cents"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			q.MinPriceCents = n
		}
	}
	if v := c.QueryParam("max_price_cents"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			q.MaxPriceCents = n
		}
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	if v := c.QueryParam("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			switch {
			case n < 1:
				q.PageSize = 1
			case n > 100:
				q.PageSize = 100
			default:
				q.PageSize = n
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Listings.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"listings":  rows,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}
