package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/peerauto/car-rental-api/internal/metrics"
	"github.com/peerauto/car-rental-api/internal/model"
	"github.com/peerauto/car-rental-api/internal/repository"
)

// AdminHandler groups the moderation and back-office endpoints.  All
// routes using it sit behind RequireRole("admin").
type AdminHandler struct {
	Listings *repository.ListingRepo
	Bookings *repository.BookingRepo
}

func NewAdminHandler(l *repository.ListingRepo, b *repository.BookingRepo) *AdminHandler {
	return &AdminHandler{Listings: l, Bookings: b}
}

type statusReq struct {
	Status string `json:"status"`
}

// ListPendingListings returns the moderation queue, oldest first.
func (h *AdminHandler) ListPendingListings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Listings.ListByStatus(ctx, model.ListingPending)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, l := range items {
		out = append(out, listingJSON(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": out, "count": len(out)})
}

// SetListingStatus records a moderation decision.  Admins may move a
// listing between any of the three states, which also covers
// re-queueing a rejected listing back to pending.
func (h *AdminHandler) SetListingStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidListingStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("status must be one of %s, %s, %s",
				model.ListingPending, model.ListingApproved, model.ListingRejected),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.SetStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}

	metrics.IncModerationDecision(req.Status)
	return c.JSON(http.StatusOK, listingJSON(l))
}

// ListBookingsByStatus returns all bookings in a given state, oldest
// first.  Defaults to pending when no status param is supplied.
func (h *AdminHandler) ListBookingsByStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = model.BookingPending
	}
	if !model.ValidBookingStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.ListByStatus(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items, "count": len(items)})
}

// SetBookingStatus is the admin override: any booking may be moved to
// any valid state, including out of cancelled or completed.
func (h *AdminHandler) SetBookingStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidBookingStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("status must be one of %s, %s, %s, %s",
				model.BookingPending, model.BookingConfirmed, model.BookingCancelled, model.BookingCompleted),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.SetStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	return c.JSON(http.StatusOK, bookingJSON(b))
}

// ExportBookings streams every booking as an xlsx spreadsheet.
func (h *AdminHandler) ExportBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	rows, err := h.Bookings.ListAllForExport(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Bookings"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Vehicle", "Renter", "Email", "Start", "End", "Total", "Status", "Created"}
	for i, hcell := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hcell)
	}
	for i, r := range rows {
		row := i + 2
		vals := []any{
			r.ID,
			r.Vehicle,
			r.RenterName,
			r.RenterEmail,
			r.StartDate,
			r.EndDate,
			float64(r.TotalPriceCents) / 100,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for j, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build spreadsheet failed"})
	}

	name := "bookings_" + time.Now().Format("20060102_150405") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
