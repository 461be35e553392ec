package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/metrics"
	"github.com/peerauto/car-rental-api/internal/model"
	"github.com/peerauto/car-rental-api/internal/notify"
	"github.com/peerauto/car-rental-api/internal/queue"
	"github.com/peerauto/car-rental-api/internal/repository"
	queuepub "github.com/peerauto/car-rental-api/internal/service"
)

// BookingHandler serves renter-facing booking endpoints: reserving a
// car for a date range, checking availability, listing and cancelling.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Listings *repository.ListingRepo
	Notifier *notify.Notifier
}

func NewBookingHandler(b *repository.BookingRepo, l *repository.ListingRepo, n *notify.Notifier) *BookingHandler {
	return &BookingHandler{Bookings: b, Listings: l, Notifier: n}
}

type createBookingReq struct {
	ListingID uint64 `json:"listing_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CreateBooking reserves a listing for [start_date, end_date].
//
// The overlap check and the insert run inside one transaction that
// first locks the listing row with SELECT ... FOR UPDATE, so two
// concurrent requests for the same car serialize and the loser sees
// the winner's row.  Date ranges are closed intervals: a booking
// ending on a given day blocks another one starting that same day.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ListingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "listing_id required"})
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	l, err := h.Listings.GetForUpdateTx(ctx, tx, req.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// is_available is a display hint only; booking availability is
	// decided purely by the overlap check below.
	if l.Status != model.ListingApproved {
		return c.JSON(http.StatusConflict, echo.Map{"error": "listing is not open for booking"})
	}
	taken, err := h.Bookings.OverlapExistsTx(ctx, tx, req.ListingID, start, end, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
	}
	if taken {
		metrics.IncBookingOverlapRejected()
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrOverlap.Error()})
	}

	b := model.Booking{
		ListingID:       req.ListingID,
		UserID:          uid,
		StartDate:       start,
		EndDate:         end,
		TotalPriceCents: model.TotalPriceCents(start, end, l.PricePerDayCents),
		Status:          model.BookingConfirmed,
	}
	if err := h.Bookings.CreateTx(ctx, tx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	metrics.IncBookingCreated(b.Status)

	vehicle := l.Brand + " " + l.Model
	event := queue.BookingConfirmedEvent{
		BookingID:       b.ID,
		ListingID:       l.ID,
		RenterID:        uid,
		Vehicle:         vehicle,
		Location:        l.Location,
		StartDate:       b.StartDate.Format(dateFmt),
		EndDate:         b.EndDate.Format(dateFmt),
		TotalPriceCents: b.TotalPriceCents,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := queuepub.PublishBookingConfirmed(context.Background(), event); err != nil {
		log.Printf("booking %d created but event publish failed: %v", b.ID, err)
	}
	h.Notifier.BookingConfirmed(b.ID, vehicle, event.StartDate, event.EndDate, b.TotalPriceCents)

	return c.JSON(http.StatusCreated, bookingJSON(b))
}

// CheckAvailability answers whether a listing is free over a range
// without creating anything.  Dates come as query params.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	start, end, err := parseDateRange(c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	available := l.Status == model.ListingApproved
	if available {
		taken, err := h.Bookings.OverlapExists(ctx, id, start, end, 0)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
		}
		available = !taken
	}

	resp := echo.Map{
		"listing_id": id,
		"start_date": start.Format(dateFmt),
		"end_date":   end.Format(dateFmt),
		"available":  available,
	}
	if available {
		resp["rental_days"] = model.RentalDays(start, end)
		resp["total_price_cents"] = model.TotalPriceCents(start, end, l.PricePerDayCents)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListMyBookings returns the caller's bookings, newest first.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items, "count": len(items)})
}

// GetBooking returns one booking.  Renters only see their own;
// admins see any.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	role, _ := c.Get("role").(string)
	if b.UserID != uid && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	return c.JSON(http.StatusOK, bookingJSON(b))
}

// CancelBooking lets the renter cancel their own pending or confirmed
// booking, freeing the dates.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.CancelForUser(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking can no longer be cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	metrics.IncBookingCancelled()
	return c.JSON(http.StatusOK, bookingJSON(b))
}
