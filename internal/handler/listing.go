package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/model"
	"github.com/peerauto/car-rental-api/internal/notify"
	"github.com/peerauto/car-rental-api/internal/repository"
)

// ListingHandler serves owner-facing listing CRUD plus the public
// read endpoints.
type ListingHandler struct {
	Listings *repository.ListingRepo
	Ratings  *repository.RatingRepo
	Notifier *notify.Notifier
}

func NewListingHandler(l *repository.ListingRepo, r *repository.RatingRepo, n *notify.Notifier) *ListingHandler {
	return &ListingHandler{Listings: l, Ratings: r, Notifier: n}
}

type listingReq struct {
	Brand            string  `json:"brand"`
	Model            string  `json:"model"`
	Year             uint16  `json:"year"`
	PricePerDayCents uint32  `json:"price_per_day_cents"`
	PricePerDay      float64 `json:"price_per_day"` // accepted as fallback, converted to cents
	Description      string  `json:"description"`
	Location         string  `json:"location"`
	ImageURL         string  `json:"image_url"`
	IsAvailable      *bool   `json:"is_available"`
}

// priceCents resolves the submitted price, preferring the integer
// cents field over the float convenience field.
func (r listingReq) priceCents() uint32 {
	if r.PricePerDayCents > 0 {
		return r.PricePerDayCents
	}
	if r.PricePerDay > 0 {
		return uint32(r.PricePerDay*100 + 0.5)
	}
	return 0
}

// CreateListing registers a new car.  Every new listing enters the
// moderation queue as pending regardless of who created it.
func (h *ListingHandler) CreateListing(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Brand = strings.TrimSpace(req.Brand)
	req.Model = strings.TrimSpace(req.Model)
	req.Location = strings.TrimSpace(req.Location)
	if req.Brand == "" || req.Model == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "brand/model/location required"})
	}
	if req.Year < 1900 || req.Year > 2100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
	}
	price := req.priceCents()
	if price == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_day_cents must be positive"})
	}

	l := model.Listing{
		OwnerID:          uid,
		Brand:            req.Brand,
		Model:            req.Model,
		Year:             req.Year,
		PricePerDayCents: price,
		Description:      strings.TrimSpace(req.Description),
		Location:         req.Location,
		ImageURL:         strings.TrimSpace(req.ImageURL),
		IsAvailable:      true,
	}
	if req.IsAvailable != nil {
		l.IsAvailable = *req.IsAvailable
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Listings.Create(ctx, &l); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create listing failed"})
	}

	h.Notifier.ListingSubmitted(l.ID, l.Brand+" "+l.Model, l.Location)

	return c.JSON(http.StatusCreated, listingJSON(l))
}

// GetListing returns one listing.  Listings still in moderation are
// visible only to their owner and admins; everyone else gets 404, the
// same as for a listing that does not exist.
func (h *ListingHandler) GetListing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
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
	if l.Status != model.ListingApproved && !canManageListing(c, l) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
	}

	ratings, err := h.Ratings.ListByListing(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := listingJSON(l)
	out["average_rating"] = model.AverageRating(ratings)
	out["rating_count"] = len(ratings)
	return c.JSON(http.StatusOK, out)
}

// UpdateListing edits a listing's descriptive fields.  Only the owner
// or an admin may edit; moderation status is never touched here.
func (h *ListingHandler) UpdateListing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	var req listingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
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
	if !canManageListing(c, l) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your listing"})
	}

	if v := strings.TrimSpace(req.Brand); v != "" {
		l.Brand = v
	}
	if v := strings.TrimSpace(req.Model); v != "" {
		l.Model = v
	}
	if req.Year >= 1900 && req.Year <= 2100 {
		l.Year = req.Year
	}
	if p := req.priceCents(); p > 0 {
		l.PricePerDayCents = p
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		l.Description = v
	}
	if v := strings.TrimSpace(req.Location); v != "" {
		l.Location = v
	}
	if v := strings.TrimSpace(req.ImageURL); v != "" {
		l.ImageURL = v
	}
	if req.IsAvailable != nil {
		l.IsAvailable = *req.IsAvailable
	}

	if err := h.Listings.Update(ctx, &l); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update listing failed"})
	}
	return c.JSON(http.StatusOK, listingJSON(l))
}

// DeleteListing removes a listing and, via FK cascade, its ratings,
// bookings and favorites.
func (h *ListingHandler) DeleteListing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
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
	if !canManageListing(c, l) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your listing"})
	}
	if err := h.Listings.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete listing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "listing deleted"})
}

// ListMyListings returns every listing the caller owns, newest first,
// including ones still pending or rejected.
func (h *ListingHandler) ListMyListings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Listings.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, l := range items {
		out = append(out, listingJSON(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": out, "count": len(out)})
}

// canManageListing reports whether the caller owns the listing or is
// an admin.  Unauthenticated callers never qualify.
func canManageListing(c echo.Context, l model.Listing) bool {
	uid, err := getUserID(c)
	if err != nil {
		return false
	}
	if role, ok := c.Get("role").(string); ok && role == model.RoleAdmin {
		return true
	}
	return uid == l.OwnerID
}
