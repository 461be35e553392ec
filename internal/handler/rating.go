package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/metrics"
	"github.com/peerauto/car-rental-api/internal/model"
	"github.com/peerauto/car-rental-api/internal/repository"
)

// RatingHandler serves rating submission and listing.
type RatingHandler struct {
	Ratings  *repository.RatingRepo
	Listings *repository.ListingRepo
}

func NewRatingHandler(r *repository.RatingRepo, l *repository.ListingRepo) *RatingHandler {
	return &RatingHandler{Ratings: r, Listings: l}
}

type ratingReq struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// SubmitRating records the caller's score for a listing.  A user has
// at most one rating per listing; rating again replaces the previous
// score and comment in place.  The response carries the recomputed
// average and the full rating list.
func (h *RatingHandler) SubmitRating(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	var req ratingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidScore(req.Score) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("score must be between %d and %d", model.MinScore, model.MaxScore),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// existence check only; ratings are not gated on moderation state
	if _, err := h.Listings.GetByID(ctx, listingID); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Ratings.Upsert(ctx, listingID, uid, req.Score, strings.TrimSpace(req.Comment)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save rating failed"})
	}
	metrics.IncRatingSubmitted()

	ratings, err := h.Ratings.ListByListing(ctx, listingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, ratingJSON(r))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"listing_id":     listingID,
		"average_rating": model.AverageRating(ratings),
		"rating_count":   len(ratings),
		"ratings":        out,
	})
}

// ListRatings returns all ratings for a listing in submission order,
// plus the aggregate.
func (h *RatingHandler) ListRatings(c echo.Context) error {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if l.Status != model.ListingApproved && !canManageListing(c, l) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
	}

	ratings, err := h.Ratings.ListByListing(ctx, listingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, ratingJSON(r))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"listing_id":     listingID,
		"average_rating": model.AverageRating(ratings),
		"rating_count":   len(ratings),
		"ratings":        out,
	})
}
