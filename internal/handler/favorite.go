package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/model"
	"github.com/peerauto/car-rental-api/internal/repository"
)

// FavoriteHandler serves the per-user favorites list.
type FavoriteHandler struct {
	Favorites *repository.FavoriteRepo
	Listings  *repository.ListingRepo
}

func NewFavoriteHandler(f *repository.FavoriteRepo, l *repository.ListingRepo) *FavoriteHandler {
	return &FavoriteHandler{Favorites: f, Listings: l}
}

// AddFavorite bookmarks an approved listing for the caller.
func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
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
	if l.Status != model.ListingApproved {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
	}

	if err := h.Favorites.Add(ctx, uid, listingID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFavorite) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "listing already in favorites"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add favorite failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added to favorites", "listing_id": listingID})
}

// RemoveFavorite drops a listing from the caller's favorites.
func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Favorites.Remove(ctx, uid, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFavorite) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "listing not in favorites"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove favorite failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed from favorites", "listing_id": listingID})
}

// ListFavorites returns the caller's favorite listings with rating
// aggregates, most recently added first.
func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Favorites.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favorites": items, "count": len(items)})
}
