package router

import (
	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/handler"
)

// RegisterPublic registers the guest-facing catalogue endpoints.  No
// JWT or role middleware applies here; handlers only ever expose
// approved listings.  The optional cache middleware (Redis-backed,
// GET-only) is threaded in by the caller so it can be disabled via
// config without touching the route table.
func RegisterPublic(e *echo.Echo, s *handler.SearchHandler, l *handler.ListingHandler,
	r *handler.RatingHandler, b *handler.BookingHandler, cache echo.MiddlewareFunc) {

	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	// Catalogue search with filters and pagination.
	g.GET("/listings", s.SearchListings)
	// Single listing with its rating aggregate.
	g.GET("/listings/:id", l.GetListing)
	// All ratings for a listing, oldest first.
	g.GET("/listings/:id/ratings", r.ListRatings)
	// Date-range availability probe; start_date/end_date query params.
	g.GET("/listings/:id/availability", b.CheckAvailability)
}
