package router

import (
	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/handler"
	"github.com/peerauto/car-rental-api/internal/middleware"
	"github.com/peerauto/car-rental-api/internal/model"
)

// RegisterUser registers the authenticated endpoints shared by
// regular users and admins: managing their own listings, booking
// cars, rating and favorites.  Ownership checks happen inside the
// handlers; the role middleware only gates out anonymous callers.
func RegisterUser(e *echo.Echo, l *handler.ListingHandler, b *handler.BookingHandler,
	r *handler.RatingHandler, f *handler.FavoriteHandler, jwtSecret string) {

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)

	// Listings owned by the caller.  New listings always enter
	// moderation as pending.
	g.POST("/listings", l.CreateListing)
	g.PUT("/listings/:id", l.UpdateListing)
	g.DELETE("/listings/:id", l.DeleteListing)
	g.GET("/my/listings", l.ListMyListings)

	// Bookings.  Creation runs the locked overlap check; DELETE is
	// the renter-side cancel and only works on pending or confirmed.
	g.POST("/bookings", b.CreateBooking)
	g.GET("/my/bookings", b.ListMyBookings)
	g.GET("/bookings/:id", b.GetBooking)
	g.DELETE("/bookings/:id", b.CancelBooking)

	// One rating per user per listing; resubmitting replaces it.
	g.POST("/listings/:id/ratings", r.SubmitRating)

	// Favorites.
	g.POST("/favorites/:id", f.AddFavorite)
	g.DELETE("/favorites/:id", f.RemoveFavorite)
	g.GET("/favorites", f.ListFavorites)
}
