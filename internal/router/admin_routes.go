package router

import (
	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/handler"
	"github.com/peerauto/car-rental-api/internal/middleware"
	"github.com/peerauto/car-rental-api/internal/model"
)

// RegisterAdmin registers the moderation and back-office endpoints.
// Everything here requires a valid JWT carrying the admin role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// Moderation queue and decisions.
	g.GET("/listings/pending", a.ListPendingListings)
	g.PUT("/listings/:id/status", a.SetListingStatus)

	// Booking oversight.  The status override is unrestricted and can
	// move a booking out of a terminal state.
	g.GET("/bookings", a.ListBookingsByStatus)
	g.PUT("/bookings/:id/status", a.SetBookingStatus)
	g.GET("/bookings/export", a.ExportBookings)
}
