package routes

import (
	"github.com/2nas159/car-rental-app/internal/handlers"
	"github.com/2nas159/car-rental-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes wires renter bookings, owner request handling and the
// owner dashboard.
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, jwtSecret string) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(jwtSecret))
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("/me", bookingHandler.ListMyBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PUT("/:id/status", bookingHandler.UpdateBookingStatus)
		bookings.DELETE("/:id", bookingHandler.DeleteBooking)
	}

	owner := r.Group("/owner")
	owner.Use(middleware.AuthRequired(jwtSecret), middleware.OwnerRequired())
	{
		owner.GET("/bookings", bookingHandler.ListOwnerBookings)
		owner.GET("/dashboard", bookingHandler.OwnerDashboard)
	}
}
