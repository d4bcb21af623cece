package routes

import (
	"github.com/2nas159/car-rental-app/internal/handlers"
	"github.com/2nas159/car-rental-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCarRoutes wires public browsing and owner fleet management.
func SetupCarRoutes(r *gin.RouterGroup, carHandler *handlers.CarHandler, uploadHandler *handlers.UploadHandler, jwtSecret string) {
	// Public browsing routes, no auth required.
	cars := r.Group("/cars")
	{
		cars.GET("", carHandler.ListCars)
		cars.GET("/search", carHandler.SearchAvailable)
		cars.GET("/:id", carHandler.GetCar)
		cars.GET("/:id/booked-dates", carHandler.GetBookedDates)
	}

	// Owner fleet management.
	owner := r.Group("/owner/cars")
	owner.Use(middleware.AuthRequired(jwtSecret), middleware.OwnerRequired())
	{
		owner.POST("", carHandler.CreateCar)
		owner.GET("", carHandler.ListOwnerCars)
		owner.PUT("/:id", carHandler.UpdateCar)
		owner.PUT("/:id/availability", carHandler.ToggleAvailability)
		owner.DELETE("/:id", carHandler.DeleteCar)
		owner.POST("/images", uploadHandler.UploadImage)
	}
}
