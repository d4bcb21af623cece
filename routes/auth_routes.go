package routes

import (
	"github.com/2nas159/car-rental-app/internal/handlers"
	"github.com/2nas159/car-rental-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes wires registration, login and the profile endpoint.
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, jwtSecret string) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.AuthRequired(jwtSecret), authHandler.Me)
	}
}
