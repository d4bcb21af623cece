package routes

import (
	"github.com/2nas159/car-rental-app/internal/handlers"
	"github.com/2nas159/car-rental-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes wires renter-facing payment endpoints plus the public
// gateway webhook.
func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, jwtSecret string) {
	// The webhook authenticates by signature, not by bearer token.
	r.POST("/webhooks/stripe", paymentHandler.Webhook)

	payments := r.Group("/payments")
	payments.Use(middleware.AuthRequired(jwtSecret))
	{
		payments.POST("/intent", paymentHandler.CreateIntent)
		payments.POST("/confirm", paymentHandler.ConfirmPayment)
		payments.GET("/bookings/:id/status", paymentHandler.PaymentStatus)
	}
}
