package handlers

import (
	"io"
	"net/http"

	"github.com/2nas159/car-rental-app/internal/middleware"
	"github.com/2nas159/car-rental-app/internal/services"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxWebhookBody caps webhook payload reads; gateway events are small.
const maxWebhookBody = 65536

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateIntent opens a payment with the gateway for one of the renter's
// bookings and returns the client secret the frontend needs.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.PaymentIntentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	bookingID, err := primitive.ObjectIDFromHex(request.BookingID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	response, err := h.paymentService.CreateIntent(c.Request.Context(), userID, bookingID, request.Amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment intent created successfully", response)
}

// ConfirmPayment verifies the intent with the gateway and confirms the
// booking when the gateway reports success.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.PaymentConfirmRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	bookingID, err := primitive.ObjectIDFromHex(request.BookingID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	booking, err := h.paymentService.Confirm(c.Request.Context(), userID, bookingID, request.PaymentIntentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment confirmed successfully", booking)
}

// PaymentStatus reports the gateway-side status of a booking's payment.
func (h *PaymentHandler) PaymentStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	status, err := h.paymentService.Status(c.Request.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment status retrieved successfully", status)
}

// Webhook receives gateway events. The signature header is verified before
// anything in the body is acted on.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Webhook processed", nil)
}
