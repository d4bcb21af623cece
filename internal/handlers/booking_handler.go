package handlers

import (
	"github.com/2nas159/car-rental-app/internal/middleware"
	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/services"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking places a pending booking for the authenticated renter.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.BookingCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), userID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking created successfully", booking)
}

// GetBooking returns one booking to a participant.
func (h *BookingHandler) GetBooking(c *gin.Context) {
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

	booking, err := h.bookingService.GetByID(c.Request.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", booking)
}

// ListMyBookings returns the authenticated renter's bookings.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	bookings, err := h.bookingService.ListForRenter(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bookings retrieved successfully", bookings)
}

// ListOwnerBookings returns bookings against the owner's fleet, optionally
// filtered to pending requests with ?status=pending.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var (
		bookings []*models.Booking
		err      error
	)
	if c.Query("status") == string(models.BookingStatusPending) {
		bookings, err = h.bookingService.ListOwnerPending(c.Request.Context(), userID)
	} else {
		bookings, err = h.bookingService.ListForOwner(c.Request.Context(), userID)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bookings retrieved successfully", bookings)
}

// UpdateBookingStatus transitions a booking along the status lattice.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
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

	var request validators.BookingStatusUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), userID, bookingID, models.BookingStatus(request.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking status updated successfully", booking)
}

// DeleteBooking removes an unpaid booking record.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
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

	if err := h.bookingService.Delete(c.Request.Context(), userID, bookingID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking deleted successfully", nil)
}

// OwnerDashboard returns the owner's aggregate metrics.
func (h *BookingHandler) OwnerDashboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	data, err := h.bookingService.OwnerDashboard(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Dashboard retrieved successfully", data)
}
