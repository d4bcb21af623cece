package handlers

import (
	"errors"
	"net/http"

	"github.com/2nas159/car-rental-app/internal/services"
	"github.com/2nas159/car-rental-app/internal/utils"

	"github.com/gin-gonic/gin"
)

// handleServiceError translates service-layer sentinel errors into the
// response envelope. Anything unrecognized is a 500 with no internals leaked.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrPaymentNotCompleted):
		utils.ErrorResponse(c, http.StatusBadRequest, "PAYMENT_NOT_COMPLETED", err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrInvalidCredentials)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrGateway):
		utils.ErrorResponse(c, http.StatusBadGateway, "GATEWAY_ERROR", utils.ErrPaymentFailed)
	case errors.Is(err, services.ErrSignature):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_SIGNATURE", "webhook signature verification failed")
	default:
		utils.InternalServerErrorResponse(c)
	}
}
