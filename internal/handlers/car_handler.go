package handlers

import (
	"time"

	"github.com/2nas159/car-rental-app/internal/middleware"
	"github.com/2nas159/car-rental-app/internal/services"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarHandler struct {
	carService          services.CarService
	availabilityService services.AvailabilityService
}

func NewCarHandler(carService services.CarService, availabilityService services.AvailabilityService) *CarHandler {
	return &CarHandler{
		carService:          carService,
		availabilityService: availabilityService,
	}
}

// CreateCar lists a new car for the authenticated owner.
func (h *CarHandler) CreateCar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.CarCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	car, err := h.carService.Create(c.Request.Context(), userID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Car listed successfully", car)
}

// ListCars returns a paginated public listing.
func (h *CarHandler) ListCars(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	cars, total, err := h.carService.List(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Cars retrieved successfully", cars, &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
		Count:      len(cars),
	})
}

// GetCar returns one car by ID.
func (h *CarHandler) GetCar(c *gin.Context) {
	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	car, err := h.carService.GetByID(c.Request.Context(), carID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Car retrieved successfully", car)
}

// ListOwnerCars returns the authenticated owner's cars.
func (h *CarHandler) ListOwnerCars(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	cars, err := h.carService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Cars retrieved successfully", cars)
}

// UpdateCar applies partial updates to an owned car.
func (h *CarHandler) UpdateCar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	var request validators.CarUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	car, err := h.carService.Update(c.Request.Context(), userID, carID, &request)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Car updated successfully", car)
}

// ToggleAvailability flips the owner's listing toggle.
func (h *CarHandler) ToggleAvailability(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	var request struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	car, err := h.carService.SetAvailability(c.Request.Context(), userID, carID, request.IsAvailable)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Availability updated successfully", car)
}

// DeleteCar removes an owned listing.
func (h *CarHandler) DeleteCar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	if err := h.carService.Delete(c.Request.Context(), userID, carID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Car deleted successfully", nil)
}

// SearchAvailable returns cars free over the requested interval at a
// location. Dates use the YYYY-MM-DD form.
func (h *CarHandler) SearchAvailable(c *gin.Context) {
	location := c.Query("location")
	pickup, err := time.Parse("2006-01-02", c.Query("pickup_date"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pickup_date, expected YYYY-MM-DD")
		return
	}
	ret, err := time.Parse("2006-01-02", c.Query("return_date"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid return_date, expected YYYY-MM-DD")
		return
	}

	cars, err := h.availabilityService.SearchAvailable(c.Request.Context(), location, pickup, ret)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Available cars retrieved successfully", cars)
}

// GetBookedDates returns the occupied ranges for one car's calendar. This is
// a public read and never errors; a store problem yields an empty list.
func (h *CarHandler) GetBookedDates(c *gin.Context) {
	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car ID")
		return
	}

	ranges := h.availabilityService.GetBookedRanges(c.Request.Context(), carID)
	utils.SuccessResponse(c, "Booked dates retrieved successfully", ranges)
}
