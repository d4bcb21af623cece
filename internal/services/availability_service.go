package services

import (
	"context"
	"fmt"
	"time"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/repositories/interfaces"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AvailabilityService interface {
	// SearchAvailable returns the listed cars at a location with no blocking
	// booking over the requested interval.
	SearchAvailable(ctx context.Context, location string, pickup, ret time.Time) ([]*models.Car, error)
	// IsCarAvailable checks a single car over an interval.
	IsCarAvailable(ctx context.Context, carID primitive.ObjectID, pickup, ret time.Time) (bool, error)
	// GetBookedRanges returns the occupied date ranges of one car for
	// calendar rendering. It is a public read and degrades to an empty list
	// when the store is unreachable.
	GetBookedRanges(ctx context.Context, carID primitive.ObjectID) []DateRange
}

type DateRange struct {
	PickupDate time.Time `json:"pickup_date"`
	ReturnDate time.Time `json:"return_date"`
}

type availabilityService struct {
	carRepo     interfaces.CarRepository
	bookingRepo interfaces.BookingRepository
	logger      *logger.Logger
}

func NewAvailabilityService(carRepo interfaces.CarRepository, bookingRepo interfaces.BookingRepository, logger *logger.Logger) AvailabilityService {
	return &availabilityService{
		carRepo:     carRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// validateInterval normalizes booking dates to date-only semantics and
// enforces that the return day comes strictly after the pickup day.
func validateInterval(pickup, ret time.Time) (time.Time, time.Time, error) {
	pickup = utils.TruncateToDay(pickup)
	ret = utils.TruncateToDay(ret)
	if !ret.After(pickup) {
		return pickup, ret, fmt.Errorf("%w: return date must be after pickup date", ErrValidation)
	}
	if utils.RentalDays(pickup, ret) > utils.MaxBookingDays {
		return pickup, ret, fmt.Errorf("%w: booking cannot exceed %d days", ErrValidation, utils.MaxBookingDays)
	}
	return pickup, ret, nil
}

func (s *availabilityService) SearchAvailable(ctx context.Context, location string, pickup, ret time.Time) ([]*models.Car, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrValidation)
	}
	pickup, ret, err := validateInterval(pickup, ret)
	if err != nil {
		return nil, err
	}

	cars, err := s.carRepo.GetListedByLocation(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars by location: %w", err)
	}
	if len(cars) == 0 {
		return []*models.Car{}, nil
	}

	carIDs := make([]primitive.ObjectID, 0, len(cars))
	for _, car := range cars {
		carIDs = append(carIDs, car.ID)
	}

	// One pass over the bookings collection for the whole candidate set.
	conflicting, err := s.bookingRepo.FindConflictingCarIDs(ctx, carIDs, pickup, ret)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting bookings: %w", err)
	}

	available := make([]*models.Car, 0, len(cars))
	for _, car := range cars {
		if _, taken := conflicting[car.ID]; !taken {
			available = append(available, car)
		}
	}
	return available, nil
}

func (s *availabilityService) IsCarAvailable(ctx context.Context, carID primitive.ObjectID, pickup, ret time.Time) (bool, error) {
	pickup, ret, err := validateInterval(pickup, ret)
	if err != nil {
		return false, err
	}

	overlapping, err := s.bookingRepo.FindOverlapping(ctx, carID, pickup, ret)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	return overlapping == nil, nil
}

func (s *availabilityService) GetBookedRanges(ctx context.Context, carID primitive.ObjectID) []DateRange {
	bookings, err := s.bookingRepo.GetActiveByCarID(ctx, carID)
	if err != nil {
		// Calendar reads must never fail the page; an empty calendar is the
		// harmless fallback.
		s.logger.WithCarID(carID).WithError(err).Warn("Failed to load booked ranges, returning empty")
		return []DateRange{}
	}

	ranges := make([]DateRange, 0, len(bookings))
	for _, b := range bookings {
		if !b.Blocks() {
			continue
		}
		ranges = append(ranges, DateRange{PickupDate: b.PickupDate, ReturnDate: b.ReturnDate})
	}
	return ranges
}
