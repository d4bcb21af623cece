package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/repositories/interfaces"
	"github.com/2nas159/car-rental-app/internal/repositories/mongodb"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/internal/validators"
	"github.com/2nas159/car-rental-app/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, request *validators.CarCreateRequest) (*models.Car, error)
	GetByID(ctx context.Context, carID primitive.ObjectID) (*models.Car, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Car, int64, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error)
	Update(ctx context.Context, userID, carID primitive.ObjectID, request *validators.CarUpdateRequest) (*models.Car, error)
	SetAvailability(ctx context.Context, userID, carID primitive.ObjectID, available bool) (*models.Car, error)
	Delete(ctx context.Context, userID, carID primitive.ObjectID) error
}

type carService struct {
	carRepo     interfaces.CarRepository
	userRepo    interfaces.UserRepository
	bookingRepo interfaces.BookingRepository
	logger      *logger.Logger
}

func NewCarService(carRepo interfaces.CarRepository, userRepo interfaces.UserRepository, bookingRepo interfaces.BookingRepository, logger *logger.Logger) CarService {
	return &carService{
		carRepo:     carRepo,
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

func (s *carService) Create(ctx context.Context, ownerID primitive.ObjectID, request *validators.CarCreateRequest) (*models.Car, error) {
	if errs := validators.ValidateStruct(request); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, errs.Error())
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	if owner.Role != models.UserRoleOwner {
		return nil, fmt.Errorf("%w: only owners can list cars", ErrForbidden)
	}

	now := time.Now()
	car := &models.Car{
		OwnerID:         ownerID,
		Brand:           request.Brand,
		Model:           request.Model,
		Year:            request.Year,
		Category:        models.CarCategory(request.Category),
		SeatingCapacity: request.SeatingCapacity,
		FuelType:        models.FuelType(request.FuelType),
		Transmission:    models.Transmission(request.Transmission),
		PricePerDay:     request.PricePerDay,
		Location:        request.Location,
		Image:           request.Image,
		Description:     request.Description,
		IsAvailable:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.carRepo.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("failed to create car: %w", err)
	}

	s.logger.WithCarID(car.ID).WithUserID(ownerID).Info("Car listed")

	return car, nil
}

func (s *carService) GetByID(ctx context.Context, carID primitive.ObjectID) (*models.Car, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, utils.ErrCarNotFound)
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return car, nil
}

func (s *carService) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Car, int64, error) {
	cars, total, err := s.carRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cars: %w", err)
	}
	return cars, total, nil
}

func (s *carService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	cars, err := s.carRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner cars: %w", err)
	}
	return cars, nil
}

func (s *carService) Update(ctx context.Context, userID, carID primitive.ObjectID, request *validators.CarUpdateRequest) (*models.Car, error) {
	if errs := validators.ValidateStruct(request); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, errs.Error())
	}

	car, err := s.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != userID {
		return nil, ErrForbidden
	}

	updates := request.Updates()
	if len(updates) == 0 {
		return car, nil
	}

	if err := s.carRepo.Update(ctx, carID, updates); err != nil {
		return nil, fmt.Errorf("failed to update car: %w", err)
	}

	return s.GetByID(ctx, carID)
}

func (s *carService) SetAvailability(ctx context.Context, userID, carID primitive.ObjectID, available bool) (*models.Car, error) {
	car, err := s.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != userID {
		return nil, ErrForbidden
	}

	if err := s.carRepo.Update(ctx, carID, map[string]interface{}{"is_available": available}); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	s.logger.WithCarID(carID).WithField("is_available", available).Info("Car availability toggled")

	return s.GetByID(ctx, carID)
}

// Delete removes a listing. Cars with bookings that still block the calendar
// cannot be deleted; the owner must wait for them to cancel or complete.
func (s *carService) Delete(ctx context.Context, userID, carID primitive.ObjectID) error {
	car, err := s.GetByID(ctx, carID)
	if err != nil {
		return err
	}
	if car.OwnerID != userID {
		return ErrForbidden
	}

	active, err := s.bookingRepo.GetActiveByCarID(ctx, carID)
	if err != nil {
		return fmt.Errorf("failed to check car bookings: %w", err)
	}
	now := time.Now()
	for _, b := range active {
		if b.Status == models.BookingStatusCompleted || b.ReturnDate.Before(now) {
			continue
		}
		return fmt.Errorf("%w: car has active bookings", ErrConflict)
	}

	if err := s.carRepo.Delete(ctx, carID); err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}

	s.logger.WithCarID(carID).WithUserID(userID).Info("Car deleted")

	return nil
}
