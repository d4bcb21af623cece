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
	"github.com/2nas159/car-rental-app/pkg/lock"
	"github.com/2nas159/car-rental-app/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingService interface {
	Create(ctx context.Context, renterID primitive.ObjectID, request *validators.BookingCreateRequest) (*models.Booking, error)
	GetByID(ctx context.Context, userID, bookingID primitive.ObjectID) (*models.Booking, error)
	ListForRenter(ctx context.Context, renterID primitive.ObjectID) ([]*models.Booking, error)
	ListForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error)
	ListOwnerPending(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error)
	UpdateStatus(ctx context.Context, userID, bookingID primitive.ObjectID, status models.BookingStatus) (*models.Booking, error)
	Delete(ctx context.Context, userID, bookingID primitive.ObjectID) error
	OwnerDashboard(ctx context.Context, ownerID primitive.ObjectID) (*DashboardData, error)
}

// DashboardData is the owner's aggregate view. Completed bookings are swept
// before the counts are taken so the numbers reflect the calendar, not the
// last write.
type DashboardData struct {
	TotalCars         int64             `json:"total_cars"`
	TotalBookings     int64             `json:"total_bookings"`
	PendingBookings   int64             `json:"pending_bookings"`
	ConfirmedBookings int64             `json:"confirmed_bookings"`
	CompletedBookings int64             `json:"completed_bookings"`
	RecentBookings    []*models.Booking `json:"recent_bookings"`
	TotalRevenue      float64           `json:"total_revenue"`
	MonthlyRevenue    float64           `json:"monthly_revenue"`
	LastMonthRevenue  float64           `json:"last_month_revenue"`
	RevenueGrowth     float64           `json:"revenue_growth"`
}

type bookingService struct {
	bookingRepo interfaces.BookingRepository
	carRepo     interfaces.CarRepository
	locker      lock.Locker
	logger      *logger.Logger
}

func NewBookingService(bookingRepo interfaces.BookingRepository, carRepo interfaces.CarRepository, locker lock.Locker, logger *logger.Logger) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		locker:      locker,
		logger:      logger,
	}
}

// Create places a pending booking. The conflict check and insert run under a
// per-car lease so two concurrent requests for overlapping dates cannot both
// pass the check; the loser gets a conflict.
func (s *bookingService) Create(ctx context.Context, renterID primitive.ObjectID, request *validators.BookingCreateRequest) (*models.Booking, error) {
	if errs := validators.ValidateStruct(request); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, errs.Error())
	}

	carID, err := primitive.ObjectIDFromHex(request.CarID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid car id", ErrValidation)
	}

	pickup, ret, err := validateInterval(request.PickupDate, request.ReturnDate)
	if err != nil {
		return nil, err
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, utils.ErrCarNotFound)
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	if !car.IsAvailable {
		return nil, fmt.Errorf("%w: car is not listed for booking", ErrConflict)
	}

	lockKey := "car:" + carID.Hex()
	if err := s.acquireCarLock(ctx, lockKey); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Release(context.Background(), lockKey); err != nil {
			s.logger.WithCarID(carID).WithError(err).Warn("Failed to release booking lock")
		}
	}()

	overlapping, err := s.bookingRepo.FindOverlapping(ctx, carID, pickup, ret)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	if overlapping != nil {
		return nil, fmt.Errorf("%w: %s", ErrConflict, utils.ErrDatesUnavailable)
	}

	now := time.Now()
	booking := &models.Booking{
		CarID:      carID,
		RenterID:   renterID,
		OwnerID:    car.OwnerID,
		PickupDate: pickup,
		ReturnDate: ret,
		Price:      float64(utils.RentalDays(pickup, ret)) * car.PricePerDay,
		Status:     models.BookingStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.LogBookingEvent(booking.ID, "created", map[string]interface{}{
		"car_id":    carID.Hex(),
		"renter_id": renterID.Hex(),
		"price":     booking.Price,
	})

	return booking, nil
}

func (s *bookingService) acquireCarLock(ctx context.Context, key string) error {
	for attempt := 0; attempt < utils.BookingLockRetries; attempt++ {
		acquired, err := s.locker.Acquire(ctx, key, utils.BookingLockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire booking lock: %w", err)
		}
		if acquired {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(utils.BookingLockRetryDelay):
		}
	}
	return fmt.Errorf("%w: car is being booked by another request", ErrConflict)
}

func (s *bookingService) GetByID(ctx context.Context, userID, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, utils.ErrBookingNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if !booking.IsParticipant(userID) {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *bookingService) ListForRenter(ctx context.Context, renterID primitive.ObjectID) ([]*models.Booking, error) {
	bookings, err := s.bookingRepo.GetByRenterID(ctx, renterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list renter bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) ListForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error) {
	bookings, err := s.bookingRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) ListOwnerPending(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error) {
	bookings, err := s.bookingRepo.GetByOwnerAndStatus(ctx, ownerID, models.BookingStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, userID, bookingID primitive.ObjectID, status models.BookingStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid booking status", ErrValidation)
	}

	booking, err := s.GetByID(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: cannot transition booking from %s to %s", ErrValidation, booking.Status, status)
	}

	applied, err := s.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	if !applied {
		// A concurrent transition moved the booking between our read and the
		// guarded write.
		return nil, fmt.Errorf("%w: booking was updated concurrently", ErrConflict)
	}

	s.logger.LogBookingEvent(bookingID, "status_changed", map[string]interface{}{
		"from": booking.Status,
		"to":   status,
	})

	booking.Status = status
	booking.UpdatedAt = time.Now()
	return booking, nil
}

// Delete removes a booking record entirely. Paid confirmed bookings cannot
// be deleted; they must be cancelled through the status flow so the payment
// trail survives.
func (s *bookingService) Delete(ctx context.Context, userID, bookingID primitive.ObjectID) error {
	booking, err := s.GetByID(ctx, userID, bookingID)
	if err != nil {
		return err
	}

	if booking.Status == models.BookingStatusConfirmed && booking.PaidAt != nil {
		return fmt.Errorf("%w: paid bookings cannot be deleted", ErrConflict)
	}

	if err := s.bookingRepo.Delete(ctx, bookingID); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.logger.WithBookingID(bookingID).WithUserID(userID).Info("Booking deleted")

	return nil
}

func (s *bookingService) OwnerDashboard(ctx context.Context, ownerID primitive.ObjectID) (*DashboardData, error) {
	now := time.Now()

	// Sweep lapsed confirmed bookings first so the counts below see them as
	// completed.
	swept, err := s.bookingRepo.MarkCompletedBefore(ctx, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep completed bookings: %w", err)
	}
	if swept > 0 {
		s.logger.WithUserID(ownerID).WithField("count", swept).Info("Swept lapsed bookings to completed")
	}

	data := &DashboardData{}

	if data.TotalCars, err = s.carRepo.CountByOwner(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to count cars: %w", err)
	}
	if data.TotalBookings, err = s.bookingRepo.CountByOwner(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if data.PendingBookings, err = s.bookingRepo.CountByOwnerAndStatus(ctx, ownerID, models.BookingStatusPending); err != nil {
		return nil, fmt.Errorf("failed to count pending bookings: %w", err)
	}
	if data.ConfirmedBookings, err = s.bookingRepo.CountByOwnerAndStatus(ctx, ownerID, models.BookingStatusConfirmed); err != nil {
		return nil, fmt.Errorf("failed to count confirmed bookings: %w", err)
	}
	if data.CompletedBookings, err = s.bookingRepo.CountByOwnerAndStatus(ctx, ownerID, models.BookingStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed bookings: %w", err)
	}
	if data.RecentBookings, err = s.bookingRepo.GetRecentByOwner(ctx, ownerID, utils.DashboardRecentBookings); err != nil {
		return nil, fmt.Errorf("failed to load recent bookings: %w", err)
	}
	if data.TotalRevenue, err = s.bookingRepo.TotalRevenueByOwner(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	monthStart, nextMonthStart := utils.MonthWindow(now)
	lastMonthStart, _ := utils.MonthWindow(monthStart.AddDate(0, 0, -1))

	if data.MonthlyRevenue, err = s.bookingRepo.RevenueByOwnerBetween(ctx, ownerID, monthStart, nextMonthStart); err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}
	if data.LastMonthRevenue, err = s.bookingRepo.RevenueByOwnerBetween(ctx, ownerID, lastMonthStart, monthStart); err != nil {
		return nil, fmt.Errorf("failed to sum last month revenue: %w", err)
	}

	switch {
	case data.LastMonthRevenue > 0:
		data.RevenueGrowth = (data.MonthlyRevenue - data.LastMonthRevenue) / data.LastMonthRevenue * 100
	case data.MonthlyRevenue > 0:
		data.RevenueGrowth = 100
	}

	return data, nil
}
