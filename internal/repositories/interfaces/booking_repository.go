package interfaces

import (
	"context"
	"time"

	"github.com/2nas159/car-rental-app/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	// UpdateStatus moves a booking from an expected current status to the
	// next one in a single guarded write. Returns false when the booking was
	// no longer in the expected status, so a concurrent transition loses
	// cleanly instead of overwriting it.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.BookingStatus) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Participant listings
	GetByRenterID(ctx context.Context, renterID primitive.ObjectID) ([]*models.Booking, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error)
	GetByOwnerAndStatus(ctx context.Context, ownerID primitive.ObjectID, status models.BookingStatus) ([]*models.Booking, error)
	GetRecentByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]*models.Booking, error)

	// Availability queries. FindOverlapping applies the closed-closed
	// comparison against non-cancelled bookings of one car;
	// FindConflictingCarIDs does the same for a whole location's worth of
	// cars in one pass.
	FindOverlapping(ctx context.Context, carID primitive.ObjectID, pickup, ret time.Time) (*models.Booking, error)
	FindConflictingCarIDs(ctx context.Context, carIDs []primitive.ObjectID, pickup, ret time.Time) (map[primitive.ObjectID]struct{}, error)
	GetActiveByCarID(ctx context.Context, carID primitive.ObjectID) ([]*models.Booking, error)

	// ConfirmPayment is the single idempotent apply both the synchronous
	// confirmation and the webhook converge on: it moves a pending booking
	// to confirmed and stamps paidAt exactly once. Returns false when the
	// booking was not pending (replay or already-terminal state).
	ConfirmPayment(ctx context.Context, id primitive.ObjectID, intentID string, paidAt time.Time) (bool, error)

	// MarkCompletedBefore transitions an owner's confirmed bookings whose
	// return date has passed to completed. Returns the number updated.
	MarkCompletedBefore(ctx context.Context, ownerID primitive.ObjectID, cutoff time.Time) (int64, error)

	// Dashboard aggregates
	CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	CountByOwnerAndStatus(ctx context.Context, ownerID primitive.ObjectID, status models.BookingStatus) (int64, error)
	TotalRevenueByOwner(ctx context.Context, ownerID primitive.ObjectID) (float64, error)
	RevenueByOwnerBetween(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) (float64, error)
}
