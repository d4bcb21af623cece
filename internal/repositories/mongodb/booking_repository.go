package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection("bookings"),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// UpdateStatus is guarded on the expected current status, same pattern as
// ConfirmPayment: the filter misses when a concurrent transition got there
// first, so a terminal state can never be overwritten.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.BookingStatus) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{
			"status":     to,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	return result.MatchedCount > 0, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *bookingRepository) GetByRenterID(ctx context.Context, renterID primitive.ObjectID) ([]*models.Booking, error) {
	return r.find(ctx, bson.M{"renter_id": renterID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *bookingRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *bookingRepository) GetByOwnerAndStatus(ctx context.Context, ownerID primitive.ObjectID, status models.BookingStatus) ([]*models.Booking, error) {
	filter := bson.M{"owner_id": ownerID, "status": status}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *bookingRepository) GetRecentByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]*models.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"owner_id": ownerID}, opts)
}

// FindOverlapping returns the first non-cancelled booking of the car whose
// interval touches [pickup, ret] under closed-closed comparison
// (pickup_date <= ret AND return_date >= pickup).
func (r *bookingRepository) FindOverlapping(ctx context.Context, carID primitive.ObjectID, pickup, ret time.Time) (*models.Booking, error) {
	filter := bson.M{
		"car_id":      carID,
		"status":      bson.M{"$ne": models.BookingStatusCancelled},
		"pickup_date": bson.M{"$lte": ret},
		"return_date": bson.M{"$gte": pickup},
	}

	var booking models.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find overlapping booking: %w", err)
	}

	return &booking, nil
}

// FindConflictingCarIDs builds the conflict set for a location search in a
// single query instead of one overlap check per car.
func (r *bookingRepository) FindConflictingCarIDs(ctx context.Context, carIDs []primitive.ObjectID, pickup, ret time.Time) (map[primitive.ObjectID]struct{}, error) {
	if len(carIDs) == 0 {
		return map[primitive.ObjectID]struct{}{}, nil
	}

	filter := bson.M{
		"car_id":      bson.M{"$in": carIDs},
		"status":      bson.M{"$ne": models.BookingStatusCancelled},
		"pickup_date": bson.M{"$lte": ret},
		"return_date": bson.M{"$gte": pickup},
	}

	ids, err := r.collection.Distinct(ctx, "car_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting car IDs: %w", err)
	}

	conflicts := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if oid, ok := id.(primitive.ObjectID); ok {
			conflicts[oid] = struct{}{}
		}
	}

	return conflicts, nil
}

func (r *bookingRepository) GetActiveByCarID(ctx context.Context, carID primitive.ObjectID) ([]*models.Booking, error) {
	filter := bson.M{
		"car_id": carID,
		"status": bson.M{"$ne": models.BookingStatusCancelled},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "pickup_date", Value: 1}}))
}

// ConfirmPayment applies the pending->confirmed transition with a status
// guard so replays and races are no-ops: only a pending booking matches, so
// paidAt is stamped exactly once no matter how many times the gateway
// delivers the success event.
func (r *bookingRepository) ConfirmPayment(ctx context.Context, id primitive.ObjectID, intentID string, paidAt time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.BookingStatusPending},
		bson.M{"$set": bson.M{
			"status":            models.BookingStatusConfirmed,
			"payment_intent_id": intentID,
			"paid_at":           paidAt,
			"updated_at":        time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking payment: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *bookingRepository) MarkCompletedBefore(ctx context.Context, ownerID primitive.ObjectID, cutoff time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"owner_id":    ownerID,
			"status":      models.BookingStatusConfirmed,
			"return_date": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{
			"status":     models.BookingStatusCompleted,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark bookings completed: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *bookingRepository) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by owner: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) CountByOwnerAndStatus(ctx context.Context, ownerID primitive.ObjectID, status models.BookingStatus) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID, "status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by status: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) TotalRevenueByOwner(ctx context.Context, ownerID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$price"},
		}}},
	}

	return r.sumPipeline(ctx, pipeline)
}

// RevenueByOwnerBetween sums paid, non-cancelled bookings whose paidAt falls
// in [from, to).
func (r *bookingRepository) RevenueByOwnerBetween(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"owner_id": ownerID,
			"status":   bson.M{"$ne": models.BookingStatusCancelled},
			"paid_at":  bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$price"},
		}}},
	}

	return r.sumPipeline(ctx, pipeline)
}

func (r *bookingRepository) sumPipeline(ctx context.Context, pipeline mongo.Pipeline) (float64, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode revenue aggregate: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	return results[0].Total, nil
}

func (r *bookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}
