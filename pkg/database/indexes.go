package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the availability and dashboard queries
// rely on. Safe to call on every startup; Mongo treats re-creation of an
// existing index as a no-op.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	cars := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}, {Key: "is_available", Value: 1}}},
	}

	// The compound index backs the overlap check: it narrows candidate
	// bookings to one car and non-cancelled statuses before the date
	// comparison.
	bookings := []mongo.IndexModel{
		{Keys: bson.D{{Key: "car_id", Value: 1}, {Key: "status", Value: 1}, {Key: "pickup_date", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "renter_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "payment_intent_id", Value: 1}}},
	}

	for collection, models := range map[string][]mongo.IndexModel{
		"users":    users,
		"cars":     cars,
		"bookings": bookings,
	} {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}

	return nil
}
