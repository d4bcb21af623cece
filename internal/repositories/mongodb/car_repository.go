package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/repositories/interfaces"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/pkg/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const carCacheTTL = 5 * time.Minute

type carRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
}

// NewCarRepository returns a car store backed by Mongo with a read-through
// Redis cache for single-car lookups. cache may be nil.
func NewCarRepository(db *mongo.Database, cache *cache.RedisCache) interfaces.CarRepository {
	return &carRepository{
		collection: db.Collection("cars"),
		cache:      cache,
	}
}

func (r *carRepository) Create(ctx context.Context, car *models.Car) error {
	car.ID = primitive.NewObjectID()
	car.CreatedAt = time.Now()
	car.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, car)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	return nil
}

func (r *carRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	if car := r.getCarFromCache(ctx, id.Hex()); car != nil {
		return car, nil
	}

	var car models.Car
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	r.cacheCar(ctx, &car)

	return &car, nil
}

func (r *carRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	r.invalidateCarCache(ctx, id.Hex())

	return nil
}

func (r *carRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	r.invalidateCarCache(ctx, id.Hex())

	return nil
}

func (r *carRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Car, int64, error) {
	filter := bson.M{}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count cars: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cars: %w", err)
	}
	defer cursor.Close(ctx)

	cars, err := decodeCars(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	return cars, total, nil
}

func (r *carRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	filter := bson.M{"owner_id": ownerID}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find cars by owner ID: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeCars(ctx, cursor)
}

func (r *carRepository) GetListedByLocation(ctx context.Context, location string) ([]*models.Car, error) {
	filter := bson.M{
		"location":     location,
		"is_available": true,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "price_per_day", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find cars by location: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeCars(ctx, cursor)
}

func (r *carRepository) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count cars by owner: %w", err)
	}
	return count, nil
}

func decodeCars(ctx context.Context, cursor *mongo.Cursor) ([]*models.Car, error) {
	var cars []*models.Car
	for cursor.Next(ctx) {
		var car models.Car
		if err := cursor.Decode(&car); err != nil {
			return nil, fmt.Errorf("failed to decode car: %w", err)
		}
		cars = append(cars, &car)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cars: %w", err)
	}
	return cars, nil
}

func (r *carRepository) cacheCar(ctx context.Context, car *models.Car) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Set(ctx, carCacheKey(car.ID.Hex()), car, carCacheTTL)
}

func (r *carRepository) getCarFromCache(ctx context.Context, id string) *models.Car {
	if r.cache == nil {
		return nil
	}
	var car models.Car
	if err := r.cache.Get(ctx, carCacheKey(id), &car); err != nil {
		return nil
	}
	return &car
}

func (r *carRepository) invalidateCarCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, carCacheKey(id))
}

func carCacheKey(id string) string {
	return fmt.Sprintf("car:%s", id)
}
