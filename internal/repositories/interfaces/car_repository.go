package interfaces

import (
	"context"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Listing
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Car, int64, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error)

	// GetListedByLocation returns cars at the location whose owner toggle is
	// on. Date-based filtering is layered on top by the availability engine.
	GetListedByLocation(ctx context.Context, location string) ([]*models.Car, error)

	// Analytics
	CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}
