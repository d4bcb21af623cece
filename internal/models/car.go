package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarCategory string
type FuelType string
type Transmission string

const (
	CarCategorySedan       CarCategory = "sedan"
	CarCategorySUV         CarCategory = "suv"
	CarCategoryHatchback   CarCategory = "hatchback"
	CarCategoryVan         CarCategory = "van"
	CarCategoryLuxury      CarCategory = "luxury"
	CarCategoryConvertible CarCategory = "convertible"

	FuelTypePetrol   FuelType = "petrol"
	FuelTypeDiesel   FuelType = "diesel"
	FuelTypeHybrid   FuelType = "hybrid"
	FuelTypeElectric FuelType = "electric"

	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
	TransmissionSemiAuto  Transmission = "semi-automatic"
)

// Car is a listed vehicle. OwnerID is set at creation and never reassigned.
// IsAvailable is the owner-controlled listing toggle; date-based availability
// is computed from bookings and layered on top of it.
type Car struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID         primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	Brand           string             `json:"brand" bson:"brand" validate:"required"`
	Model           string             `json:"model" bson:"model" validate:"required"`
	Year            int                `json:"year" bson:"year" validate:"required"`
	Category        CarCategory        `json:"category" bson:"category" validate:"required"`
	SeatingCapacity int                `json:"seating_capacity" bson:"seating_capacity" validate:"required"`
	FuelType        FuelType           `json:"fuel_type" bson:"fuel_type" validate:"required"`
	Transmission    Transmission       `json:"transmission" bson:"transmission" validate:"required"`
	PricePerDay     float64            `json:"price_per_day" bson:"price_per_day" validate:"required,gt=0"`
	Location        string             `json:"location" bson:"location" validate:"required"`
	Image           string             `json:"image" bson:"image"`
	Description     string             `json:"description" bson:"description"`
	IsAvailable     bool               `json:"is_available" bson:"is_available" default:"true"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
