package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking references one car, its renter and the car's owner at creation
// time. OwnerID is a denormalized snapshot: later ownership changes on the
// car never alter who may act on an existing booking. Price is computed once
// at creation and never recalculated.
type Booking struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CarID           primitive.ObjectID `json:"car_id" bson:"car_id" validate:"required"`
	RenterID        primitive.ObjectID `json:"renter_id" bson:"renter_id" validate:"required"`
	OwnerID         primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	PickupDate      time.Time          `json:"pickup_date" bson:"pickup_date" validate:"required"`
	ReturnDate      time.Time          `json:"return_date" bson:"return_date" validate:"required"`
	Price           float64            `json:"price" bson:"price" validate:"required,gt=0"`
	Status          BookingStatus      `json:"status" bson:"status" default:"pending"`
	PaymentIntentID string             `json:"payment_intent_id" bson:"payment_intent_id"`
	PaidAt          *time.Time         `json:"paid_at" bson:"paid_at"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo enforces the one-directional booking lattice:
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
//
// Completed and cancelled are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCompleted || next == BookingStatusCancelled
	}
	return false
}

// IsParticipant reports whether userID is the booking's renter or its
// owner of record. Only participants may mutate a booking.
func (b *Booking) IsParticipant(userID primitive.ObjectID) bool {
	return b.RenterID == userID || b.OwnerID == userID
}

// OverlapsInterval applies the closed-closed comparison used everywhere in
// the availability path: a return on day N and a pickup on day N conflict,
// so same-day handoff between bookings is disallowed.
func (b *Booking) OverlapsInterval(pickup, ret time.Time) bool {
	return !b.PickupDate.After(ret) && !b.ReturnDate.Before(pickup)
}

// Blocks reports whether the booking counts against a car's availability.
func (b *Booking) Blocks() bool {
	return b.Status != BookingStatusCancelled
}
