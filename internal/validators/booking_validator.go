package validators

import "time"

type BookingCreateRequest struct {
	CarID      string    `json:"car_id" validate:"required,object_id"`
	PickupDate time.Time `json:"pickup_date" validate:"required"`
	ReturnDate time.Time `json:"return_date" validate:"required"`
}

type BookingStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}
