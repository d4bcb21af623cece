package validators

type PaymentIntentRequest struct {
	BookingID string  `json:"booking_id" validate:"required,object_id"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

type PaymentConfirmRequest struct {
	BookingID       string `json:"booking_id" validate:"required,object_id"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}
