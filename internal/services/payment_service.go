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
	"github.com/2nas159/car-rental-app/pkg/logger"
	"github.com/2nas159/car-rental-app/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentService interface {
	// CreateIntent opens a payment with the gateway for a booking. The
	// booking itself is not touched; it stays pending until the gateway
	// reports success.
	CreateIntent(ctx context.Context, userID, bookingID primitive.ObjectID, amount float64) (*PaymentIntentResponse, error)
	// Confirm verifies with the gateway that the intent succeeded and then
	// applies the confirmation. The client's word is never enough.
	Confirm(ctx context.Context, userID, bookingID primitive.ObjectID, intentID string) (*models.Booking, error)
	// HandleWebhook verifies the event signature, then applies gateway
	// events. Replayed events are no-ops.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	Status(ctx context.Context, userID, bookingID primitive.ObjectID) (*PaymentStatusResponse, error)
}

type PaymentIntentResponse struct {
	IntentID     string  `json:"intent_id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

type PaymentStatusResponse struct {
	BookingID     string `json:"booking_id"`
	BookingStatus string `json:"booking_status"`
	PaymentStatus string `json:"payment_status"`
}

type paymentService struct {
	bookingRepo interfaces.BookingRepository
	gateway     payment.Gateway
	currency    string
	logger      *logger.Logger
}

func NewPaymentService(bookingRepo interfaces.BookingRepository, gateway payment.Gateway, currency string, logger *logger.Logger) PaymentService {
	if currency == "" {
		currency = utils.DefaultCurrency
	}
	return &paymentService{
		bookingRepo: bookingRepo,
		gateway:     gateway,
		currency:    currency,
		logger:      logger,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, userID, bookingID primitive.ObjectID, amount float64) (*PaymentIntentResponse, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	booking, err := s.getRenterBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking is not awaiting payment", ErrConflict)
	}

	intent, err := s.gateway.CreateIntent(ctx, &payment.IntentRequest{
		Amount:   amount,
		Currency: s.currency,
		Metadata: map[string]string{
			"booking_id": bookingID.Hex(),
			"user_id":    userID.Hex(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	s.logger.LogPaymentEvent(bookingID, "intent_created", amount, s.currency)

	return &PaymentIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     s.currency,
	}, nil
}

func (s *paymentService) Confirm(ctx context.Context, userID, bookingID primitive.ObjectID, intentID string) (*models.Booking, error) {
	booking, err := s.getRenterBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if intent.Status != payment.IntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment status is %s", ErrPaymentNotCompleted, intent.Status)
	}

	booking, err = s.applyConfirmation(ctx, booking.ID, intentID)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// applyConfirmation performs the single guarded pending-to-confirmed write.
// When the guard misses, the current state decides whether this is a replay
// (already confirmed or completed, fine) or a real conflict (cancelled).
func (s *paymentService) applyConfirmation(ctx context.Context, bookingID primitive.ObjectID, intentID string) (*models.Booking, error) {
	applied, err := s.bookingRepo.ConfirmPayment(ctx, bookingID, intentID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, utils.ErrBookingNotFound)
		}
		return nil, fmt.Errorf("failed to reload booking: %w", err)
	}

	if applied {
		s.logger.LogBookingEvent(bookingID, "payment_confirmed", map[string]interface{}{
			"payment_intent_id": intentID,
		})
		return booking, nil
	}

	switch booking.Status {
	case models.BookingStatusConfirmed, models.BookingStatusCompleted:
		// Replay of an already-applied confirmation.
		return booking, nil
	default:
		return nil, fmt.Errorf("%w: booking is %s and can no longer be confirmed", ErrConflict, booking.Status)
	}
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignature, err)
	}

	switch event.EventType {
	case payment.EventIntentSucceeded:
		bookingHex, ok := event.Metadata["booking_id"]
		if !ok {
			s.logger.WithField("intent_id", event.IntentID).Warn("Webhook event has no booking reference")
			return nil
		}
		bookingID, err := primitive.ObjectIDFromHex(bookingHex)
		if err != nil {
			return fmt.Errorf("%w: invalid booking id in event metadata", ErrValidation)
		}
		if _, err := s.applyConfirmation(ctx, bookingID, event.IntentID); err != nil {
			if errors.Is(err, ErrConflict) {
				// The booking moved on before the event arrived. Nothing to
				// apply; acknowledging stops the gateway from retrying.
				s.logger.WithBookingID(bookingID).WithError(err).Warn("Webhook confirmation not applicable")
				return nil
			}
			return err
		}
		return nil

	case payment.EventIntentFailed:
		s.logger.WithFields(map[string]interface{}{
			"intent_id":  event.IntentID,
			"booking_id": event.Metadata["booking_id"],
		}).Warn("Payment failed")
		return nil

	default:
		s.logger.WithField("event_type", event.EventType).Debug("Ignoring unhandled webhook event")
		return nil
	}
}

func (s *paymentService) Status(ctx context.Context, userID, bookingID primitive.ObjectID) (*PaymentStatusResponse, error) {
	booking, err := s.getRenterBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	response := &PaymentStatusResponse{
		BookingID:     bookingID.Hex(),
		BookingStatus: string(booking.Status),
		PaymentStatus: "pending",
	}
	if booking.PaymentIntentID == "" {
		return response, nil
	}

	intent, err := s.gateway.RetrieveIntent(ctx, booking.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	response.PaymentStatus = intent.Status
	return response, nil
}

func (s *paymentService) getRenterBooking(ctx context.Context, userID, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, utils.ErrBookingNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking.RenterID != userID {
		return nil, ErrForbidden
	}
	return booking, nil
}
