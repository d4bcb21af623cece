package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/services"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/internal/validators"
	"github.com/2nas159/car-rental-app/pkg/lock"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingFixture struct {
	carRepo     *mockCarRepo
	bookingRepo *mockBookingRepo
	svc         services.BookingService
}

func newBookingFixture() *bookingFixture {
	carRepo := newMockCarRepo()
	bookingRepo := newMockBookingRepo()
	return &bookingFixture{
		carRepo:     carRepo,
		bookingRepo: bookingRepo,
		svc:         services.NewBookingService(bookingRepo, carRepo, lock.NewMemoryLocker(), testLogger()),
	}
}

func createRequest(carID primitive.ObjectID, pickup, ret time.Time) *validators.BookingCreateRequest {
	return &validators.BookingCreateRequest{
		CarID:      carID.Hex(),
		PickupDate: pickup,
		ReturnDate: ret,
	}
}

func TestCreateBooking_Succeeds(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)
	renter := primitive.NewObjectID()

	booking, err := f.svc.Create(context.Background(), renter, createRequest(car.ID, day(10), day(13)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != models.BookingStatusPending {
		t.Errorf("expected pending status, got %s", booking.Status)
	}
	if booking.OwnerID != car.OwnerID {
		t.Error("owner must be snapshotted from the car")
	}
	if booking.RenterID != renter {
		t.Error("renter must be the caller")
	}
	// 3 days at 50 per day.
	if booking.Price != 150 {
		t.Errorf("expected price 150, got %v", booking.Price)
	}
}

func TestCreateBooking_InvalidIntervalPersistsNothing(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)

	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), createRequest(car.ID, day(13), day(10)))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if got := f.bookingRepo.createCalls.Load(); got != 0 {
		t.Errorf("expected no insert attempts, got %d", got)
	}
}

func TestCreateBooking_UnknownCar(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), createRequest(primitive.NewObjectID(), day(10), day(13)))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestCreateBooking_OverlapConflicts(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)
	seedBooking(t, f.bookingRepo, car.ID, models.BookingStatusConfirmed, day(10), day(15))

	testCases := []struct {
		name   string
		pickup time.Time
		ret    time.Time
	}{
		{"inside", day(11), day(14)},
		{"straddling", day(14), day(18)},
		{"pickup on return day", day(15), day(18)},
		{"return on pickup day", day(7), day(10)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), createRequest(car.ID, tc.pickup, tc.ret))
			if !errors.Is(err, services.ErrConflict) {
				t.Fatalf("expected conflict, got: %v", err)
			}
		})
	}
}

func TestCreateBooking_CancelledBookingDoesNotConflict(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)
	seedBooking(t, f.bookingRepo, car.ID, models.BookingStatusCancelled, day(10), day(15))

	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), createRequest(car.ID, day(11), day(14)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateBooking_DifferentCarSameDates(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	first := seedCar(t, f.carRepo, "berlin", 50)
	second := seedCar(t, f.carRepo, "berlin", 60)
	seedBooking(t, f.bookingRepo, first.ID, models.BookingStatusConfirmed, day(10), day(15))

	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), createRequest(second.ID, day(10), day(15)))
	if err != nil {
		t.Fatalf("bookings on different cars must not conflict: %v", err)
	}
}

func TestCreateBooking_UnlistedCarRejected(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)
	if err := f.carRepo.Update(context.Background(), car.ID, map[string]interface{}{"is_available": false}); err != nil {
		t.Fatalf("failed to unlist car: %v", err)
	}

	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), createRequest(car.ID, day(10), day(13)))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict for unlisted car, got: %v", err)
	}
}

// Two concurrent requests for overlapping dates on the same car must
// serialize on the per-car lease: exactly one wins, the other conflicts.
func TestCreateBooking_ConcurrentOverlap_OneWins(t *testing.T) {
	t.Parallel()

	const rounds = 25

	for i := 0; i < rounds; i++ {
		f := newBookingFixture()
		car := seedCar(t, f.carRepo, "berlin", 50)
		// Widen the check-then-insert window to give interleaving a chance.
		f.bookingRepo.overlapLatency = time.Millisecond

		var wg sync.WaitGroup
		results := make(chan error, 2)
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), createRequest(car.ID, day(10), day(15)))
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var successes, conflicts int
		for err := range results {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, services.ErrConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if successes != 1 || conflicts != 1 {
			t.Fatalf("round %d: expected exactly one winner, got %d successes and %d conflicts", i, successes, conflicts)
		}

		stored, err := f.bookingRepo.GetActiveByCarID(context.Background(), car.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("round %d: expected exactly one stored booking, got %d", i, len(stored))
		}
	}
}

func TestGetBooking_ParticipantsOnly(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)
	booking := seedBooking(t, f.bookingRepo, car.ID, models.BookingStatusPending, day(10), day(15))

	if _, err := f.svc.GetByID(context.Background(), booking.RenterID, booking.ID); err != nil {
		t.Errorf("renter must be able to read the booking: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), booking.OwnerID, booking.ID); err != nil {
		t.Errorf("owner must be able to read the booking: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), primitive.NewObjectID(), booking.ID); !errors.Is(err, services.ErrForbidden) {
		t.Errorf("stranger must be forbidden, got: %v", err)
	}
}

func TestUpdateStatus_LatticeEnforced(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)

	testCases := []struct {
		name    string
		from    models.BookingStatus
		to      models.BookingStatus
		wantErr error
	}{
		{"pending to confirmed", models.BookingStatusPending, models.BookingStatusConfirmed, nil},
		{"pending to cancelled", models.BookingStatusPending, models.BookingStatusCancelled, nil},
		{"confirmed to completed", models.BookingStatusConfirmed, models.BookingStatusCompleted, nil},
		{"pending to completed", models.BookingStatusPending, models.BookingStatusCompleted, services.ErrValidation},
		{"cancelled is terminal", models.BookingStatusCancelled, models.BookingStatusConfirmed, services.ErrValidation},
		{"completed is terminal", models.BookingStatusCompleted, models.BookingStatusCancelled, services.ErrValidation},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			booking := seedBooking(t, f.bookingRepo, car.ID, tc.from, day(10), day(15))
			_, err := f.svc.UpdateStatus(context.Background(), booking.RenterID, booking.ID, tc.to)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}
}

// A renter cancelling and an owner confirming the same pending booking can
// both pass the transition check; the guarded write must let only one land,
// so a cancellation can never be reversed into a confirmation afterwards.
func TestUpdateStatus_ConcurrentCancelAndConfirm_NoReversal(t *testing.T) {
	t.Parallel()

	const rounds = 25

	for i := 0; i < rounds; i++ {
		f := newBookingFixture()
		car := seedCar(t, f.carRepo, "berlin", 50)
		booking := seedBooking(t, f.bookingRepo, car.ID, models.BookingStatusPending, day(10), day(15))
		// Widen the read-check-write window to give interleaving a chance.
		f.bookingRepo.readLatency = time.Millisecond

		type outcome struct {
			target models.BookingStatus
			err    error
		}
		results := make(chan outcome, 2)

		var wg sync.WaitGroup
		for _, attempt := range []struct {
			actor  primitive.ObjectID
			target models.BookingStatus
		}{
			{booking.RenterID, models.BookingStatusCancelled},
			{booking.OwnerID, models.BookingStatusConfirmed},
		} {
			attempt := attempt
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.UpdateStatus(context.Background(), attempt.actor, booking.ID, attempt.target)
				results <- outcome{target: attempt.target, err: err}
			}()
		}
		wg.Wait()
		close(results)

		var winner models.BookingStatus
		var successes int
		for res := range results {
			switch {
			case res.err == nil:
				successes++
				winner = res.target
			case errors.Is(res.err, services.ErrConflict), errors.Is(res.err, services.ErrValidation):
				// The loser either lost the guarded write or read the
				// already-moved status.
			default:
				t.Fatalf("round %d: unexpected error: %v", i, res.err)
			}
		}
		if successes != 1 {
			t.Fatalf("round %d: expected exactly one transition to land, got %d", i, successes)
		}

		final, err := f.bookingRepo.GetByID(context.Background(), booking.ID)
		if err != nil {
			t.Fatalf("round %d: unexpected error: %v", i, err)
		}
		if final.Status != winner {
			t.Fatalf("round %d: winner set %s but booking ended %s", i, winner, final.Status)
		}
	}
}

func TestUpdateStatus_StrangerForbidden(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)
	booking := seedBooking(t, f.bookingRepo, car.ID, models.BookingStatusPending, day(10), day(15))

	_, err := f.svc.UpdateStatus(context.Background(), primitive.NewObjectID(), booking.ID, models.BookingStatusConfirmed)
	if !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden, got: %v", err)
	}
}

func TestDeleteBooking_PaidConfirmedRefused(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)
	booking := seedBooking(t, f.bookingRepo, car.ID, models.BookingStatusPending, day(10), day(15))

	if _, err := f.bookingRepo.ConfirmPayment(context.Background(), booking.ID, "pi_1", time.Now()); err != nil {
		t.Fatalf("failed to confirm: %v", err)
	}

	err := f.svc.Delete(context.Background(), booking.RenterID, booking.ID)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict deleting a paid booking, got: %v", err)
	}

	if _, err := f.bookingRepo.GetByID(context.Background(), booking.ID); err != nil {
		t.Error("booking must survive the refused delete")
	}
}

func TestDeleteBooking_UnpaidAllowed(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	car := seedCar(t, f.carRepo, "berlin", 50)
	booking := seedBooking(t, f.bookingRepo, car.ID, models.BookingStatusPending, day(10), day(15))

	if err := f.svc.Delete(context.Background(), booking.RenterID, booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOwnerDashboard_SweepsAndAggregates(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	owner := primitive.NewObjectID()

	car := &models.Car{OwnerID: owner, Brand: "VW", Model: "Golf", PricePerDay: 40, Location: "berlin", IsAvailable: true}
	if err := f.carRepo.Create(context.Background(), car); err != nil {
		t.Fatalf("failed to seed car: %v", err)
	}

	now := time.Now().UTC()
	monthStart, _ := utils.MonthWindow(now)
	paidAt := monthStart.Add(time.Hour)

	lapsed := &models.Booking{
		CarID: car.ID, RenterID: primitive.NewObjectID(), OwnerID: owner,
		PickupDate: now.AddDate(0, 0, -10), ReturnDate: now.AddDate(0, 0, -2),
		Price: 200, Status: models.BookingStatusConfirmed, PaidAt: &paidAt, CreatedAt: now,
	}
	upcoming := &models.Booking{
		CarID: car.ID, RenterID: primitive.NewObjectID(), OwnerID: owner,
		PickupDate: now.AddDate(0, 0, 5), ReturnDate: now.AddDate(0, 0, 8),
		Price: 120, Status: models.BookingStatusConfirmed, PaidAt: &paidAt, CreatedAt: now,
	}
	pending := &models.Booking{
		CarID: car.ID, RenterID: primitive.NewObjectID(), OwnerID: owner,
		PickupDate: now.AddDate(0, 0, 10), ReturnDate: now.AddDate(0, 0, 12),
		Price: 80, Status: models.BookingStatusPending, CreatedAt: now,
	}
	for _, b := range []*models.Booking{lapsed, upcoming, pending} {
		if err := f.bookingRepo.Create(context.Background(), b); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}
	}

	data, err := f.svc.OwnerDashboard(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.TotalCars != 1 {
		t.Errorf("expected 1 car, got %d", data.TotalCars)
	}
	if data.TotalBookings != 3 {
		t.Errorf("expected 3 bookings, got %d", data.TotalBookings)
	}
	// The lapsed confirmed booking must have been swept to completed before
	// counting.
	if data.CompletedBookings != 1 {
		t.Errorf("expected 1 completed booking after sweep, got %d", data.CompletedBookings)
	}
	if data.ConfirmedBookings != 1 {
		t.Errorf("expected 1 confirmed booking after sweep, got %d", data.ConfirmedBookings)
	}
	if data.PendingBookings != 1 {
		t.Errorf("expected 1 pending booking, got %d", data.PendingBookings)
	}
	if data.TotalRevenue != 400 {
		t.Errorf("expected total revenue 400, got %v", data.TotalRevenue)
	}
	if data.MonthlyRevenue != 320 {
		t.Errorf("expected monthly revenue 320, got %v", data.MonthlyRevenue)
	}
	if len(data.RecentBookings) != 3 {
		t.Errorf("expected 3 recent bookings, got %d", len(data.RecentBookings))
	}
}
