package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/repositories/mongodb"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/pkg/logger"
	"github.com/2nas159/car-rental-app/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.ErrorLevel,
		Format: "text",
		Output: "stderr",
	})
	if err != nil {
		panic(err)
	}
	return log
}

// mockUserRepo is an in-memory UserRepository.
type mockUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return mongodb.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, mongodb.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongodb.ErrNotFound
}

func (m *mockUserRepo) Update(_ context.Context, id primitive.ObjectID, _ map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return mongodb.ErrNotFound
	}
	return nil
}

// mockCarRepo is an in-memory CarRepository.
type mockCarRepo struct {
	mu   sync.Mutex
	cars map[primitive.ObjectID]*models.Car

	listByLocationErr error
}

func newMockCarRepo() *mockCarRepo {
	return &mockCarRepo{cars: make(map[primitive.ObjectID]*models.Car)}
}

func (m *mockCarRepo) Create(_ context.Context, car *models.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if car.ID.IsZero() {
		car.ID = primitive.NewObjectID()
	}
	copied := *car
	m.cars[car.ID] = &copied
	return nil
}

func (m *mockCarRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	car, ok := m.cars[id]
	if !ok {
		return nil, mongodb.ErrNotFound
	}
	copied := *car
	return &copied, nil
}

func (m *mockCarRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	car, ok := m.cars[id]
	if !ok {
		return mongodb.ErrNotFound
	}
	if v, ok := updates["price_per_day"].(float64); ok {
		car.PricePerDay = v
	}
	if v, ok := updates["is_available"].(bool); ok {
		car.IsAvailable = v
	}
	if v, ok := updates["location"].(string); ok {
		car.Location = v
	}
	return nil
}

func (m *mockCarRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cars[id]; !ok {
		return mongodb.ErrNotFound
	}
	delete(m.cars, id)
	return nil
}

func (m *mockCarRepo) List(_ context.Context, _ *utils.PaginationParams) ([]*models.Car, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cars := make([]*models.Car, 0, len(m.cars))
	for _, car := range m.cars {
		copied := *car
		cars = append(cars, &copied)
	}
	return cars, int64(len(cars)), nil
}

func (m *mockCarRepo) GetByOwnerID(_ context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cars []*models.Car
	for _, car := range m.cars {
		if car.OwnerID == ownerID {
			copied := *car
			cars = append(cars, &copied)
		}
	}
	return cars, nil
}

func (m *mockCarRepo) GetListedByLocation(_ context.Context, location string) ([]*models.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listByLocationErr != nil {
		return nil, m.listByLocationErr
	}
	var cars []*models.Car
	for _, car := range m.cars {
		if car.Location == location && car.IsAvailable {
			copied := *car
			cars = append(cars, &copied)
		}
	}
	sort.Slice(cars, func(i, j int) bool { return cars[i].PricePerDay < cars[j].PricePerDay })
	return cars, nil
}

func (m *mockCarRepo) CountByOwner(_ context.Context, ownerID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, car := range m.cars {
		if car.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// mockBookingRepo is an in-memory BookingRepository with error injection for
// the failure-path tests.
type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking

	createCalls    atomic.Int64
	overlapCalls   atomic.Int64
	getActiveErr   error
	overlapErr     error
	createErr      error
	confirmPayErr  error
	overlapLatency time.Duration
	readLatency    time.Duration
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (m *mockBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	m.createCalls.Add(1)
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	if m.readLatency > 0 {
		time.Sleep(m.readLatency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, mongodb.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	if booking.Status != from {
		return false, nil
	}
	booking.Status = to
	booking.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockBookingRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return mongodb.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *mockBookingRepo) byFilter(match func(*models.Booking) bool) []*models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Booking
	for _, booking := range m.bookings {
		if match(booking) {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out
}

func (m *mockBookingRepo) GetByRenterID(_ context.Context, renterID primitive.ObjectID) ([]*models.Booking, error) {
	return m.byFilter(func(b *models.Booking) bool { return b.RenterID == renterID }), nil
}

func (m *mockBookingRepo) GetByOwnerID(_ context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error) {
	return m.byFilter(func(b *models.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (m *mockBookingRepo) GetByOwnerAndStatus(_ context.Context, ownerID primitive.ObjectID, status models.BookingStatus) ([]*models.Booking, error) {
	return m.byFilter(func(b *models.Booking) bool { return b.OwnerID == ownerID && b.Status == status }), nil
}

func (m *mockBookingRepo) GetRecentByOwner(_ context.Context, ownerID primitive.ObjectID, limit int) ([]*models.Booking, error) {
	bookings := m.byFilter(func(b *models.Booking) bool { return b.OwnerID == ownerID })
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	if len(bookings) > limit {
		bookings = bookings[:limit]
	}
	return bookings, nil
}

func (m *mockBookingRepo) FindOverlapping(_ context.Context, carID primitive.ObjectID, pickup, ret time.Time) (*models.Booking, error) {
	m.overlapCalls.Add(1)
	if m.overlapErr != nil {
		return nil, m.overlapErr
	}
	if m.overlapLatency > 0 {
		time.Sleep(m.overlapLatency)
	}
	matches := m.byFilter(func(b *models.Booking) bool {
		return b.CarID == carID && b.Blocks() && b.OverlapsInterval(pickup, ret)
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (m *mockBookingRepo) FindConflictingCarIDs(_ context.Context, carIDs []primitive.ObjectID, pickup, ret time.Time) (map[primitive.ObjectID]struct{}, error) {
	if m.overlapErr != nil {
		return nil, m.overlapErr
	}
	candidates := make(map[primitive.ObjectID]struct{}, len(carIDs))
	for _, id := range carIDs {
		candidates[id] = struct{}{}
	}
	conflicting := make(map[primitive.ObjectID]struct{})
	for _, b := range m.byFilter(func(b *models.Booking) bool { return b.Blocks() && b.OverlapsInterval(pickup, ret) }) {
		if _, ok := candidates[b.CarID]; ok {
			conflicting[b.CarID] = struct{}{}
		}
	}
	return conflicting, nil
}

func (m *mockBookingRepo) GetActiveByCarID(_ context.Context, carID primitive.ObjectID) ([]*models.Booking, error) {
	if m.getActiveErr != nil {
		return nil, m.getActiveErr
	}
	return m.byFilter(func(b *models.Booking) bool { return b.CarID == carID && b.Blocks() }), nil
}

func (m *mockBookingRepo) ConfirmPayment(_ context.Context, id primitive.ObjectID, intentID string, paidAt time.Time) (bool, error) {
	if m.confirmPayErr != nil {
		return false, m.confirmPayErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	if booking.Status != models.BookingStatusPending {
		return false, nil
	}
	booking.Status = models.BookingStatusConfirmed
	booking.PaymentIntentID = intentID
	booking.PaidAt = &paidAt
	booking.UpdatedAt = paidAt
	return true, nil
}

func (m *mockBookingRepo) MarkCompletedBefore(_ context.Context, ownerID primitive.ObjectID, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, booking := range m.bookings {
		if booking.OwnerID == ownerID && booking.Status == models.BookingStatusConfirmed && booking.ReturnDate.Before(cutoff) {
			booking.Status = models.BookingStatusCompleted
			count++
		}
	}
	return count, nil
}

func (m *mockBookingRepo) CountByOwner(_ context.Context, ownerID primitive.ObjectID) (int64, error) {
	return int64(len(m.byFilter(func(b *models.Booking) bool { return b.OwnerID == ownerID }))), nil
}

func (m *mockBookingRepo) CountByOwnerAndStatus(_ context.Context, ownerID primitive.ObjectID, status models.BookingStatus) (int64, error) {
	return int64(len(m.byFilter(func(b *models.Booking) bool { return b.OwnerID == ownerID && b.Status == status }))), nil
}

func (m *mockBookingRepo) TotalRevenueByOwner(_ context.Context, ownerID primitive.ObjectID) (float64, error) {
	// Sums regardless of status, matching the production aggregation.
	var total float64
	for _, b := range m.byFilter(func(b *models.Booking) bool { return b.OwnerID == ownerID }) {
		total += b.Price
	}
	return total, nil
}

func (m *mockBookingRepo) RevenueByOwnerBetween(_ context.Context, ownerID primitive.ObjectID, from, to time.Time) (float64, error) {
	var total float64
	for _, b := range m.byFilter(func(b *models.Booking) bool {
		return b.OwnerID == ownerID && b.Status != models.BookingStatusCancelled && b.PaidAt != nil &&
			!b.PaidAt.Before(from) && b.PaidAt.Before(to)
	}) {
		total += b.Price
	}
	return total, nil
}

// fakeGateway is a scriptable payment.Gateway.
type fakeGateway struct {
	mu      sync.Mutex
	intents map[string]*payment.Intent

	createErr    error
	retrieveErr  error
	verifyErr    error
	event        *payment.WebhookEvent
	createCalls  atomic.Int64
	verifyCalls  atomic.Int64
	nextIntentID int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: make(map[string]*payment.Intent)}
}

func (g *fakeGateway) CreateIntent(_ context.Context, request *payment.IntentRequest) (*payment.Intent, error) {
	g.createCalls.Add(1)
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextIntentID++
	intent := &payment.Intent{
		ID:           primitive.NewObjectID().Hex(),
		ClientSecret: "secret",
		Status:       "requires_payment_method",
		Amount:       int64(request.Amount * 100),
		Currency:     request.Currency,
		Metadata:     request.Metadata,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, intentID string) (*payment.Intent, error) {
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[intentID]
	if !ok {
		return nil, errors.New("no such payment_intent")
	}
	copied := *intent
	return &copied, nil
}

func (g *fakeGateway) VerifyWebhook(_ []byte, _ string) (*payment.WebhookEvent, error) {
	g.verifyCalls.Add(1)
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.event, nil
}

// setIntentStatus scripts the gateway-side outcome of an intent.
func (g *fakeGateway) setIntentStatus(intentID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if intent, ok := g.intents[intentID]; ok {
		intent.Status = status
	}
}
