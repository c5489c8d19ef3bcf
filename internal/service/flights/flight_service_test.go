package flights

import (
	"context"
	"testing"
	"time"

	"github.com/skyfare/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) ReserveSeats(ctx context.Context, flightID int64, count int) (int, error) {
	args := m.Called(ctx, flightID, count)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	args := m.Called(ctx, flightID, count)
	return args.Error(0)
}

func (m *MockFlightRepository) HasCapacity(ctx context.Context, flightID int64, count int) (bool, error) {
	args := m.Called(ctx, flightID, count)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) ListSweepCandidates(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockFlightRepository) MarkUnavailable(ctx context.Context, flightID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, flightID, now)
	return args.Bool(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	flights := []domain.Flight{{ID: 1, FlightNumber: "SF-100", TotalSeats: 180, AvailableSeats: 150}}

	mockCache.On("GetFlights", ctx).Return([]domain.Flight(nil), nil).Once()
	mockRepo.On("List", ctx).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, flights).Return(nil).Once()

	got, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, got)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	flights := []domain.Flight{{ID: 1, FlightNumber: "SF-100"}}

	mockCache.On("GetFlights", ctx).Return(flights, nil).Once()

	got, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, got)
	mockRepo.AssertNotCalled(t, "List")
}

func TestFlightService_Create(t *testing.T) {
	departure := time.Now().Add(48 * time.Hour)

	t.Run("success", func(t *testing.T) {
		mockRepo := &MockFlightRepository{}
		mockCache := &MockCache{}
		service := NewFlightService(mockRepo, mockCache)

		ctx := context.Background()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Flight")).Return(nil).Once()
		mockCache.On("InvalidateFlights", ctx).Return(nil).Once()

		flight, err := service.Create(ctx, CreateFlightInput{
			FlightNumber:   "SF-200",
			FromAirport:    "AMS",
			ToAirport:      "LIS",
			DepartureTime:  departure,
			ArrivalTime:    departure.Add(3 * time.Hour),
			TotalSeats:     180,
			AvailableSeats: 180,
			PriceCents:     9_900,
		})

		assert.NoError(t, err)
		assert.True(t, flight.Available)
		mockRepo.AssertExpectations(t)
	})

	t.Run("seats above capacity rejected", func(t *testing.T) {
		service := NewFlightService(&MockFlightRepository{}, nil)

		flight, err := service.Create(context.Background(), CreateFlightInput{
			FlightNumber:   "SF-200",
			DepartureTime:  departure,
			ArrivalTime:    departure.Add(3 * time.Hour),
			TotalSeats:     180,
			AvailableSeats: 181,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Nil(t, flight)
	})

	t.Run("arrival before departure rejected", func(t *testing.T) {
		service := NewFlightService(&MockFlightRepository{}, nil)

		flight, err := service.Create(context.Background(), CreateFlightInput{
			FlightNumber:   "SF-200",
			DepartureTime:  departure,
			ArrivalTime:    departure.Add(-time.Hour),
			TotalSeats:     180,
			AvailableSeats: 180,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Nil(t, flight)
	})
}

func TestFlightService_Update(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	existing := &domain.Flight{ID: 1, FlightNumber: "SF-100", TotalSeats: 180, AvailableSeats: 150, Available: true}

	seats := 120
	available := false
	mockRepo.On("GetByID", ctx, int64(1)).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(f *domain.Flight) bool {
		return f.AvailableSeats == 120 && !f.Available
	})).Return(nil).Once()
	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()

	flight, err := service.Update(ctx, 1, UpdateFlightInput{AvailableSeats: &seats, Available: &available})

	assert.NoError(t, err)
	assert.Equal(t, 120, flight.AvailableSeats)
	assert.False(t, flight.Available)
	mockRepo.AssertExpectations(t)
}
