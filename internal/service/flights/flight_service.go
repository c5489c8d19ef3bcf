package flights

import (
	"context"
	"time"

	"github.com/skyfare/flightbooking/internal/domain"
	"github.com/skyfare/flightbooking/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id int64, input UpdateFlightInput) (*domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

type CreateFlightInput struct {
	FlightNumber   string    `json:"flight_number"`
	FromAirport    string    `json:"from_airport"`
	ToAirport      string    `json:"to_airport"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	PriceCents     int64     `json:"price_cents"`
}

type UpdateFlightInput struct {
	FlightNumber   *string    `json:"flight_number"`
	DepartureTime  *time.Time `json:"departure_time"`
	ArrivalTime    *time.Time `json:"arrival_time"`
	AvailableSeats *int       `json:"available_seats"`
	PriceCents     *int64     `json:"price_cents"`
	Available      *bool      `json:"available"`
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if input.FlightNumber == "" || input.TotalSeats <= 0 {
		return nil, domain.ErrInvalidRequest
	}
	if input.AvailableSeats < 0 || input.AvailableSeats > input.TotalSeats {
		return nil, domain.ErrInvalidRequest
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, domain.ErrInvalidRequest
	}

	flight := &domain.Flight{
		FlightNumber:   input.FlightNumber,
		FromAirport:    input.FromAirport,
		ToAirport:      input.ToAirport,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.AvailableSeats,
		PriceCents:     input.PriceCents,
		Available:      true,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return flight, nil
}

// Update applies an admin edit. Seat edits set the count directly; the
// repository rejects values outside [0, total_seats].
func (s *FlightService) Update(ctx context.Context, id int64, input UpdateFlightInput) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FlightNumber != nil {
		flight.FlightNumber = *input.FlightNumber
	}
	if input.DepartureTime != nil {
		flight.DepartureTime = *input.DepartureTime
	}
	if input.ArrivalTime != nil {
		flight.ArrivalTime = *input.ArrivalTime
	}
	if input.AvailableSeats != nil {
		flight.AvailableSeats = *input.AvailableSeats
	}
	if input.PriceCents != nil {
		flight.PriceCents = *input.PriceCents
	}
	if input.Available != nil {
		flight.Available = *input.Available
	}

	if err := s.repo.Update(ctx, flight); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return flight, nil
}

var _ FlightUseCase = (*FlightService)(nil)
