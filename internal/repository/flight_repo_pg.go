package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skyfare/flightbooking/internal/domain"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	ReserveSeats(ctx context.Context, flightID int64, count int) (int, error)
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
	HasCapacity(ctx context.Context, flightID int64, count int) (bool, error)
	ListSweepCandidates(ctx context.Context, now time.Time) ([]int64, error)
	MarkUnavailable(ctx context.Context, flightID int64, now time.Time) (bool, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, from_airport, to_airport, departure_time, arrival_time, total_seats, available_seats, price_cents, available, created_at, updated_at`

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNumber, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats, &f.PriceCents, &f.Available, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	if flight.AvailableSeats < 0 || flight.AvailableSeats > flight.TotalSeats {
		return domain.ErrInvalidRequest
	}
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, from_airport, to_airport, departure_time, arrival_time, total_seats, available_seats, price_cents, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.FromAirport, flight.ToAirport, flight.DepartureTime, flight.ArrivalTime, flight.TotalSeats, flight.AvailableSeats, flight.PriceCents, flight.Available).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	if flight.AvailableSeats < 0 || flight.AvailableSeats > flight.TotalSeats {
		return domain.ErrInvalidRequest
	}
	res, err := r.db.Exec(ctx, `UPDATE flights SET flight_number=$2, from_airport=$3, to_airport=$4, departure_time=$5, arrival_time=$6, total_seats=$7, available_seats=$8, price_cents=$9, available=$10, updated_at=now() WHERE id=$1`,
		flight.ID, flight.FlightNumber, flight.FromAirport, flight.ToAirport, flight.DepartureTime, flight.ArrivalTime, flight.TotalSeats, flight.AvailableSeats, flight.PriceCents, flight.Available)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

// ReserveSeats decrements the flight's seat count by count and returns the
// remaining seats. The decrement is a single conditional UPDATE, so two
// concurrent reservations against the same flight serialize on the row and
// cannot jointly oversell it.
func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID int64, count int) (int, error) {
	if count <= 0 {
		return 0, domain.ErrInvalidRequest
	}
	var remaining int
	err := r.db.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2 RETURNING available_seats`, flightID, count).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	// No row matched: tell a missing flight apart from a sold-out one.
	var exists bool
	if probeErr := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, flightID).Scan(&exists); probeErr != nil {
		return 0, probeErr
	}
	if !exists {
		return 0, domain.ErrFlightNotFound
	}
	return 0, domain.ErrNotEnoughSeats
}

// ReleaseSeats returns count seats to the flight. The upper bound is the
// caller's contract: the booking state machine only releases what a
// booking reserved, and at most once.
func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	if count <= 0 {
		return domain.ErrInvalidRequest
	}
	res, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at = now() WHERE id=$1`, flightID, count)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) HasCapacity(ctx context.Context, flightID int64, count int) (bool, error) {
	if count <= 0 {
		return false, domain.ErrInvalidRequest
	}
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT available_seats >= $2 FROM flights WHERE id=$1`, flightID, count).Scan(&ok)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, domain.ErrFlightNotFound
	}
	return ok, err
}

// ListSweepCandidates returns ids of flights still flagged available that
// have departed or sold out.
func (r *PGFlightRepository) ListSweepCandidates(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM flights WHERE available AND (departure_time <= $1 OR available_seats = 0)`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkUnavailable flips the availability flag off, re-checking the sweep
// condition inside the UPDATE so a cancellation that released seats
// between the candidate scan and this write leaves the flight untouched.
// It never changes the seat count. Returns whether the row was updated.
func (r *PGFlightRepository) MarkUnavailable(ctx context.Context, flightID int64, now time.Time) (bool, error) {
	res, err := r.db.Exec(ctx, `UPDATE flights SET available = false, updated_at = now() WHERE id=$1 AND available AND (departure_time <= $2 OR available_seats = 0)`, flightID, now)
	if err != nil {
		return false, fmt.Errorf("mark flight %d unavailable: %w", flightID, err)
	}
	return res.RowsAffected() > 0, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
