package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skyfare/flightbooking/internal/domain"
)

type BookingRepository interface {
	CreateWithReservation(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	Confirm(ctx context.Context, id int64) (*domain.Booking, error)
	CancelWithRelease(ctx context.Context, id int64) (*domain.Booking, error)
	DeleteWithRelease(ctx context.Context, id int64) error
	UpdatePassengers(ctx context.Context, id int64, names []string, birthDates []time.Time) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, booking_number, flight_id, user_id, seats_booked, total_price_cents, booking_status, created_at, updated_at`

func scanBooking(row pgx.Row, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.BookingNumber, &b.FlightID, &b.UserID, &b.SeatsBooked, &b.TotalPriceCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

// CreateWithReservation inserts the booking and decrements the flight's
// seat count in one transaction. The decrement is the same conditional
// UPDATE the flight repository uses, so a booking row can never be
// committed without its matching reservation.
func (r *PGBookingRepository) CreateWithReservation(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var remaining int
	err = tx.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2 RETURNING available_seats`, booking.FlightID, booking.SeatsBooked).Scan(&remaining)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		var exists bool
		if probeErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, booking.FlightID).Scan(&exists); probeErr != nil {
			return probeErr
		}
		if !exists {
			return domain.ErrFlightNotFound
		}
		return domain.ErrNotEnoughSeats
	}

	booking.Status = domain.BookingStatusCreated
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (booking_number, flight_id, user_id, seats_booked, total_price_cents, booking_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		booking.BookingNumber, booking.FlightID, booking.UserID, booking.SeatsBooked, booking.TotalPriceCents, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	if err := insertPassengers(ctx, tx, booking.ID, booking.PassengerNames, booking.PassengerBirthDates); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertPassengers(ctx context.Context, tx pgx.Tx, bookingID int64, names []string, birthDates []time.Time) error {
	for i, name := range names {
		if _, err := tx.Exec(ctx, `INSERT INTO booking_passenger_names (booking_id, position, full_name) VALUES ($1, $2, $3)`, bookingID, i, name); err != nil {
			return err
		}
	}
	for i, bd := range birthDates {
		if _, err := tx.Exec(ctx, `INSERT INTO booking_passenger_birth_dates (booking_id, position, birth_date) VALUES ($1, $2, $3)`, bookingID, i, bd); err != nil {
			return err
		}
	}
	return nil
}

func deletePassengers(ctx context.Context, tx pgx.Tx, bookingID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM booking_passenger_names WHERE booking_id=$1`, bookingID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `DELETE FROM booking_passenger_birth_dates WHERE booking_id=$1`, bookingID)
	return err
}

func (r *PGBookingRepository) loadPassengers(ctx context.Context, b *domain.Booking) error {
	rows, err := r.db.Query(ctx, `SELECT full_name FROM booking_passenger_names WHERE booking_id=$1 ORDER BY position`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		b.PassengerNames = append(b.PassengerNames, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	dateRows, err := r.db.Query(ctx, `SELECT birth_date FROM booking_passenger_birth_dates WHERE booking_id=$1 ORDER BY position`, b.ID)
	if err != nil {
		return err
	}
	defer dateRows.Close()
	for dateRows.Next() {
		var bd time.Time
		if err := dateRows.Scan(&bd); err != nil {
			return err
		}
		b.PassengerBirthDates = append(b.PassengerBirthDates, bd)
	}
	return dateRows.Err()
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	if err := r.loadPassengers(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_number=$1`, number)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	if err := r.loadPassengers(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

func (r *PGBookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Confirm moves a CREATED booking to CONFIRMED. Seats stay held. The
// status guard is part of the UPDATE so two racing transition requests
// cannot both win.
func (r *PGBookingRepository) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET booking_status=$2, updated_at=now() WHERE id=$1 AND booking_status=$3 RETURNING `+bookingColumns,
		id, domain.BookingStatusConfirmed, domain.BookingStatusCreated)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.transitionError(ctx, id)
		}
		return nil, err
	}
	return &b, nil
}

// CancelWithRelease moves a CREATED or CONFIRMED booking to CANCELLED and
// returns its seats to the flight, both in one transaction. A booking
// already CANCELLED does not match the guard, so seats cannot be released
// twice through repeated cancellation.
func (r *PGBookingRepository) CancelWithRelease(ctx context.Context, id int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE bookings SET booking_status=$2, updated_at=now() WHERE id=$1 AND booking_status IN ($3, $4) RETURNING `+bookingColumns,
		id, domain.BookingStatusCancelled, domain.BookingStatusCreated, domain.BookingStatusConfirmed)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.transitionError(ctx, id)
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at = now() WHERE id=$1`, b.FlightID, b.SeatsBooked); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteWithRelease removes a booking record and returns its seats. Only
// CREATED bookings match; deleting anything else is a policy violation
// reported by the service layer before it ever reaches this guard.
func (r *PGBookingRepository) DeleteWithRelease(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock the row under the status guard so the booking cannot move out
	// of CREATED between the check and the delete.
	var flightID int64
	var seats int
	err = tx.QueryRow(ctx, `SELECT flight_id, seats_booked FROM bookings WHERE id=$1 AND booking_status=$2 FOR UPDATE`, id, domain.BookingStatusCreated).Scan(&flightID, &seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, statusErr := r.currentStatus(ctx, id); statusErr != nil {
				return statusErr
			}
			return domain.ErrInvalidOperation
		}
		return err
	}

	if err := deletePassengers(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at = now() WHERE id=$1`, flightID, seats); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdatePassengers rewrites the passenger side tables for a booking that
// is still CREATED. The seat count does not change, so the lists must
// keep their original length; the service validates that.
func (r *PGBookingRepository) UpdatePassengers(ctx context.Context, id int64, names []string, birthDates []time.Time) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE bookings SET updated_at=now() WHERE id=$1 AND booking_status=$2 RETURNING `+bookingColumns, id, domain.BookingStatusCreated)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, statusErr := r.currentStatus(ctx, id); statusErr != nil {
				return nil, statusErr
			}
			return nil, domain.ErrInvalidOperation
		}
		return nil, err
	}

	if err := deletePassengers(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := insertPassengers(ctx, tx, id, names, birthDates); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	b.PassengerNames = names
	b.PassengerBirthDates = birthDates
	return &b, nil
}

func (r *PGBookingRepository) currentStatus(ctx context.Context, id int64) (domain.BookingStatus, error) {
	var status domain.BookingStatus
	err := r.db.QueryRow(ctx, `SELECT booking_status FROM bookings WHERE id=$1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrBookingNotFound
	}
	return status, err
}

// transitionError resolves a failed guarded update into the right error:
// the booking either vanished or sits in a status the transition does not
// accept.
func (r *PGBookingRepository) transitionError(ctx context.Context, id int64) error {
	if _, err := r.currentStatus(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

var _ BookingRepository = (*PGBookingRepository)(nil)
