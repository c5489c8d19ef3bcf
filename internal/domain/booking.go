package domain

import "time"

type BookingStatus string

const (
	BookingStatusCreated   BookingStatus = "CREATED"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusCreated, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID                  int64
	BookingNumber       string
	FlightID            int64
	UserID              int64
	SeatsBooked         int
	PassengerNames      []string
	PassengerBirthDates []time.Time
	TotalPriceCents     int64
	Status              BookingStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CanTransition validates a status change against the booking lifecycle:
// CREATED -> CONFIRMED, CREATED -> CANCELLED, CONFIRMED -> CANCELLED.
// CANCELLED is terminal.
func (b *Booking) CanTransition(to BookingStatus) error {
	switch {
	case b.Status == BookingStatusCreated && to == BookingStatusConfirmed:
		return nil
	case b.Status == BookingStatusCreated && to == BookingStatusCancelled:
		return nil
	case b.Status == BookingStatusConfirmed && to == BookingStatusCancelled:
		return nil
	}
	return ErrInvalidTransition
}

// CanDelete permits removal of the booking record only while it is still
// CREATED. Confirmed and cancelled bookings are kept for history, and
// deleting a cancelled booking would release its seats a second time.
func (b *Booking) CanDelete() error {
	if b.Status != BookingStatusCreated {
		return ErrInvalidOperation
	}
	return nil
}

// CanUpdatePassengers permits passenger edits only while CREATED.
func (b *Booking) CanUpdatePassengers() error {
	if b.Status != BookingStatusCreated {
		return ErrInvalidOperation
	}
	return nil
}

// ReleasesSeats reports whether the transition to the given status returns
// the booked seats to the flight. Only cancellation releases seats;
// confirmation keeps them held.
func ReleasesSeats(to BookingStatus) bool {
	return to == BookingStatusCancelled
}
