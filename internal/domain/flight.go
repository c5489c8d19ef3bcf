package domain

import "time"

type Flight struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	FromAirport    string    `json:"from_airport"`
	ToAirport      string    `json:"to_airport"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	PriceCents     int64     `json:"price_cents"`
	Available      bool      `json:"available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Bookable reports whether new bookings may be taken against the flight.
// A flight that has departed or was deactivated by an admin or by the
// availability sweep takes no further bookings regardless of seat count.
func (f *Flight) Bookable(now time.Time) bool {
	return f.Available && f.DepartureTime.After(now)
}
