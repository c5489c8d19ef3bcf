package email

import (
	"context"
	"log"

	"github.com/skyfare/flightbooking/internal/kafka"
)

// Sender delivers booking notifications. The current implementation only
// logs; the worker wires it behind the notifications topic so a real
// mailer can replace it without touching the consumer loop.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log.Printf("notify user %d: booking %s %s (flight %d, %d seats)",
		event.UserID, event.BookingNumber, event.Type, event.FlightID, event.SeatsBooked)
	return nil
}
