package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/skyfare/flightbooking/internal/domain"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingDeleted   = "booking_deleted"
)

type BookingEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	BookingNumber string    `json:"booking_number"`
	FlightID      int64     `json:"flight_id"`
	UserID        int64     `json:"user_id"`
	SeatsBooked   int       `json:"seats_booked"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, booking *domain.Booking) BookingEvent {
	return BookingEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		BookingNumber: booking.BookingNumber,
		FlightID:      booking.FlightID,
		UserID:        booking.UserID,
		SeatsBooked:   booking.SeatsBooked,
		Status:        string(booking.Status),
		OccurredAt:    time.Now(),
	}
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
