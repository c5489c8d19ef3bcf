package booking

import (
	"context"
	"crypto/rand"
	"log"
	"time"

	"github.com/skyfare/flightbooking/internal/domain"
	"github.com/skyfare/flightbooking/internal/kafka"
	"github.com/skyfare/flightbooking/internal/repository"
)

// seat counts a single booking may carry
const (
	minSeatsPerBooking = 1
	maxSeatsPerBooking = 10
)

const bookingNumberPrefix = "FB-"

type BookingUseCase interface {
	CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error)
	GetBookingByNumber(ctx context.Context, actor domain.Actor, number string) (*domain.Booking, error)
	ListBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error)
	ConfirmBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, actor domain.Actor, id int64) error
	UpdateBookingStatus(ctx context.Context, actor domain.Actor, id int64, status domain.BookingStatus) (*domain.Booking, error)
	UpdatePassengerData(ctx context.Context, actor domain.Actor, id int64, input PassengerData) (*domain.Booking, error)
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
}

type CreateBookingInput struct {
	FlightID            int64       `json:"flight_id"`
	SeatsBooked         int         `json:"seats_booked"`
	PassengerNames      []string    `json:"passenger_names"`
	PassengerBirthDates []time.Time `json:"passenger_birth_dates"`
}

type PassengerData struct {
	Names      []string    `json:"passenger_names"`
	BirthDates []time.Time `json:"passenger_birth_dates"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if !flight.Bookable(s.now()) {
		return nil, domain.ErrInvalidOperation
	}

	booking := &domain.Booking{
		BookingNumber:       bookingNumberPrefix + randomBookingCode(8),
		FlightID:            flight.ID,
		UserID:              actor.UserID,
		SeatsBooked:         input.SeatsBooked,
		PassengerNames:      input.PassengerNames,
		PassengerBirthDates: input.PassengerBirthDates,
		TotalPriceCents:     flight.PriceCents * int64(input.SeatsBooked),
	}

	// Seat decrement and booking insert commit together or not at all.
	if err := s.bookings.CreateWithReservation(ctx, booking); err != nil {
		return nil, err
	}

	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) validateCreate(input CreateBookingInput) error {
	if input.SeatsBooked < minSeatsPerBooking || input.SeatsBooked > maxSeatsPerBooking {
		return domain.ErrInvalidRequest
	}
	if len(input.PassengerNames) != input.SeatsBooked || len(input.PassengerBirthDates) != input.SeatsBooked {
		return domain.ErrInvalidRequest
	}
	return validatePassengers(input.PassengerNames, input.PassengerBirthDates, s.now())
}

func validatePassengers(names []string, birthDates []time.Time, now time.Time) error {
	for _, name := range names {
		if name == "" {
			return domain.ErrInvalidRequest
		}
	}
	for _, bd := range birthDates {
		if !bd.Before(now) {
			return domain.ErrInvalidRequest
		}
	}
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking) {
		return nil, domain.ErrAccessDenied
	}
	return booking, nil
}

// GetBookingByNumber looks a booking up by its customer-facing reference.
func (s *BookingService) GetBookingByNumber(ctx context.Context, actor domain.Actor, number string) (*domain.Booking, error) {
	if number == "" {
		return nil, domain.ErrInvalidRequest
	}
	booking, err := s.bookings.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking) {
		return nil, domain.ErrAccessDenied
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	if actor.IsAdmin() {
		return s.bookings.List(ctx)
	}
	return s.bookings.ListByUser(ctx, actor.UserID)
}

func (s *BookingService) ConfirmBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	current, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := current.CanTransition(domain.BookingStatusConfirmed); err != nil {
		return nil, err
	}

	// The repository re-applies the status guard atomically; a racing
	// cancellation surfaces here as ErrInvalidTransition.
	updated, err := s.bookings.Confirm(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingConfirmed, updated)
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	current, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := current.CanTransition(domain.BookingStatusCancelled); err != nil {
		return nil, err
	}

	updated, err := s.bookings.CancelWithRelease(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return updated, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, actor domain.Actor, id int64) error {
	current, err := s.authorize(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := current.CanDelete(); err != nil {
		return err
	}

	if err := s.bookings.DeleteWithRelease(ctx, id); err != nil {
		return err
	}

	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventBookingDeleted, current)
	return nil
}

// UpdateBookingStatus is the generic transition entry point used by the
// status PATCH endpoint. It routes to the specific operations so each
// transition keeps its seat-ledger effect.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, actor domain.Actor, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidRequest
	}
	switch status {
	case domain.BookingStatusConfirmed:
		return s.ConfirmBooking(ctx, actor, id)
	case domain.BookingStatusCancelled:
		return s.CancelBooking(ctx, actor, id)
	default:
		return nil, domain.ErrInvalidTransition
	}
}

func (s *BookingService) UpdatePassengerData(ctx context.Context, actor domain.Actor, id int64, input PassengerData) (*domain.Booking, error) {
	current, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := current.CanUpdatePassengers(); err != nil {
		return nil, err
	}
	if len(input.Names) != current.SeatsBooked || len(input.BirthDates) != current.SeatsBooked {
		return nil, domain.ErrInvalidRequest
	}
	if err := validatePassengers(input.Names, input.BirthDates, s.now()); err != nil {
		return nil, err
	}
	return s.bookings.UpdatePassengers(ctx, id, input.Names, input.BirthDates)
}

func (s *BookingService) authorize(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking) {
		return nil, domain.ErrAccessDenied
	}
	return booking, nil
}

func (s *BookingService) invalidateFlights(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		log.Printf("invalidate flights cache: %v", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking)
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.BookingNumber, event); err != nil {
		log.Printf("publish %s event for booking %s: %v", eventType, booking.BookingNumber, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.BookingNumber, event); err != nil {
			log.Printf("publish %s notification for booking %s: %v", eventType, booking.BookingNumber, err)
		}
	}
}

const bookingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomBookingCode(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = bookingCodeAlphabet[int(b)%len(bookingCodeAlphabet)]
	}
	return string(buf)
}

var _ BookingUseCase = (*BookingService)(nil)
