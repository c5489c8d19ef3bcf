package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skyfare/flightbooking/api"
	"github.com/skyfare/flightbooking/config"
	"github.com/skyfare/flightbooking/internal/auth"
	"github.com/skyfare/flightbooking/internal/bootstrap"
	"github.com/skyfare/flightbooking/internal/cache"
	"github.com/skyfare/flightbooking/internal/kafka"
	"github.com/skyfare/flightbooking/internal/repository"
	authservice "github.com/skyfare/flightbooking/internal/service/auth"
	"github.com/skyfare/flightbooking/internal/service/booking"
	"github.com/skyfare/flightbooking/internal/service/flights"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	tokens := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute)

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	flightService := flights.NewFlightService(flightRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	authService := authservice.NewAuthService(userRepo, tokens)

	handlers := bootstrap.Handlers{
		Auth:     api.NewAuthHandler(authService),
		Flights:  api.NewFlightHandler(flightService),
		Bookings: api.NewBookingHandler(bookingService),
	}

	if err := bootstrap.Run(ctx, cfg, tokens, handlers); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
