package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/skyfare/flightbooking/config"
	"github.com/skyfare/flightbooking/internal/cache"
	"github.com/skyfare/flightbooking/internal/email"
	"github.com/skyfare/flightbooking/internal/kafka"
	"github.com/skyfare/flightbooking/internal/repository"
	"github.com/skyfare/flightbooking/internal/sweeper"
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
	flightRepo := repository.NewFlightRepository(pool)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	if cfg.Worker.SweepEnabled {
		sw := sweeper.New(flightRepo, redisCache)
		go sw.Run(ctx, time.Duration(cfg.Worker.SweepIntervalMinutes)*time.Minute)
	} else {
		log.Println("availability sweep disabled")
	}

	<-ctx.Done()
	log.Println("shutting down worker")
}
