package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/skyfare/flightbooking/config"
	"github.com/skyfare/flightbooking/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

// InvalidateFlights drops the cached flight list. Called after any write
// that changes seat counts or availability so readers do not see stale
// inventory for a full TTL.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

func flightsKey() string {
	return "cache:flights"
}
