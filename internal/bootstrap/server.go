package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/skyfare/flightbooking/api"
	"github.com/skyfare/flightbooking/config"
	"github.com/skyfare/flightbooking/internal/auth"
)

type Handlers struct {
	Auth     *api.AuthHandler
	Flights  *api.FlightHandler
	Bookings *api.BookingHandler
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, tokens *auth.Manager, handlers Handlers) error {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	v1 := router.Group("/api/v1")
	handlers.Auth.Register(v1.Group("/auth"))
	handlers.Flights.Register(
		v1.Group("/flights"),
		v1.Group("/flights", tokens.Middleware(), auth.RequireAdmin()),
	)
	handlers.Bookings.Register(v1.Group("/bookings", tokens.Middleware()))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
