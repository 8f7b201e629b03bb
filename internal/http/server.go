// Package http wires the route table onto the order service and catalog.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/contoso/burger-api/internal/http/handlers"
	"github.com/contoso/burger-api/internal/http/middlewares"
	"github.com/contoso/burger-api/internal/storage"
)

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	logger          *slog.Logger
	srv             *http.Server
	shutdownTimeout time.Duration
}

// Router builds the full route table; NewServer and the handler tests share it.
func Router(log *slog.Logger, service handlers.OrderService, store storage.Store) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handlers.Health(store))
	mux.HandleFunc("GET /api/burgers", handlers.ListBurgers(store))
	mux.HandleFunc("GET /api/burgers/{id}", handlers.GetBurger(store))
	mux.HandleFunc("GET /api/toppings", handlers.ListToppings(store))
	mux.HandleFunc("GET /api/toppings/categories", handlers.ListToppingCategories())
	mux.HandleFunc("GET /api/toppings/{id}", handlers.GetTopping(store))
	mux.HandleFunc("GET /api/orders", handlers.ListOrders(service))
	mux.HandleFunc("POST /api/orders", handlers.CreateOrder(service))
	mux.HandleFunc("GET /api/orders/{id}", handlers.GetOrder(service))
	mux.HandleFunc("DELETE /api/orders/{id}", handlers.CancelOrder(service))

	return middlewares.Recovery(log)(middlewares.Logging(log)(mux))
}

func NewServer(log *slog.Logger, cfg ServerConfig, service handlers.OrderService, store storage.Store) *Server {
	handler := Router(log, service, store)

	return &Server{
		logger: log,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
