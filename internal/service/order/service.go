// Package order holds admission control, pricing and order queries. The HTTP
// layer calls into it and the store selected at startup backs it.
package order

import (
	"log/slog"

	"github.com/contoso/burger-api/internal/metrics"
	"github.com/contoso/burger-api/internal/storage"
)

// Limits gates order creation.
type Limits struct {
	// MaxActiveOrders caps pending plus in-preparation orders per user.
	MaxActiveOrders int
	// MaxBurgersPerOrder caps the summed quantity across all items.
	MaxBurgersPerOrder int
	// RegistrationURL is included in the unauthorized error message.
	RegistrationURL string
}

type Store interface {
	storage.OrderStore
	storage.CatalogStore
	storage.UserStore
}

type Service struct {
	logger  *slog.Logger
	store   Store
	metrics *metrics.Metrics
	limits  Limits
}

func NewService(log *slog.Logger, store Store, m *metrics.Metrics, limits Limits) *Service {
	if limits.MaxActiveOrders <= 0 {
		limits.MaxActiveOrders = 5
	}
	if limits.MaxBurgersPerOrder <= 0 {
		limits.MaxBurgersPerOrder = 50
	}
	return &Service{
		logger:  log,
		store:   store,
		metrics: m,
		limits:  limits,
	}
}
