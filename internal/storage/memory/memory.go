// Package memory is the in-process fallback store. It is selected at startup
// when Postgres is unreachable and implements the same storage.Store
// capability, so callers never learn which backing is active. The catalog is
// loaded from embedded JSON; orders live in a mutex-guarded map.
package memory

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/contoso/burger-api/internal/domain/model"
)

//go:embed data/burgers.json
var burgersJSON []byte

//go:embed data/toppings.json
var toppingsJSON []byte

type Storage struct {
	logger *slog.Logger

	burgers  []model.Burger
	toppings []model.Topping

	mu     sync.RWMutex
	orders map[string]model.Order
	users  map[string]string
}

func NewStorage(log *slog.Logger) (*Storage, error) {
	s := &Storage{
		logger: log,
		orders: make(map[string]model.Order),
		users:  make(map[string]string),
	}

	if err := json.Unmarshal(burgersJSON, &s.burgers); err != nil {
		return nil, fmt.Errorf("load burgers: %w", err)
	}
	if err := json.Unmarshal(toppingsJSON, &s.toppings); err != nil {
		return nil, fmt.Errorf("load toppings: %w", err)
	}

	log.Info("in-memory store initialised",
		slog.Int("burgers", len(s.burgers)),
		slog.Int("toppings", len(s.toppings)))
	return s, nil
}

func (s *Storage) Close() {}

// Catalog

func (s *Storage) Burgers(_ context.Context) ([]model.Burger, error) {
	out := make([]model.Burger, len(s.burgers))
	copy(out, s.burgers)
	return out, nil
}

func (s *Storage) Burger(_ context.Context, id string) (*model.Burger, error) {
	for _, b := range s.burgers {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("burger %q: %w", id, model.ErrNotFound)
}

func (s *Storage) Toppings(_ context.Context) ([]model.Topping, error) {
	out := make([]model.Topping, len(s.toppings))
	copy(out, s.toppings)
	return out, nil
}

func (s *Storage) Topping(_ context.Context, id string) (*model.Topping, error) {
	for _, t := range s.toppings {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("topping %q: %w", id, model.ErrNotFound)
}

func (s *Storage) ToppingsByCategory(ctx context.Context, category model.ToppingCategory) ([]model.Topping, error) {
	var out []model.Topping
	for _, t := range s.toppings {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out, nil
}

// Users. Without a durable store there is no registry to consult, so
// existence checks pass; this mirrors the fallback behaviour of the
// original deployment.

func (s *Storage) UserExists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (s *Storage) CreateUser(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		s.users[id] = name
	}
	return nil
}

func (s *Storage) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Orders

func (s *Storage) ListOrders(_ context.Context, userID string) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Order
	for _, o := range s.orders {
		if userID != "" && o.UserID != userID {
			continue
		}
		out = append(out, o.Stripped())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Storage) GetOrder(_ context.Context, id, userID string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok || (userID != "" && o.UserID != userID) {
		return nil, fmt.Errorf("order %q: %w", id, model.ErrNotFound)
	}
	stripped := o.Stripped()
	return &stripped, nil
}

func (s *Storage) CreateOrder(_ context.Context, order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = *order
	stripped := order.Stripped()
	return &stripped, nil
}

func (s *Storage) UpdateOrderStatus(_ context.Context, id string, status model.OrderStatus, userID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || (userID != "" && o.UserID != userID) {
		return nil, fmt.Errorf("order %q: %w", id, model.ErrNotFound)
	}
	o.Status = status
	s.orders[id] = o

	stripped := o.Stripped()
	return &stripped, nil
}

func (s *Storage) UpdateOrder(_ context.Context, id string, upd model.OrderUpdate) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %q: %w", id, model.ErrNotFound)
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	if upd.ReadyAt != nil {
		o.ReadyAt = upd.ReadyAt
	}
	if upd.CompletedAt != nil {
		o.CompletedAt = upd.CompletedAt
	}
	s.orders[id] = o

	stripped := o.Stripped()
	return &stripped, nil
}

func (s *Storage) DeleteOrder(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || (userID != "" && o.UserID != userID) {
		return false, nil
	}
	delete(s.orders, o.ID)
	return true, nil
}
