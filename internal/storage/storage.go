package storage

import (
	"context"

	"github.com/contoso/burger-api/internal/domain/model"
)

// OrderStore is CRUD over orders. Methods taking a userID scope the
// operation to the owning user when it is non-empty; a scoped lookup of an
// order owned by someone else behaves exactly like a missing order. Every
// order returned from a store has its UserID stripped.
type OrderStore interface {
	// ListOrders returns all orders, newest first, scoped when userID is set.
	ListOrders(ctx context.Context, userID string) ([]model.Order, error)

	// GetOrder returns model.ErrNotFound for a missing or foreign order.
	GetOrder(ctx context.Context, id, userID string) (*model.Order, error)

	CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error)

	// UpdateOrderStatus sets only the status, scoped when userID is set.
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus, userID string) (*model.Order, error)

	// UpdateOrder applies a partial update. Unscoped; only the transition
	// worker uses it.
	UpdateOrder(ctx context.Context, id string, upd model.OrderUpdate) (*model.Order, error)

	// DeleteOrder removes the order; false when missing or foreign.
	DeleteOrder(ctx context.Context, id, userID string) (bool, error)
}

// CatalogStore is read-only reference data backing price computation.
type CatalogStore interface {
	Burgers(ctx context.Context) ([]model.Burger, error)
	Burger(ctx context.Context, id string) (*model.Burger, error)
	Toppings(ctx context.Context) ([]model.Topping, error)
	Topping(ctx context.Context, id string) (*model.Topping, error)
	ToppingsByCategory(ctx context.Context, category model.ToppingCategory) ([]model.Topping, error)
}

type UserStore interface {
	UserExists(ctx context.Context, id string) (bool, error)
	CreateUser(ctx context.Context, id, name string) error
	CountUsers(ctx context.Context) (int, error)
}

// Store is the full backing-store capability. Exactly one implementation is
// selected at startup (Postgres when reachable, in-memory otherwise) and
// used for the lifetime of the process.
type Store interface {
	OrderStore
	CatalogStore
	UserStore
	Close()
}
