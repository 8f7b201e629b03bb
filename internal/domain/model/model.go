package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderInPreparation OrderStatus = "in-preparation"
	OrderReady         OrderStatus = "ready"
	OrderCompleted     OrderStatus = "completed"
	OrderCancelled     OrderStatus = "cancelled"
)

// ParseOrderStatus matches case-insensitively; returns false for unknown values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderPending:
		return OrderPending, true
	case OrderInPreparation:
		return OrderInPreparation, true
	case OrderReady:
		return OrderReady, true
	case OrderCompleted:
		return OrderCompleted, true
	case OrderCancelled:
		return OrderCancelled, true
	}
	return "", false
}

// IsTerminal reports whether no further transitions can occur.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// IsActive reports whether the order counts against the per-user limit.
func (s OrderStatus) IsActive() bool {
	return s == OrderPending || s == OrderInPreparation
}

type ToppingCategory string

const (
	CategoryVegetable ToppingCategory = "vegetable"
	CategoryMeat      ToppingCategory = "meat"
	CategoryCheese    ToppingCategory = "cheese"
	CategorySauce     ToppingCategory = "sauce"
	CategoryExtras    ToppingCategory = "extras"
)

func ToppingCategories() []ToppingCategory {
	return []ToppingCategory{CategoryVegetable, CategoryMeat, CategoryCheese, CategorySauce, CategoryExtras}
}

type Burger struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

type Topping struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category ToppingCategory `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

type OrderItem struct {
	BurgerID        string   `json:"burgerId"`
	Quantity        int      `json:"quantity"`
	ExtraToppingIDs []string `json:"extraToppingIds,omitempty"`
}

// Order is the central entity. UserID is retained by the store but stripped
// from every order handed back to callers, so it never leaks through a
// listing or read endpoint.
type Order struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"userId,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	Items                 []OrderItem     `json:"items"`
	TotalPrice            decimal.Decimal `json:"totalPrice"`
	Status                OrderStatus     `json:"status"`
	EstimatedCompletionAt time.Time       `json:"estimatedCompletionAt"`
	ReadyAt               *time.Time      `json:"readyAt,omitempty"`
	CompletedAt           *time.Time      `json:"completedAt,omitempty"`
	Nickname              string          `json:"nickname,omitempty"`
}

// BurgerCount is the total quantity across all items.
func (o *Order) BurgerCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// Stripped returns a copy safe to hand outside the owning context.
func (o Order) Stripped() Order {
	o.UserID = ""
	return o
}

// NewOrderID generates a unique order id. The time prefix keeps ids roughly
// sortable; uniqueness comes from the random suffix.
func NewOrderID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("order-%d-%s", now.UnixMilli(), suffix)
}

// OrderUpdate is a partial update applied by the transition worker. Nil
// fields are left untouched.
type OrderUpdate struct {
	Status      *OrderStatus
	ReadyAt     *time.Time
	CompletedAt *time.Time
}

type CreateOrderCommand struct {
	UserID   string      `json:"userId"`
	Items    []OrderItem `json:"items"`
	Nickname string      `json:"nickname,omitempty"`
}
