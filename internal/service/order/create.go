package order

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/contoso/burger-api/internal/domain/model"
)

// Create validates a creation request and prices it. Checks run in a fixed
// order and the first failure wins; nothing is persisted unless every check
// passes, so a rejected request leaves no trace.
func (s *Service) Create(ctx context.Context, cmd *model.CreateOrderCommand) (*model.Order, error) {
	if cmd.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", model.ErrInvalidRequest)
	}

	exists, err := s.store.UserExists(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: please register at %s", model.ErrUnauthorized, s.limits.RegistrationURL)
	}

	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one burger", model.ErrInvalidRequest)
	}

	active, err := s.countActiveOrders(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("count active orders: %w", err)
	}
	if active >= s.limits.MaxActiveOrders {
		return nil, fmt.Errorf("%w: limit is %d per user", model.ErrTooManyActiveOrders, s.limits.MaxActiveOrders)
	}

	burgerCount := 0
	for _, item := range cmd.Items {
		burgerCount += item.Quantity
	}
	if burgerCount > s.limits.MaxBurgersPerOrder {
		return nil, fmt.Errorf("%w: order cannot exceed %d burgers in total", model.ErrInvalidRequest, s.limits.MaxBurgersPerOrder)
	}

	totalPrice, err := s.priceItems(ctx, cmd.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:                    model.NewOrderID(now),
		UserID:                cmd.UserID,
		CreatedAt:             now,
		Items:                 cmd.Items,
		TotalPrice:            totalPrice,
		Status:                model.OrderPending,
		EstimatedCompletionAt: now.Add(estimateCompletion(burgerCount)),
		Nickname:              cmd.Nickname,
	}

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.metrics.OrdersPlaced.Inc()
	s.metrics.OrderValue.Observe(totalPrice.InexactFloat64())
	s.logger.Info("order created",
		slog.String("id", created.ID),
		slog.Int("burgers", burgerCount),
		slog.String("total", totalPrice.StringFixed(2)))
	return created, nil
}

// priceItems validates every item and computes the order total. Item checks
// fan out; each item's topping lookups fan out again and everything joins
// before pricing. A single missing burger or topping fails the whole order.
func (s *Service) priceItems(ctx context.Context, items []model.OrderItem) (decimal.Decimal, error) {
	itemPrices := make([]decimal.Decimal, len(items))

	g, ctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			if item.Quantity <= 0 {
				return fmt.Errorf("%w: quantity for burgerId %s must be a positive integer",
					model.ErrInvalidRequest, item.BurgerID)
			}

			burger, err := s.store.Burger(ctx, item.BurgerID)
			if err != nil {
				return fmt.Errorf("burger %s: %w", item.BurgerID, err)
			}

			toppingsPrice, err := s.priceToppings(ctx, item.ExtraToppingIDs)
			if err != nil {
				return err
			}

			unit := burger.Price.Add(toppingsPrice)
			itemPrices[i] = unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range itemPrices {
		total = total.Add(p)
	}
	return total, nil
}

func (s *Service) priceToppings(ctx context.Context, toppingIDs []string) (decimal.Decimal, error) {
	if len(toppingIDs) == 0 {
		return decimal.Zero, nil
	}

	prices := make([]decimal.Decimal, len(toppingIDs))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range toppingIDs {
		g.Go(func() error {
			topping, err := s.store.Topping(ctx, id)
			if err != nil {
				return fmt.Errorf("topping %s: %w", id, err)
			}
			prices[i] = topping.Price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p)
	}
	return total, nil
}

func (s *Service) countActiveOrders(ctx context.Context, userID string) (int, error) {
	orders, err := s.store.ListOrders(ctx, userID)
	if err != nil {
		return 0, err
	}
	active := 0
	for _, o := range orders {
		if o.Status.IsActive() {
			active++
		}
	}
	return active, nil
}

// estimateCompletion draws a uniformly random whole-minute estimate. The base
// window is 3 to 5 minutes; every burger past the second widens both bounds
// by a minute. Advisory only; the kitchen worker does not enforce it.
func estimateCompletion(burgerCount int) time.Duration {
	minMinutes, maxMinutes := 3, 5
	if burgerCount > 2 {
		minMinutes += burgerCount - 2
		maxMinutes += burgerCount - 2
	}
	estimated := minMinutes + rand.IntN(maxMinutes-minMinutes+1)
	return time.Duration(estimated) * time.Minute
}
