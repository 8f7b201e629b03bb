package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contoso/burger-api/internal/domain/model"
)

// List returns orders scoped to userID when set, narrowed by the filter.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]model.Order, error) {
	orders, err := s.store.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return FilterOrders(orders, filter), nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Order, error) {
	return s.store.GetOrder(ctx, id, "")
}

// Cancel removes the order owned by userID. A foreign or missing order
// reports model.ErrNotFound either way.
func (s *Service) Cancel(ctx context.Context, id, userID string) error {
	if _, err := s.store.GetOrder(ctx, id, userID); err != nil {
		return err
	}

	deleted, err := s.store.DeleteOrder(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if !deleted {
		return fmt.Errorf("order %q: %w", id, model.ErrNotFound)
	}

	s.logger.Info("order cancelled", slog.String("id", id))
	return nil
}
