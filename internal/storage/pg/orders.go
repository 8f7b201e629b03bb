package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/contoso/burger-api/internal/domain/model"
)

const orderColumns = `id, user_id, items, status, total, nickname, created_at, estimated_completion_at, ready_at, completed_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o        model.Order
		itemsRaw []byte
		total    string
		userID   string
	)
	err := row.Scan(&o.ID, &userID, &itemsRaw, &o.Status, &total, &o.Nickname,
		&o.CreatedAt, &o.EstimatedCompletionAt, &o.ReadyAt, &o.CompletedAt)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(itemsRaw, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if o.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	o.UserID = userID
	return &o, nil
}

func (s *Storage) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w: %w", model.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o.Stripped())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (s *Storage) GetOrder(ctx context.Context, id, userID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(s.conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w: %w", model.ErrStoreUnavailable, err)
	}

	// A foreign order is reported exactly like a missing one.
	if userID != "" && o.UserID != userID {
		return nil, fmt.Errorf("order %q: %w", id, model.ErrNotFound)
	}

	stripped := o.Stripped()
	return &stripped, nil
}

func (s *Storage) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}

	query := `INSERT INTO orders
                  (id, user_id, items, status, total, nickname, created_at, estimated_completion_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.conn(ctx).Exec(ctx, query,
			order.ID, order.UserID, items, order.Status, order.TotalPrice.StringFixed(2),
			order.Nickname, order.CreatedAt, order.EstimatedCompletionAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return s.enqueueOrderEvent(ctx, model.EventOrderCreated, order)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w: %w", model.ErrStoreUnavailable, err)
	}

	stripped := order.Stripped()
	return &stripped, nil
}

func (s *Storage) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus, userID string) (*model.Order, error) {
	query := `UPDATE orders SET status = $2 WHERE id = $1`
	args := []any{id, status}
	if userID != "" {
		query += ` AND user_id = $3`
		args = append(args, userID)
	}
	query += ` RETURNING ` + orderColumns

	var updated *model.Order
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		o, err := scanOrder(s.conn(ctx).QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}
		if err = s.enqueueOrderEvent(ctx, model.EventOrderStatusChanged, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w: %w", model.ErrStoreUnavailable, err)
	}

	stripped := updated.Stripped()
	return &stripped, nil
}

func (s *Storage) UpdateOrder(ctx context.Context, id string, upd model.OrderUpdate) (*model.Order, error) {
	setClauses := []string{}
	args := []any{}
	idx := 1

	if upd.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, *upd.Status)
		idx++
	}
	if upd.ReadyAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("ready_at = $%d", idx))
		args = append(args, *upd.ReadyAt)
		idx++
	}
	if upd.CompletedAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("completed_at = $%d", idx))
		args = append(args, *upd.CompletedAt)
		idx++
	}
	if len(setClauses) == 0 {
		return s.GetOrder(ctx, id, "")
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), idx, orderColumns)

	var updated *model.Order
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		o, err := scanOrder(s.conn(ctx).QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}
		if upd.Status != nil {
			if err = s.enqueueOrderEvent(ctx, model.EventOrderStatusChanged, o); err != nil {
				return err
			}
		}
		updated = o
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update order: %w: %w", model.ErrStoreUnavailable, err)
	}

	stripped := updated.Stripped()
	return &stripped, nil
}

func (s *Storage) DeleteOrder(ctx context.Context, id, userID string) (bool, error) {
	query := `DELETE FROM orders WHERE id = $1`
	args := []any{id}
	if userID != "" {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}

	tag, err := s.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete order: %w: %w", model.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}
