package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/contoso/burger-api/internal/domain/model"
)

func (s *Storage) Burgers(ctx context.Context) ([]model.Burger, error) {
	query := `SELECT id, name, description, price, image FROM burgers ORDER BY id`

	rows, err := s.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list burgers: %w: %w", model.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var burgers []model.Burger
	for rows.Next() {
		b, err := scanBurger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan burger: %w", err)
		}
		burgers = append(burgers, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate burgers: %w", err)
	}
	return burgers, nil
}

func (s *Storage) Burger(ctx context.Context, id string) (*model.Burger, error) {
	query := `SELECT id, name, description, price, image FROM burgers WHERE id = $1`

	b, err := scanBurger(s.conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("burger %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get burger: %w: %w", model.ErrStoreUnavailable, err)
	}
	return b, nil
}

func (s *Storage) Toppings(ctx context.Context) ([]model.Topping, error) {
	return s.toppings(ctx, `SELECT id, name, category, price FROM toppings ORDER BY id`)
}

func (s *Storage) ToppingsByCategory(ctx context.Context, category model.ToppingCategory) ([]model.Topping, error) {
	return s.toppings(ctx, `SELECT id, name, category, price FROM toppings WHERE category = $1 ORDER BY id`, category)
}

func (s *Storage) Topping(ctx context.Context, id string) (*model.Topping, error) {
	query := `SELECT id, name, category, price FROM toppings WHERE id = $1`

	t, err := scanTopping(s.conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("topping %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get topping: %w: %w", model.ErrStoreUnavailable, err)
	}
	return t, nil
}

func (s *Storage) toppings(ctx context.Context, query string, args ...any) ([]model.Topping, error) {
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list toppings: %w: %w", model.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var toppings []model.Topping
	for rows.Next() {
		t, err := scanTopping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topping: %w", err)
		}
		toppings = append(toppings, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate toppings: %w", err)
	}
	return toppings, nil
}

func scanBurger(row pgx.Row) (*model.Burger, error) {
	var (
		b     model.Burger
		price string
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &price, &b.ImageURL); err != nil {
		return nil, err
	}
	var err error
	if b.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	return &b, nil
}

func scanTopping(row pgx.Row) (*model.Topping, error) {
	var (
		t     model.Topping
		price string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Category, &price); err != nil {
		return nil, err
	}
	var err error
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	return &t, nil
}
