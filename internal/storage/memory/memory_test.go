package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contoso/burger-api/internal/domain/model"
)

func newTestStore(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func seed(t *testing.T, store *Storage, id, userID string) *model.Order {
	t.Helper()
	created, err := store.CreateOrder(context.Background(), &model.Order{
		ID:                    id,
		UserID:                userID,
		CreatedAt:             time.Now().UTC(),
		Items:                 []model.OrderItem{{BurgerID: "burger-classic", Quantity: 1}},
		TotalPrice:            decimal.RequireFromString("8.50"),
		Status:                model.OrderPending,
		EstimatedCompletionAt: time.Now().UTC().Add(4 * time.Minute),
	})
	require.NoError(t, err)
	return created
}

func TestCatalogLoaded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	burgers, err := store.Burgers(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, burgers)

	b, err := store.Burger(ctx, "burger-classic")
	require.NoError(t, err)
	assert.True(t, b.Price.Equal(decimal.RequireFromString("8.50")))

	_, err = store.Burger(ctx, "burger-nope")
	assert.ErrorIs(t, err, model.ErrNotFound)

	cheese, err := store.ToppingsByCategory(ctx, model.CategoryCheese)
	require.NoError(t, err)
	for _, topping := range cheese {
		assert.Equal(t, model.CategoryCheese, topping.Category)
	}
}

func TestGetOrderScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed(t, store, "order-1", "alice")

	// Owner sees it; the userId never leaves the store.
	got, err := store.GetOrder(ctx, "order-1", "alice")
	require.NoError(t, err)
	assert.Empty(t, got.UserID)

	// Wrong owner and missing order are the same failure, shape and all.
	_, wrongOwnerErr := store.GetOrder(ctx, "order-1", "mallory")
	_, missingErr := store.GetOrder(ctx, "order-nope", "mallory")
	assert.ErrorIs(t, wrongOwnerErr, model.ErrNotFound)
	assert.ErrorIs(t, missingErr, model.ErrNotFound)
}

func TestListOrdersScopedAndStripped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed(t, store, "order-1", "alice")
	seed(t, store, "order-2", "bob")

	all, err := store.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, o := range all {
		assert.Empty(t, o.UserID)
	}

	mine, err := store.ListOrders(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "order-1", mine[0].ID)
}

func TestDeleteOrderScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed(t, store, "order-1", "alice")

	deleted, err := store.DeleteOrder(ctx, "order-1", "mallory")
	require.NoError(t, err)
	assert.False(t, deleted)

	// Still there for the owner.
	_, err = store.GetOrder(ctx, "order-1", "alice")
	require.NoError(t, err)

	deleted, err = store.DeleteOrder(ctx, "order-1", "alice")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.GetOrder(ctx, "order-1", "alice")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateOrderPartial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed(t, store, "order-1", "alice")

	ready := model.OrderReady
	readyAt := time.Now().UTC()
	updated, err := store.UpdateOrder(ctx, "order-1", model.OrderUpdate{Status: &ready, ReadyAt: &readyAt})
	require.NoError(t, err)
	assert.Equal(t, model.OrderReady, updated.Status)
	require.NotNil(t, updated.ReadyAt)
	assert.Nil(t, updated.CompletedAt)

	// Empty update leaves everything alone.
	same, err := store.UpdateOrder(ctx, "order-1", model.OrderUpdate{})
	require.NoError(t, err)
	assert.Equal(t, model.OrderReady, same.Status)

	_, err = store.UpdateOrder(ctx, "order-nope", model.OrderUpdate{Status: &ready})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateOrderStatusScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed(t, store, "order-1", "alice")

	_, err := store.UpdateOrderStatus(ctx, "order-1", model.OrderCancelled, "mallory")
	assert.ErrorIs(t, err, model.ErrNotFound)

	updated, err := store.UpdateOrderStatus(ctx, "order-1", model.OrderInPreparation, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.OrderInPreparation, updated.Status)
}

func TestUserRegistryFallback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Without a durable registry every user passes the existence check.
	exists, err := store.UserExists(ctx, "anyone")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.CreateUser(ctx, "u1", "Ada"))
	require.NoError(t, store.CreateUser(ctx, "u1", "Ada again"))
	count, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
