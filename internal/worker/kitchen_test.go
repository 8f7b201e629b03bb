package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contoso/burger-api/internal/domain/model"
	"github.com/contoso/burger-api/internal/metrics"
	"github.com/contoso/burger-api/internal/storage"
	"github.com/contoso/burger-api/internal/storage/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestKitchen(t *testing.T, store storage.OrderStore, coin func() bool) *Kitchen {
	t.Helper()
	return NewKitchen(discardLogger(), store, metrics.New(prometheus.NewRegistry()), Config{Coin: coin})
}

func newStore(t *testing.T) *memory.Storage {
	t.Helper()
	store, err := memory.NewStorage(discardLogger())
	require.NoError(t, err)
	return store
}

func seedOrder(t *testing.T, store storage.OrderStore, o model.Order) string {
	t.Helper()
	if o.ID == "" {
		o.ID = model.NewOrderID(time.Now())
	}
	if o.UserID == "" {
		o.UserID = "user-1"
	}
	if o.Items == nil {
		o.Items = []model.OrderItem{{BurgerID: "burger-classic", Quantity: 1}}
	}
	_, err := store.CreateOrder(context.Background(), &o)
	require.NoError(t, err)
	return o.ID
}

func alwaysHeads() bool { return true }
func alwaysTails() bool { return false }

func getStatus(t *testing.T, store storage.OrderStore, id string) model.Order {
	t.Helper()
	o, err := store.GetOrder(context.Background(), id, "")
	require.NoError(t, err)
	return *o
}

func TestPendingAdvancesAfterCeiling(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	// Past the 3 minute ceiling: must advance even when every flip fails.
	overdue := seedOrder(t, store, model.Order{
		Status:                model.OrderPending,
		CreatedAt:             now.Add(-4 * time.Minute),
		EstimatedCompletionAt: now.Add(4 * time.Minute),
	})
	// Too fresh for even the probabilistic branch.
	fresh := seedOrder(t, store, model.Order{
		Status:                model.OrderPending,
		CreatedAt:             now.Add(-30 * time.Second),
		EstimatedCompletionAt: now.Add(5 * time.Minute),
	})

	k := newTestKitchen(t, store, alwaysTails)
	summary := k.RunPass(context.Background())

	assert.Equal(t, model.OrderInPreparation, getStatus(t, store, overdue).Status)
	assert.Equal(t, model.OrderPending, getStatus(t, store, fresh).Status)
	assert.Equal(t, 1, summary.Transitions[[2]model.OrderStatus{model.OrderPending, model.OrderInPreparation}])
}

func TestPendingProbabilisticStart(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	id := seedOrder(t, store, model.Order{
		Status:                model.OrderPending,
		CreatedAt:             now.Add(-2 * time.Minute),
		EstimatedCompletionAt: now.Add(3 * time.Minute),
	})

	// Below the ceiling the coin decides.
	k := newTestKitchen(t, store, alwaysTails)
	k.RunPass(context.Background())
	assert.Equal(t, model.OrderPending, getStatus(t, store, id).Status)

	k = newTestKitchen(t, store, alwaysHeads)
	k.RunPass(context.Background())
	assert.Equal(t, model.OrderInPreparation, getStatus(t, store, id).Status)
}

func TestInPreparationBecomesReadyPastEstimate(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	id := seedOrder(t, store, model.Order{
		Status:                model.OrderInPreparation,
		CreatedAt:             now.Add(-10 * time.Minute),
		EstimatedCompletionAt: now.Add(-4 * time.Minute),
	})

	before := time.Now().UTC()
	k := newTestKitchen(t, store, alwaysTails)
	k.RunPass(context.Background())

	got := getStatus(t, store, id)
	assert.Equal(t, model.OrderReady, got.Status)
	require.NotNil(t, got.ReadyAt, "readyAt must be stamped on the ready transition")
	assert.False(t, got.ReadyAt.Before(before))
	assert.Nil(t, got.CompletedAt)
}

func TestInPreparationHoldsFarBeforeEstimate(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	// Estimate 10 minutes out: |d| > 3, so even heads cannot advance it.
	id := seedOrder(t, store, model.Order{
		Status:                model.OrderInPreparation,
		CreatedAt:             now.Add(-1 * time.Minute),
		EstimatedCompletionAt: now.Add(10 * time.Minute),
	})

	k := newTestKitchen(t, store, alwaysHeads)
	k.RunPass(context.Background())
	assert.Equal(t, model.OrderInPreparation, getStatus(t, store, id).Status)
}

func TestReadyCompletesPastCeiling(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	readyAt := now.Add(-3 * time.Minute)
	id := seedOrder(t, store, model.Order{
		Status:                model.OrderReady,
		CreatedAt:             now.Add(-20 * time.Minute),
		EstimatedCompletionAt: now.Add(-10 * time.Minute),
		ReadyAt:               &readyAt,
	})

	before := time.Now().UTC()
	k := newTestKitchen(t, store, alwaysTails)
	k.RunPass(context.Background())

	got := getStatus(t, store, id)
	assert.Equal(t, model.OrderCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.False(t, got.CompletedAt.Before(before))
}

func TestReadyHoldsInsideMinimumPickup(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	// Under a minute ready: not eligible regardless of the coin.
	readyAt := now.Add(-30 * time.Second)
	id := seedOrder(t, store, model.Order{
		Status:                model.OrderReady,
		CreatedAt:             now.Add(-10 * time.Minute),
		EstimatedCompletionAt: now.Add(-5 * time.Minute),
		ReadyAt:               &readyAt,
	})

	k := newTestKitchen(t, store, alwaysHeads)
	k.RunPass(context.Background())
	assert.Equal(t, model.OrderReady, getStatus(t, store, id).Status)
}

func TestSingleTransitionPerPass(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	// Old enough to clear every ceiling at once, but a pass may only move
	// it one edge.
	id := seedOrder(t, store, model.Order{
		Status:                model.OrderPending,
		CreatedAt:             now.Add(-30 * time.Minute),
		EstimatedCompletionAt: now.Add(-20 * time.Minute),
	})

	k := newTestKitchen(t, store, alwaysTails)

	k.RunPass(context.Background())
	assert.Equal(t, model.OrderInPreparation, getStatus(t, store, id).Status)

	k.RunPass(context.Background())
	assert.Equal(t, model.OrderReady, getStatus(t, store, id).Status)
}

func TestTerminalOrdersUntouched(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	completedAt := now.Add(-5 * time.Minute)
	completed := seedOrder(t, store, model.Order{
		Status:                model.OrderCompleted,
		CreatedAt:             now.Add(-30 * time.Minute),
		EstimatedCompletionAt: now.Add(-20 * time.Minute),
		CompletedAt:           &completedAt,
	})
	cancelled := seedOrder(t, store, model.Order{
		Status:                model.OrderCancelled,
		CreatedAt:             now.Add(-30 * time.Minute),
		EstimatedCompletionAt: now.Add(-20 * time.Minute),
	})

	k := newTestKitchen(t, store, alwaysHeads)
	summary := k.RunPass(context.Background())

	assert.Equal(t, model.OrderCompleted, getStatus(t, store, completed).Status)
	assert.Equal(t, model.OrderCancelled, getStatus(t, store, cancelled).Status)
	assert.Empty(t, summary.Transitions)
	assert.Equal(t, 1, summary.QueueDepth[model.OrderCompleted])
	assert.Equal(t, 1, summary.QueueDepth[model.OrderCancelled])
}

// failingStore fails status updates for one order id.
type failingStore struct {
	storage.OrderStore
	failID string
}

func (s *failingStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus, userID string) (*model.Order, error) {
	if id == s.failID {
		return nil, errors.New("connection reset")
	}
	return s.OrderStore.UpdateOrderStatus(ctx, id, status, userID)
}

func TestPassToleratesPerOrderFailures(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	bad := seedOrder(t, store, model.Order{
		Status:                model.OrderPending,
		CreatedAt:             now.Add(-5 * time.Minute),
		EstimatedCompletionAt: now.Add(-1 * time.Minute),
	})
	good := seedOrder(t, store, model.Order{
		Status:                model.OrderPending,
		CreatedAt:             now.Add(-5 * time.Minute),
		EstimatedCompletionAt: now.Add(-1 * time.Minute),
	})

	k := newTestKitchen(t, &failingStore{OrderStore: store, failID: bad}, alwaysTails)
	summary := k.RunPass(context.Background())

	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, model.OrderPending, getStatus(t, store, bad).Status)
	assert.Equal(t, model.OrderInPreparation, getStatus(t, store, good).Status)
}
