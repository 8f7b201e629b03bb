// Package worker drives the order state machine. A single goroutine runs a
// reconciliation pass at a fixed interval, advancing every non-terminal
// order through pending -> in-preparation -> ready -> completed. Transitions
// are randomized below a deterministic ceiling so the kitchen looks busy
// without per-order timers: an order is guaranteed to start after 3 minutes
// pending, be ready 3 minutes past its estimate and be picked up 2 minutes
// after it is ready, and may do any of those earlier on a fair coin flip.
package worker

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/contoso/burger-api/internal/domain/model"
	"github.com/contoso/burger-api/internal/metrics"
	"github.com/contoso/burger-api/internal/storage"
)

const defaultInterval = 40 * time.Second

type Config struct {
	Interval time.Duration
	// Coin decides the probabilistic transitions; defaults to a fair flip.
	// Tests inject a fixed outcome.
	Coin func() bool
}

type Kitchen struct {
	logger   *slog.Logger
	store    storage.OrderStore
	metrics  *metrics.Metrics
	interval time.Duration
	coin     func() bool
}

// Summary is what one pass computed: how deep each status queue was and how
// many orders moved along each edge.
type Summary struct {
	QueueDepth  map[model.OrderStatus]int
	Transitions map[[2]model.OrderStatus]int
	Failures    int
}

func NewKitchen(log *slog.Logger, store storage.OrderStore, m *metrics.Metrics, cfg Config) *Kitchen {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	coin := cfg.Coin
	if coin == nil {
		coin = func() bool { return rand.IntN(2) == 0 }
	}
	return &Kitchen{
		logger:   log,
		store:    store,
		metrics:  m,
		interval: interval,
		coin:     coin,
	}
}

// Run executes one eager pass, then one per tick until ctx is cancelled.
// Passes are serialized by construction; a pass that somehow outlived the
// interval would simply delay the next tick.
func (k *Kitchen) Run(ctx context.Context) error {
	k.logger.Info("kitchen worker started", slog.Duration("interval", k.interval))

	k.RunPass(ctx)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			k.logger.Info("kitchen worker stopping")
			return nil
		case <-ticker.C:
			k.RunPass(ctx)
		}
	}
}

// RunPass is one reconciliation pass. Each eligible order advances at most
// one state; per-order update failures are logged and skipped so one bad
// write never stalls the rest of the queue.
func (k *Kitchen) RunPass(ctx context.Context) Summary {
	summary := Summary{
		QueueDepth:  make(map[model.OrderStatus]int),
		Transitions: make(map[[2]model.OrderStatus]int),
	}

	orders, err := k.store.ListOrders(ctx, "")
	if err != nil {
		k.logger.Error("load orders for pass", slog.Any("error", err))
		summary.Failures++
		return summary
	}

	now := time.Now().UTC()
	for _, o := range orders {
		summary.QueueDepth[o.Status]++
		if o.Status.IsTerminal() {
			continue
		}

		next, upd, ok := k.nextTransition(&o, now)
		if !ok {
			continue
		}

		if err := k.apply(ctx, o.ID, o.Status, next, upd); err != nil {
			k.logger.Error("advance order",
				slog.String("id", o.ID),
				slog.String("from", string(o.Status)),
				slog.String("to", string(next)),
				slog.Any("error", err))
			k.metrics.UpdateFailures.Inc()
			summary.Failures++
			continue
		}
		summary.Transitions[[2]model.OrderStatus{o.Status, next}]++
	}

	k.publish(summary)
	return summary
}

// nextTransition decides whether the order advances this pass. Elapsed times
// are fractional minutes; the coin only matters below each deterministic
// ceiling.
func (k *Kitchen) nextTransition(o *model.Order, now time.Time) (model.OrderStatus, model.OrderUpdate, bool) {
	switch o.Status {
	case model.OrderPending:
		m := now.Sub(o.CreatedAt).Minutes()
		if m > 3 || (m >= 1 && k.coin()) {
			status := model.OrderInPreparation
			return status, model.OrderUpdate{Status: &status}, true
		}

	case model.OrderInPreparation:
		// Negative while the estimate has not elapsed yet.
		d := now.Sub(o.EstimatedCompletionAt).Minutes()
		if d > 3 || (math.Abs(d) <= 3 && k.coin()) {
			status := model.OrderReady
			readyAt := now
			return status, model.OrderUpdate{Status: &status, ReadyAt: &readyAt}, true
		}

	case model.OrderReady:
		if o.ReadyAt == nil {
			break
		}
		r := now.Sub(*o.ReadyAt).Minutes()
		if r >= 1 && (r > 2 || k.coin()) {
			status := model.OrderCompleted
			completedAt := now
			return status, model.OrderUpdate{Status: &status, CompletedAt: &completedAt}, true
		}
	}
	return "", model.OrderUpdate{}, false
}

func (k *Kitchen) apply(ctx context.Context, id string, from, to model.OrderStatus, upd model.OrderUpdate) error {
	// The pending edge touches no timestamps, so the plain status update
	// suffices; the later edges stamp readyAt/completedAt exactly once.
	if upd.ReadyAt == nil && upd.CompletedAt == nil {
		_, err := k.store.UpdateOrderStatus(ctx, id, to, "")
		return err
	}
	_, err := k.store.UpdateOrder(ctx, id, upd)
	return err
}

func (k *Kitchen) publish(summary Summary) {
	for _, status := range []model.OrderStatus{
		model.OrderPending, model.OrderInPreparation, model.OrderReady,
		model.OrderCompleted, model.OrderCancelled,
	} {
		k.metrics.QueueDepth.WithLabelValues(string(status)).Set(float64(summary.QueueDepth[status]))
	}

	total := 0
	for edge, count := range summary.Transitions {
		k.metrics.Transitions.WithLabelValues(string(edge[0]), string(edge[1])).Add(float64(count))
		total += count
	}
	if total > 0 || summary.Failures > 0 {
		k.logger.Info("kitchen pass finished",
			slog.Int("transitioned", total),
			slog.Int("failures", summary.Failures),
			slog.Int("pending", summary.QueueDepth[model.OrderPending]),
			slog.Int("in_preparation", summary.QueueDepth[model.OrderInPreparation]),
			slog.Int("ready", summary.QueueDepth[model.OrderReady]))
	}
}
