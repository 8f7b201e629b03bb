package http_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contoso/burger-api/internal/domain/model"
	httpserver "github.com/contoso/burger-api/internal/http"
	"github.com/contoso/burger-api/internal/metrics"
	orderservice "github.com/contoso/burger-api/internal/service/order"
	"github.com/contoso/burger-api/internal/storage/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := memory.NewStorage(logger)
	require.NoError(t, err)

	service := orderservice.NewService(logger, store, metrics.New(prometheus.NewRegistry()), orderservice.Limits{
		MaxActiveOrders:    5,
		MaxBurgersPerOrder: 50,
		RegistrationURL:    "https://example.test/login",
	})
	return httpserver.Router(logger, service, store)
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const createBody = `{"userId":"alice","items":[{"burgerId":"burger-classic","quantity":2,"extraToppingIds":["topping-cheddar"]}]}`

func TestCreateOrderEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/orders", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.OrderPending, created.Status)
	assert.Empty(t, created.UserID)
	assert.True(t, created.TotalPrice.Equal(decimal.NewFromInt(19)), "total %s", created.TotalPrice)
}

func TestCreateOrderValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"userId":`, http.StatusBadRequest},
		{"no items", `{"userId":"alice","items":[]}`, http.StatusBadRequest},
		{"unknown burger", `{"userId":"alice","items":[{"burgerId":"burger-nope","quantity":1}]}`, http.StatusBadRequest},
		{"zero quantity", `{"userId":"alice","items":[{"burgerId":"burger-classic","quantity":0}]}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/orders", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateOrderThrottled(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 5; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/orders", createBody)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/orders", createBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, rec.Body.String())
}

func TestOrderLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/orders", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, "/api/orders/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/orders/order-nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/orders?userId=alice&status=pending", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var listed []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	// Cancellation requires the owning user.
	rec = doJSON(t, router, http.MethodDelete, "/api/orders/"+created.ID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/orders/%s?userId=mallory", created.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/orders/%s?userId=alice", created.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/orders/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/burgers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var burgers []model.Burger
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &burgers))
	assert.NotEmpty(t, burgers)

	rec = doJSON(t, router, http.MethodGet, "/api/burgers/burger-nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/toppings?category=cheese", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var toppings []model.Topping
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toppings))
	for _, topping := range toppings {
		assert.Equal(t, model.CategoryCheese, topping.Category)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/toppings/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
