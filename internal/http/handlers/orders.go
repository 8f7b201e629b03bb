package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/contoso/burger-api/internal/domain/model"
	"github.com/contoso/burger-api/internal/http/lib/api/response"
	"github.com/contoso/burger-api/internal/service/order"
)

func ListOrders(service OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter := order.ListFilter{Last: query.Get("last")}
		if raw := query.Get("status"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				filter.Statuses = append(filter.Statuses, strings.TrimSpace(s))
			}
		}

		orders, err := service.List(r.Context(), query.Get("userId"), filter)
		if err != nil {
			response.InternalError(w)
			return
		}
		if orders == nil {
			orders = []model.Order{}
		}

		response.OK(w, orders)
	}
}

func GetOrder(service OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		o, err := service.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				response.NotFound(w, "order not found")
				return
			}
			response.InternalError(w)
			return
		}

		response.OK(w, o)
	}
}

type cancelResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}

func CancelOrder(service OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		userID := r.URL.Query().Get("userId")
		if userID == "" {
			response.BadRequest(w, "userId is required as a query parameter")
			return
		}

		if err := service.Cancel(r.Context(), id, userID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				response.NotFound(w, "order not found")
				return
			}
			response.InternalError(w)
			return
		}

		response.OK(w, cancelResponse{Message: "order cancelled successfully", OrderID: id})
	}
}
