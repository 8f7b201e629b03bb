package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/contoso/burger-api/internal/domain/model"
	"github.com/contoso/burger-api/internal/http/lib/api/decode"
	"github.com/contoso/burger-api/internal/http/lib/api/response"
	"github.com/contoso/burger-api/internal/service/order"
)

// OrderService is what the order handlers need from the service layer.
type OrderService interface {
	Create(ctx context.Context, cmd *model.CreateOrderCommand) (*model.Order, error)
	List(ctx context.Context, userID string, filter order.ListFilter) ([]model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	Cancel(ctx context.Context, id, userID string) error
}

func CreateOrder(service OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd model.CreateOrderCommand

		if err := decode.JSON(r, &cmd); err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		created, err := service.Create(r.Context(), &cmd)
		if err != nil {
			writeCreateError(w, err)
			return
		}

		response.Created(w, created)
	}
}

// writeCreateError maps the admission taxonomy onto status codes. A missing
// burger or topping during creation is a caller mistake, so it reports as
// 400 rather than 404.
func writeCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, model.ErrTooManyActiveOrders):
		response.TooManyRequests(w, err.Error())
	case errors.Is(err, model.ErrInvalidRequest), errors.Is(err, model.ErrNotFound):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
