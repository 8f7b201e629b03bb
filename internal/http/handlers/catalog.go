package handlers

import (
	"errors"
	"net/http"

	"github.com/contoso/burger-api/internal/domain/model"
	"github.com/contoso/burger-api/internal/http/lib/api/response"
	"github.com/contoso/burger-api/internal/storage"
)

func ListBurgers(catalog storage.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		burgers, err := catalog.Burgers(r.Context())
		if err != nil {
			response.InternalError(w)
			return
		}
		if burgers == nil {
			burgers = []model.Burger{}
		}
		response.OK(w, burgers)
	}
}

func GetBurger(catalog storage.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		burger, err := catalog.Burger(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				response.NotFound(w, "burger not found")
				return
			}
			response.InternalError(w)
			return
		}
		response.OK(w, burger)
	}
}

func ListToppings(catalog storage.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			toppings []model.Topping
			err      error
		)

		if raw := r.URL.Query().Get("category"); raw != "" {
			category, ok := parseCategory(raw)
			if !ok {
				response.BadRequest(w, "unknown topping category")
				return
			}
			toppings, err = catalog.ToppingsByCategory(r.Context(), category)
		} else {
			toppings, err = catalog.Toppings(r.Context())
		}
		if err != nil {
			response.InternalError(w)
			return
		}
		if toppings == nil {
			toppings = []model.Topping{}
		}
		response.OK(w, toppings)
	}
}

func GetTopping(catalog storage.CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topping, err := catalog.Topping(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				response.NotFound(w, "topping not found")
				return
			}
			response.InternalError(w)
			return
		}
		response.OK(w, topping)
	}
}

func ListToppingCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, model.ToppingCategories())
	}
}

func parseCategory(raw string) (model.ToppingCategory, bool) {
	for _, c := range model.ToppingCategories() {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}
