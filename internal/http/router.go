package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/receipts"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Sessions       *session.Registry
	Menu           MenuService
	Receipts       receipts.Repository // nil disables order history
	Metrics        *metrics.ServerMetrics
	Log            *zap.Logger
	RequestTimeout time.Duration
}

const defaultRequestTimeout = 30 * time.Second

// NewRouter wires the storefront API.
func NewRouter(deps RouterDeps) chi.Router {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	var rec Recorder
	if deps.Metrics != nil {
		rec = deps.Metrics
	}

	menuHandler := NewMenuHandler(deps.Menu, deps.RequestTimeout)
	cartHandler := NewCartHandler(deps.Menu, rec, deps.RequestTimeout)
	customerHandler := NewCustomerHandler()
	ordersHandler := NewOrdersHandler(deps.Receipts, rec, deps.Log, deps.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(deps.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", menuHandler.GetMenu)
			r.Post("/refresh", menuHandler.Refresh)
			r.Post("/samples", menuHandler.SeedSamples)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(deps.Sessions))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Patch("/items/{pizza_id}/{size}", cartHandler.UpdateQuantity)
				r.Delete("/items/{pizza_id}/{size}", cartHandler.RemoveItem)
				r.Patch("/lines/{index}", cartHandler.UpdateQuantityAt)
			})

			r.Get("/customer", customerHandler.GetCustomer)
			r.Put("/customer", customerHandler.PutCustomer)

			r.Post("/orders", ordersHandler.PlaceOrder)
			r.Get("/orders", ordersHandler.ListOrders)
		})
	})

	return r
}
