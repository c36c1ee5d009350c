package router

import (
	"net/http"

	"vendora/internal/handler"
	"vendora/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(apiKey, logger))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Create)
			r.Get("/{id}", orderHandler.GetByID)
			r.Put("/{id}/cancel", orderHandler.Cancel)
			r.Put("/{id}/deliver", orderHandler.Deliver)
			r.Put("/{id}/partially-delivered/{vendorId}", orderHandler.PartiallyDeliver)
			r.Get("/customer/{customerId}", orderHandler.ListByCustomer)
			r.Get("/vendor/{vendorId}", orderHandler.ListByVendor)
			r.Get("/product/{productId}/pending", orderHandler.PendingForProduct)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAll)
			r.Get("/{id}", productHandler.GetByID)
			r.Patch("/{id}", productHandler.Update)
			r.Put("/{id}/activate", productHandler.Activate)
			r.Put("/{id}/deactivate", productHandler.Deactivate)
			r.Delete("/{id}", productHandler.Delete)
		})
	})

	return r
}
