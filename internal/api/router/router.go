// Package router assembles the HTTP routes for the clinic booking service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/totsandteens/clinic-bookings/internal/http/handlers"
)

// Config holds the handlers mounted by the router.
type Config struct {
	Booking *handlers.BookingHandler

	// Persistence enables the read endpoints; without a repository there is
	// nothing to read back.
	Persistence bool
}

// New builds the chi router with middleware and routes.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/appointments", func(r chi.Router) {
		r.Post("/", cfg.Booking.Create)
		if cfg.Persistence {
			r.Get("/", cfg.Booking.List)
			r.Get("/{id}", cfg.Booking.Get)
		}
	})

	// The original booking form posts here; keep the alias so deployed
	// frontends do not need a coordinated change.
	r.Post("/appointments", cfg.Booking.Create)

	return r
}
