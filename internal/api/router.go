package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/api/handlers"
	"github.com/spad0604/robot-delivery/internal/platform/metrics"
	"github.com/spad0604/robot-delivery/internal/ports"
	"github.com/spad0604/robot-delivery/internal/services"
)

// Deps are the components the HTTP surface is built on. OrderLog and
// MetricsHandler are optional.
type Deps struct {
	Store          ports.OrderStore
	Creator        *services.OrderCreator
	OrderLog       ports.OrderLog
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestID)
	r.Use(observe(d.Log, d.Metrics))

	orders := &handlers.OrderHandler{Store: d.Store, Creator: d.Creator, OrderLog: d.OrderLog, Log: d.Log}
	robot := &handlers.RobotHandler{Store: d.Store, Log: d.Log, Metrics: d.Metrics}

	r.Get("/health", handlers.Health)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orders.List)
		r.Post("/", orders.Create)
		r.Get("/history", orders.History)
		r.Get("/{orderID}", orders.Get)
	})

	r.Get("/robot", robot.Get)
	r.Put("/robot", robot.Put)

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, http.StatusNotFound, "not found")
	})

	return r
}
