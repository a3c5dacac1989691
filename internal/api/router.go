// Package api exposes the notification and resource services over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hospital-ops/internal/common/metrics"
)

// NewRouter builds the public API. Streams are mounted outside the request
// timeout.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsMiddleware)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/", h.CreateNotification)
			r.Post("/read-all", h.MarkAllAsRead)
			r.Post("/cleanup", h.ClearOldNotifications)
			r.Post("/{id}/read", h.MarkAsRead)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/emergency", h.CreateEmergencyAlert)
			r.Post("/resource", h.CreateResourceAlert)
			r.Post("/appointment", h.CreateAppointmentReminder)
			r.Post("/insight", h.CreateAIInsight)
		})

		r.Get("/settings", h.GetSettings)
		r.Patch("/settings", h.UpdateSettings)

		r.Get("/resources", h.ListResources)
		r.Post("/resources", h.AddOrUpdateResource)
	})

	r.Route("/stream", func(r chi.Router) {
		r.Get("/notifications", h.StreamNotifications)
		r.Get("/resources", h.StreamResources)
	})

	return r
}

// NewOpsRouter serves liveness, readiness and Prometheus metrics.
func NewOpsRouter(health *HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", health.Liveness)
	r.Get("/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
