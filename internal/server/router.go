// Package server wires the handlers into the HTTP surface.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"opsboard/internal/handlers"
	"opsboard/internal/httpx"
	"opsboard/internal/services"
	"opsboard/internal/store"
)

// New constructs the root handler with all routes and middlewares applied.
func New(t *services.Tracker, st store.Store, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(recoverer(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight backing-medium check: a load that fails means the
		// store is unreachable, not that a cell was malformed.
		if _, err := st.Load(); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	sh := handlers.NewSalesHandler(t)
	ch := handlers.NewCollectionsHandler(t)
	ah := handlers.NewAssignmentsHandler(t)
	dh := handlers.NewDashboardHandler(t)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sales", sh.List)
		r.Post("/sales", sh.Create)
		r.Get("/collections", ch.List)
		r.Post("/collections", ch.Create)
		r.Get("/assignments", ah.List)
		r.Post("/assignments", ah.Create)
		r.Get("/dashboard", dh.Summary)
		r.Get("/tasks", dh.Tasks)
	})

	return r
}

func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Info("request")
		})
	}
}

func recoverer(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(logrus.Fields{"panic": rec, "path": r.URL.Path}).Error("handler panicked")
					httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
