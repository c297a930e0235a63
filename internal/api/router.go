package api

import (
	"net/http"
	"time"

	"github.com/dvloznov/sales-dashboard/internal/api/handlers"
	"github.com/dvloznov/sales-dashboard/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Datasets  *handlers.DatasetsHandler
	Dashboard *handlers.DashboardHandler
	Insights  *handlers.InsightsHandler
}

// NewRouter wires the dashboard API behind the standard middleware chain.
func NewRouter(h Handlers, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", h.Datasets.List)
		r.Post("/datasets", h.Datasets.Upload)
		r.Get("/datasets/{id}/options", h.Datasets.Options)

		r.Get("/dashboard", h.Dashboard.Dashboard)
		r.Get("/orders/search", h.Dashboard.Search)
		r.Get("/export", h.Dashboard.Export)

		r.Post("/insights", h.Insights.Generate)
		r.Get("/insights/status", h.Insights.Status)
	})

	return r
}
