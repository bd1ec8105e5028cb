// Package server exposes the lead console over REST, mirroring the
// original /api surface.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-console/internal/config"
	"github.com/sells-group/lead-console/internal/store"
)

// Handler carries the dependencies shared by all routes.
type Handler struct {
	store store.Store
	lang  language.Tag
}

// NewHandler builds the route handler set.
func NewHandler(st store.Store, lang language.Tag) *Handler {
	return &Handler{store: st, lang: lang}
}

// NewRouter creates the chi router with all routes configured.
func NewRouter(h *Handler, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Collection-Version"},
		AllowCredentials: true,
	}))
	if cfg.RateLimit > 0 {
		r.Use(throttle(rate.Limit(cfg.RateLimit), cfg.RateBurst))
	}

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", h.ListLeads)
			r.Post("/", h.CreateLead)
			r.Post("/import", h.ImportLeads)
			r.Get("/export", h.ExportLeads)
			r.Put("/{id}", h.UpdateLead)
			r.Delete("/{id}", h.DeleteLead)
			r.Post("/{id}/convert", h.ConvertLead)
		})
		r.Route("/opportunities", func(r chi.Router) {
			r.Get("/", h.ListOpportunities)
			r.Put("/{id}", h.UpdateOpportunity)
			r.Delete("/{id}", h.DeleteOpportunity)
		})
		r.Get("/kpis", h.KPIs)
	})

	return r
}

// throttle applies a shared token-bucket limit across all requests.
func throttle(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	if burst <= 0 {
		burst = int(limit)
	}
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
