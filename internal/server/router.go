package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsentry/docsentry/internal/api"
	"github.com/docsentry/docsentry/internal/api/handlers"
	"github.com/docsentry/docsentry/internal/api/middleware"
)

type RouterConfig struct {
	APIToken    string
	PostHandler *handlers.PostHandler
	KBHandler   *handlers.KBHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.APIToken))

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", cfg.PostHandler.Create)
			r.Get("/", cfg.PostHandler.List)
			r.Get("/{id}", cfg.PostHandler.Get)
			r.Put("/{id}", cfg.PostHandler.Update)
			r.Delete("/{id}", cfg.PostHandler.Delete)
			r.Post("/{id}/publish", cfg.PostHandler.Publish)
			r.Post("/{id}/unpublish", cfg.PostHandler.Unpublish)
		})

		r.Route("/kb", func(r chi.Router) {
			r.Put("/snapshot", cfg.KBHandler.ReplaceSnapshot)
			r.Get("/snapshot", cfg.KBHandler.GetSnapshot)
			r.Get("/stats", cfg.KBHandler.GetStats)
			r.Post("/search", cfg.KBHandler.Search)
			r.Post("/drift-runs", cfg.KBHandler.RecordDriftRun)
			r.Get("/drift-runs", cfg.KBHandler.ListDriftRuns)
		})
	})

	return r
}
