package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"threadqa/internal/handlers"
	"threadqa/internal/rag"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine rag.Engine
	Health *handlers.HealthHandler
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Engine)

	// POST /api and POST /api/ both reach "/" inside the mounted router.
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/", askHandler)
		if deps.Health != nil {
			r.Method(http.MethodGet, "/health", deps.Health)
		}
	})

	return r
}
