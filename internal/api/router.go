// Package api serves a Store over HTTP for the remote backend.
package api

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"taskpro/internal/service"
)

// Store is what the server needs from the database layer.
type Store interface {
	service.Service
	Refresh(ctx context.Context, refreshToken string) (service.Identity, error)
	Ping(ctx context.Context) error
}

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(store Store, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	authH := &AuthHandler{store: store, logger: logger}
	taskH := &TaskHandler{store: store, logger: logger}
	profileH := &ProfileHandler{store: store}

	r.Get("/health", (&HealthHandler{store: store}).Health)
	r.Post("/auth/signup", authH.SignUp)
	r.Post("/auth/token", authH.Token)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(store))

		r.Post("/auth/logout", authH.Logout)
		r.Get("/auth/user", authH.User)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskH.List)
			r.Post("/", taskH.Create)
			r.Patch("/{id}", taskH.Update)
			r.Delete("/{id}", taskH.Delete)
		})

		r.Get("/profiles/{id}", profileH.Get)
	})

	return r
}
