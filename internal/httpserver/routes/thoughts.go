package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/murmur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/murmur/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/murmur/internal/httpserver/mw"
)

func init() { Register(registerThoughts) }

func registerThoughts(r chi.Router, d deps.Deps) {
	r.With(mw.RateLimit(d.PostLimiter, d.TrustProxy)).Post("/thoughts", handlers.CreateThought(d))
	r.With(mw.RateLimit(d.ListLimiter, d.TrustProxy)).Get("/thoughts", handlers.ListThoughts(d))
}
