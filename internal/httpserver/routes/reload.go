package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/murmur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/murmur/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/murmur/internal/httpserver/mw"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AdminCIDRS, d.TrustProxy, d.Logger)).Post("/reload", handlers.Reload(d))
}
