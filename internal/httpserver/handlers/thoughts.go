package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/murmur/internal/auth"
	"github.com/MrSnakeDoc/murmur/internal/domain"
	"github.com/MrSnakeDoc/murmur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/murmur/internal/logger"
)

type createThoughtRequest struct {
	Content  string  `json:"content"`
	IsPublic bool    `json:"is_public"`
	Mood     *string `json:"mood"`
}

// CreateThought handles POST /thoughts. Rate limiting runs upstream in the
// route middleware; here the order is identity resolution, validation,
// insert. Identity failures degrade to anonymous instead of rejecting.
func CreateThought(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, d.MaxBodyBytes)
		defer r.Body.Close()

		var req createThoughtRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "validation_error", "invalid request body: %v", err)
			return
		}

		authorID := resolveAuthor(r, d)

		thought, err := d.Thoughts.Create(r.Context(), domain.CreateThought{
			Content:  req.Content,
			IsPublic: req.IsPublic,
			Mood:     req.Mood,
			AuthorID: authorID,
		})
		if err != nil {
			if domain.IsValidationError(err) {
				httpError(w, http.StatusBadRequest, "validation_error", "%s", err.Error())
				return
			}
			d.Logger.Error("failed to persist thought", logger.Error(err))
			httpError(w, http.StatusInternalServerError, "storage_error", "%s", err.Error())
			return
		}

		d.Logger.Info("thought created",
			logger.String("id", thought.ID),
			logger.Bool("public", thought.IsPublic),
			logger.Bool("anonymous", authorID == ""))

		writeJSON(w, http.StatusCreated, thought)
	}
}

// ListThoughts handles GET /thoughts?mood=<value>&scope=<all|me>.
func ListThoughts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := r.URL.Query().Get("scope")
		mood := r.URL.Query().Get("mood")

		var authorID string
		if scope == domain.ScopeMe {
			authorID = resolveAuthor(r, d)
		}

		thoughts, err := d.Thoughts.List(r.Context(), domain.ListThoughts{
			Scope:    scope,
			Mood:     mood,
			AuthorID: authorID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrIdentityRequired) {
				httpError(w, http.StatusUnauthorized, "authorization_error", "scope=me requires a valid bearer token")
				return
			}
			d.Logger.Error("failed to list thoughts", logger.Error(err))
			httpError(w, http.StatusInternalServerError, "storage_error", "%s", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, thoughts)
	}
}

// resolveAuthor turns the request's bearer token into an author id.
// Missing, invalid, or unresolvable tokens all come back as "" (anonymous);
// resolver transport failures are logged but non-fatal.
func resolveAuthor(r *http.Request, d deps.Deps) string {
	token := auth.BearerToken(r)
	if token == "" {
		return ""
	}

	identity, err := d.Resolver.Resolve(r.Context(), token)
	if err != nil {
		d.Logger.Warn("identity resolution failed, treating request as anonymous",
			logger.Error(err))
		return ""
	}
	if identity == nil {
		return ""
	}
	return identity.ID
}
