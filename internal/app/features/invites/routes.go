// internal/app/features/invites/routes.go
package invites

import (
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves code-based invites (typically mounted at "/invites").
// Both preview and accept require a signed-in user; the invite decides
// which project and role they land in.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/{code}", h.ServePreview)
	r.Post("/{code}/accept", h.HandleAccept)

	return r
}

// PublicRoutes serves public project links (typically mounted at
// "/public-invites"). Preview is open; joining requires sign-in.
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{code}", h.ServePublicPreview)
	r.With(auth.RequireSignedIn).Post("/{code}/accept", h.HandlePublicAccept)

	return r
}
