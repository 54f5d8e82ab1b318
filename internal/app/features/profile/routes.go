// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the profile endpoints (typically under /profile).
// All routes require a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeProfile)
	r.Put("/", h.HandleUpdate)
	r.Put("/password", h.HandleChangePassword)
	r.Put("/preferences", h.HandleUpdatePreferences)
	return r
}
