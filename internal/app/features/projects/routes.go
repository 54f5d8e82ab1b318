// internal/app/features/projects/routes.go
package projects

import (
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all Project routes under the base path
// (typically "/projects" from bootstrap). Everything requires a
// signed-in user; per-project visibility and capabilities are checked
// in the handlers via projectpolicy.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleEdit)
	r.Delete("/{id}", h.HandleDelete)
	r.Patch("/{id}/archive", h.HandleArchive)

	// Membership management
	r.Get("/{id}/members", h.ServeMembers)
	r.Put("/{id}/members/{userID}", h.HandleChangeRole)
	r.Delete("/{id}/members/{userID}", h.HandleRemoveMember)
	r.Post("/{id}/transfer-ownership", h.HandleTransferOwnership)

	// Invite management (acceptance lives in the invites feature)
	r.Post("/{id}/invites", h.HandleCreateInvite)
	r.Get("/{id}/invites", h.ServeInvites)
	r.Delete("/{id}/invites/{code}", h.HandleDeactivateInvite)

	return r
}
