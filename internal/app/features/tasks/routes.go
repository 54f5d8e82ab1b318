// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all Task routes under the base path (typically "/tasks"
// from bootstrap). Creation and listing take the project from the body
// or query; everything else is addressed by task id.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Get("/mine", h.ServeMine)
	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleEdit)
	r.Patch("/{id}/status", h.HandleStatus)
	r.Put("/{id}/checklist", h.HandleChecklist)
	r.Delete("/{id}", h.HandleDelete)
	r.Get("/{id}/history", h.ServeHistory)

	// Comments
	r.Post("/{id}/comments", h.HandleAddComment)
	r.Put("/{id}/comments/{commentID}", h.HandleEditComment)
	r.Delete("/{id}/comments/{commentID}", h.HandleDeleteComment)
	r.Post("/{id}/comments/{commentID}/attachments", h.HandleAddAttachments)

	return r
}
