// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/summary", h.ServeSummary)

	return r
}
