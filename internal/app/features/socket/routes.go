// internal/app/features/socket/routes.go
package socket

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the WebSocket endpoint (typically at "/ws"). Auth
// happens inside the upgrade handler, before the protocol switch, so a
// bad token costs a plain 401 rather than a dead socket.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleUpgrade)
	return r
}
