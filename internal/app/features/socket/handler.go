// internal/app/features/socket/handler.go
package socket

import (
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the WebSocket endpoint: upgrade, auth, and the read and
// write pumps for each connection. Room state lives in the hub.
type Handler struct {
	DB     *mongo.Database
	Hub    *realtime.Hub
	Tokens *auth.Manager
	Log    *zap.Logger

	// AllowedOrigin is matched against the Origin header on upgrade.
	// Empty means same-origin only.
	AllowedOrigin string

	// AllowAnonymous admits unauthenticated sockets. Refused outside dev
	// at config validation; anonymous connections get no personal room
	// and no membership-gated joins.
	AllowAnonymous bool
}

func NewHandler(db *mongo.Database, hub *realtime.Hub, tokens *auth.Manager, logger *zap.Logger, allowedOrigin string, allowAnonymous bool) *Handler {
	return &Handler{
		DB:             db,
		Hub:            hub,
		Tokens:         tokens,
		Log:            logger,
		AllowedOrigin:  allowedOrigin,
		AllowAnonymous: allowAnonymous,
	}
}
