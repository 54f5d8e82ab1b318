// internal/app/features/invites/handler.go
package invites

import (
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves invite acceptance: code-based invites and public
// project links. Invite creation and revocation are project-scoped and
// live in the projects feature.
type Handler struct {
	DB  *mongo.Database
	Hub *realtime.Hub
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Hub: hub, Log: logger}
}
