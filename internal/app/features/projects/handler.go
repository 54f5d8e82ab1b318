// internal/app/features/projects/handler.go
package projects

import (
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Projects.
type Handler struct {
	DB       *mongo.Database
	Hub      *realtime.Hub
	Log      *zap.Logger
	sanitize *bluemonday.Policy
}

// NewHandler constructs a Projects handler bound to a DB, realtime hub,
// and logger.
func NewHandler(db *mongo.Database, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Hub:      hub,
		Log:      logger,
		sanitize: bluemonday.StrictPolicy(),
	}
}
