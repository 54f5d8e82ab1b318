// internal/app/features/tasks/handler.go
package tasks

import (
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Tasks: board items,
// their comments, checklists, and history.
type Handler struct {
	DB       *mongo.Database
	Hub      *realtime.Hub
	Log      *zap.Logger
	sanitize *bluemonday.Policy
}

func NewHandler(db *mongo.Database, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Hub:      hub,
		Log:      logger,
		sanitize: bluemonday.StrictPolicy(),
	}
}
