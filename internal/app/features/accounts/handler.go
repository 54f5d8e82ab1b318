// internal/app/features/accounts/handler.go
package accounts

import (
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for registration and login.
type Handler struct {
	DB     *mongo.Database
	Tokens *auth.Manager
	Log    *zap.Logger
}

// NewHandler constructs an accounts handler bound to a DB, token manager,
// and logger.
func NewHandler(db *mongo.Database, tokens *auth.Manager, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Tokens: tokens, Log: logger}
}
