// internal/app/features/dashboard/handler.go
package dashboard

import (
	"time"

	"github.com/dalemusser/taskflow/internal/app/system/ttlcache"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	cacheCapacity = 1000
	cacheTTL      = 30 * time.Second
)

// Handler serves the per-user dashboard summary. Summaries aggregate
// across every project the user belongs to and are cached briefly; a
// board change may take up to the TTL to show in the numbers.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	cache *ttlcache.Cache[Summary]
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:    db,
		Log:   logger,
		cache: ttlcache.New[Summary](cacheCapacity, cacheTTL),
	}
}
