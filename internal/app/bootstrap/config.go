// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is the out-of-the-box signing secret. Usable only when
// the core environment is not "prod"; ValidateConfig refuses it there.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for TaskFlow.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: TASKFLOW_MONGO_URI, TASKFLOW_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "taskflow", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer-token auth
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "JWT signing secret (must be strong in production)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "JWT token lifetime (e.g., 24h, 30m)"},

	// WebSocket settings
	{Name: "allowed_origin", Default: "", Desc: "Origin allowed to open WebSocket connections (blank: same-origin)"},
	{Name: "allow_anonymous_sockets", Default: false, Desc: "Admit WebSocket connections without a token (dev only)"},

	// Global per-IP rate limiting
	{Name: "rate_limit", Default: 300, Desc: "Max requests per client IP per window"},
	{Name: "rate_window", Default: "1m", Desc: "Rate limit window (e.g., 1m, 30s)"},

	// Operation timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for writes and list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for aggregations and cascades"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TASKFLOW_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TASKFLOW", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),

		AllowedOrigin:         appValues.String("allowed_origin"),
		AllowAnonymousSockets: appValues.Bool("allow_anonymous_sockets"),

		RateLimit:  appValues.Int("rate_limit"),
		RateWindow: appValues.Duration("rate_window", time.Minute),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// TaskFlow validates the MongoDB URI format to catch configuration
// errors early and refuses dev-grade auth settings in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" {
		if appCfg.JWTSecret == devJWTSecret {
			return fmt.Errorf("jwt_secret must be set to a strong value in production")
		}
		if appCfg.AllowAnonymousSockets {
			return fmt.Errorf("allow_anonymous_sockets cannot be enabled in production")
		}
	}
	if len(appCfg.JWTSecret) < 16 {
		return fmt.Errorf("jwt_secret must be at least 16 characters")
	}
	if appCfg.RateLimit < 1 {
		return fmt.Errorf("rate_limit must be at least 1")
	}

	return nil
}
