// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// framework-level settings (ports, TLS, logging, CORS); everything
// specific to TaskFlow lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer-token auth
	JWTSecret string        // signing secret (must be strong in production)
	JWTTTL    time.Duration // token lifetime

	// WebSocket settings
	AllowedOrigin         string // Origin allowed to upgrade; blank means same-origin
	AllowAnonymousSockets bool   // dev only: admit sockets without a token

	// Global rate limiting, applied per client IP across all endpoints
	RateLimit  int           // requests per window per client IP
	RateWindow time.Duration // window length

	// Operation timeouts (zero keeps the defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
