// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/dalemusser/taskflow/internal/app/features/accounts"
	dashboardfeature "github.com/dalemusser/taskflow/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/taskflow/internal/app/features/health"
	invitesfeature "github.com/dalemusser/taskflow/internal/app/features/invites"
	profilefeature "github.com/dalemusser/taskflow/internal/app/features/profile"
	projectsfeature "github.com/dalemusser/taskflow/internal/app/features/projects"
	socketfeature "github.com/dalemusser/taskflow/internal/app/features/socket"
	tasksfeature "github.com/dalemusser/taskflow/internal/app/features/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"github.com/dalemusser/taskflow/internal/app/system/ratelimit"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. TaskFlow builds the token
// manager and realtime hub here, applies the bearer-auth middleware
// globally, and mounts one subrouter per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewManager(appCfg.JWTSecret, appCfg.JWTTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	hub := realtime.NewHub(logger)
	db := deps.MongoDatabase

	r := chi.NewRouter()

	// Blunt per-IP throttle across the whole surface, not per endpoint.
	limiter := ratelimit.New(appCfg.RateLimit, appCfg.RateWindow)
	r.Use(limiter.Middleware)

	// Global auth middleware: loads the verified token user into context.
	// Requests without a token pass through anonymously; RequireSignedIn
	// gates the protected subrouters.
	r.Use(tokens.LoadUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Registration and login
	accountsHandler := accountsfeature.NewHandler(db, tokens, logger)
	r.Mount("/auth", accountsfeature.Routes(accountsHandler))

	// Current user's profile
	profileHandler := profilefeature.NewHandler(db, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	// Projects, their members, and invite management
	projectsHandler := projectsfeature.NewHandler(db, hub, logger)
	r.Mount("/projects", projectsfeature.Routes(projectsHandler))

	// Invite acceptance and public project links
	invitesHandler := invitesfeature.NewHandler(db, hub, logger)
	r.Mount("/invites", invitesfeature.Routes(invitesHandler))
	r.Mount("/public-invites", invitesfeature.PublicRoutes(invitesHandler))

	// Board tasks, comments, and history
	tasksHandler := tasksfeature.NewHandler(db, hub, logger)
	r.Mount("/tasks", tasksfeature.Routes(tasksHandler))

	// Per-user dashboard summary
	dashboardHandler := dashboardfeature.NewHandler(db, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	// WebSocket endpoint for realtime updates
	socketHandler := socketfeature.NewHandler(db, hub, tokens, logger,
		appCfg.AllowedOrigin, appCfg.AllowAnonymousSockets)
	r.Mount("/ws", socketfeature.Routes(socketHandler))

	return r, nil
}
