// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	dashboardfeature "github.com/dalemusser/strataboard/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/strataboard/internal/app/features/health"
	loginfeature "github.com/dalemusser/strataboard/internal/app/features/login"
	logoutfeature "github.com/dalemusser/strataboard/internal/app/features/logout"
	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: DB clients and the engine built by Startup
//   - logger: the fully configured zap.Logger for this app
//
// StrataBoard applies session middleware and mounts health, sign-in,
// sign-out and the dashboard API.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	e := deps.Engine
	if e == nil || e.Refresher == nil {
		return nil, errors.New("build handler: startup did not run")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, e.Refresher.Registry(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(sessionMgr, e.Gateway, e.Tokens, e.Limiter, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	r.Get("/forbidden", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	// Dashboard API
	dashboardHandler := dashboardfeature.NewHandler(e.Refresher, e.Gateway, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard/snapshot", http.StatusSeeOther)
	})

	return r, nil
}
