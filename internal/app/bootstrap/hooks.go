// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires the dashboard into WAFFLE's lifecycle. WAFFLE runs them in
// order: config, validation, database, schema, Startup (gateway, refresher
// and worker), handler, and Shutdown on exit.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "strataboard",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
