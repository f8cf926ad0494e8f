// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/strataboard/internal/app/snapshot"
	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"github.com/dalemusser/strataboard/internal/app/system/ratelimit"
	"github.com/dalemusser/strataboard/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. The Mongo
// fields are nil outside mongo mode.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Engine is filled in by Startup and shared with BuildHandler and
	// Shutdown.
	Engine *Engine
}

// Engine is the running dashboard: the gateway it reads from, the
// snapshot refresher, the background refresh worker and the sign-in
// limiter. Tokens is nil when the gateway authenticates sign-ins itself.
type Engine struct {
	Gateway   source.Gateway
	Refresher *snapshot.Refresher
	Worker    *workers.SnapshotRefresh
	Limiter   *ratelimit.SignInLimiter
	Tokens    *auth.TokenSet
}
