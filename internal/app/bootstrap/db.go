// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/strataboard/internal/app/source/fixture"
	"github.com/dalemusser/strataboard/internal/app/source/mongosource"
	"github.com/dalemusser/strataboard/internal/app/system/indexes"
	"github.com/dalemusser/strataboard/internal/app/system/timeouts"
	"github.com/dalemusser/strataboard/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client in mongo mode. Other modes have no
// database and get empty Mongo fields.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{Engine: &Engine{}}
	if appCfg.SourceMode != SourceMongo {
		logger.Info("no database for source mode", zap.String("source_mode", appCfg.SourceMode))
		return deps, nil
	}

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return deps, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return deps, fmt.Errorf("ping mongo: %w", err)
	}

	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))
	return deps, nil
}

// EnsureSchema attaches validators and indexes, then seeds the fixture
// data set when asked to.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	if db == nil {
		return nil
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if !appCfg.SeedFixture {
		return nil
	}

	data, err := fixtureData(appCfg.FixtureFile)
	if err != nil {
		return err
	}
	if err := mongosource.Seed(ctx, db, data); err != nil {
		return fmt.Errorf("seed fixture: %w", err)
	}
	logger.Info("seeded fixture data set",
		zap.String("file", appCfg.FixtureFile),
		zap.Int("companies", len(data.Companies)),
		zap.Int("users", len(data.Users)))
	return nil
}

// fixtureData returns the data set at path, or the built-in demo when path
// is blank.
func fixtureData(path string) (fixture.Data, error) {
	if path == "" {
		return fixture.Demo(), nil
	}
	return fixture.ReadFile(path)
}
