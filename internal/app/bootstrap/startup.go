// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/strataboard/internal/app/fetch"
	"github.com/dalemusser/strataboard/internal/app/snapshot"
	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/source/fixture"
	"github.com/dalemusser/strataboard/internal/app/source/lmsclient"
	"github.com/dalemusser/strataboard/internal/app/source/mongosource"
	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"github.com/dalemusser/strataboard/internal/app/system/ratelimit"
	"github.com/dalemusser/strataboard/internal/app/system/timeouts"
	"github.com/dalemusser/strataboard/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the gateway for the configured source mode, the fetch orchestrator and
// the snapshot refresher, warms the default scope and starts the refresh
// worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Engine == nil {
		return errors.New("startup: missing engine")
	}

	timeouts.Configure(timeouts.Config{
		Source:  appCfg.SourceTimeout,
		Lookup:  appCfg.LookupTimeout,
		Refresh: appCfg.RefreshTimeout,
	})
	t := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("source", t.Source),
		zap.Duration("lookup", t.Lookup),
		zap.Duration("refresh", t.Refresh))

	defaults := fetch.BuiltinDefaults()
	if appCfg.DefaultsFile != "" {
		d, err := fetch.LoadDefaults(appCfg.DefaultsFile)
		if err != nil {
			return err
		}
		defaults = d
	}

	gw, err := newGateway(appCfg, deps, logger)
	if err != nil {
		return err
	}

	tokens, err := signInTokens(appCfg, logger)
	if err != nil {
		return err
	}

	orch := fetch.New(gw, logger, fetch.Options{
		Concurrency: appCfg.FetchConcurrency,
		Defaults:    &defaults,
	})
	refresher := snapshot.NewRefresher(orch, snapshot.NewRegistry(), logger)

	e := deps.Engine
	e.Gateway = gw
	e.Refresher = refresher
	e.Limiter = ratelimit.NewSignInLimiter()
	e.Tokens = tokens

	if appCfg.WarmToken != "" {
		warm := source.Session{Token: appCfg.WarmToken, CompanyID: appCfg.DefaultCompany}
		wctx, cancel := context.WithTimeout(ctx, timeouts.Refresh())
		if _, err := refresher.Refresh(wctx, warm); err != nil {
			logger.Warn("warm-up refresh failed", zap.String("scope", warm.Scope()), zap.Error(err))
		}
		cancel()
	}

	if appCfg.RefreshInterval > 0 {
		e.Worker = workers.NewSnapshotRefresh(refresher, logger, appCfg.RefreshInterval, timeouts.Refresh())
		e.Worker.Start()
	}
	return nil
}

// signInTokens returns the accepted sign-in tokens for sources that cannot
// check a token themselves. The LMS checks its own tokens, so it gets nil.
func signInTokens(appCfg AppConfig, logger *zap.Logger) (*auth.TokenSet, error) {
	if appCfg.SourceMode == SourceLMS {
		if len(appCfg.AccessTokens) > 0 {
			logger.Warn("access_tokens ignored in lms mode")
		}
		return nil, nil
	}
	tokens, err := auth.ParseTokenSet(appCfg.AccessTokens)
	if err != nil {
		return nil, fmt.Errorf("access_tokens: %w", err)
	}
	if tokens.Len() == 0 {
		logger.Warn("no access_tokens configured; sign-in is disabled", zap.String("source_mode", appCfg.SourceMode))
	}
	return tokens, nil
}

// newGateway returns the gateway for the configured source mode.
func newGateway(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (source.Gateway, error) {
	switch appCfg.SourceMode {
	case SourceMongo:
		if deps.MongoDatabase == nil {
			return nil, errors.New("mongo mode without a database")
		}
		return mongosource.New(deps.MongoDatabase), nil

	case SourceLMS:
		opts := []lmsclient.Option{
			lmsclient.WithLogger(logger),
			lmsclient.WithTimeout(timeouts.Source()),
		}
		if appCfg.LMSClientID != "" {
			opts = append(opts, lmsclient.WithClientCredentials(
				appCfg.LMSClientID, appCfg.LMSClientSecret, appCfg.LMSTokenURL, appCfg.LMSScopes...))
		}
		logger.Info("using LMS gateway",
			zap.String("base_url", appCfg.LMSBaseURL),
			zap.Bool("service_credentials", appCfg.LMSClientID != ""))
		return lmsclient.New(appCfg.LMSBaseURL, opts...), nil

	case SourceFixture:
		data, err := fixtureData(appCfg.FixtureFile)
		if err != nil {
			return nil, err
		}
		logger.Info("using fixture gateway", zap.String("file", appCfg.FixtureFile))
		return fixture.New(data), nil
	}
	return nil, fmt.Errorf("unknown source_mode %q", appCfg.SourceMode)
}
