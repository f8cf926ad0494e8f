// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StrataBoard.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: source_mode, mongo_uri, session_name, etc.
//   - Environment variables: STRATABOARD_SOURCE_MODE, STRATABOARD_MONGO_URI, etc.
//   - Command-line flags: --source_mode, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "source_mode", Default: SourceFixture, Desc: "Data source: 'mongo', 'lms' or 'fixture'"},
	{Name: "fixture_file", Default: "", Desc: "JSON data set for fixture mode or seeding (blank uses the built-in demo)"},
	{Name: "seed_fixture", Default: false, Desc: "In mongo mode, upsert the fixture data set at startup"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "strata_board", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// LMS API
	{Name: "lms_base_url", Default: "", Desc: "LMS API base URL"},
	{Name: "lms_token_url", Default: "", Desc: "OAuth2 token endpoint for service credentials"},
	{Name: "lms_client_id", Default: "", Desc: "OAuth2 client ID (blank forwards user tokens)"},
	{Name: "lms_client_secret", Default: "", Desc: "OAuth2 client secret"},
	{Name: "lms_scopes", Default: "", Desc: "Comma-separated OAuth2 scopes"},

	// Fetch batch tuning
	{Name: "defaults_file", Default: "", Desc: "YAML file of canned analytics payloads"},
	{Name: "fetch_concurrency", Default: 0, Desc: "Max source calls in flight per phase (0 = unbounded)"},
	{Name: "source_timeout", Default: "8s", Desc: "Timeout for each top-level source call"},
	{Name: "lookup_timeout", Default: "3s", Desc: "Timeout for each per-school or per-trainer lookup"},
	{Name: "refresh_timeout", Default: "30s", Desc: "Upper bound for one snapshot build"},

	// Background refresh
	{Name: "refresh_interval", Default: "5m", Desc: "How often loaded scopes are refreshed (0 disables)"},
	{Name: "warm_token", Default: "", Desc: "Token used to load the default scope at startup"},
	{Name: "default_company", Default: "", Desc: "Company scope warmed at startup (blank is platform-wide)"},

	// Sign-in
	{Name: "access_tokens", Default: "", Desc: "Comma-separated scope:token entries accepted at sign-in outside lms mode (scope is a company ID or *)"},

	// Sessions
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "strataboard-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie lifetime"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATABOARD_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STRATABOARD", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SourceMode:  strings.ToLower(strings.TrimSpace(appValues.String("source_mode"))),
		FixtureFile: appValues.String("fixture_file"),
		SeedFixture: appValues.Bool("seed_fixture"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		LMSBaseURL:      strings.TrimRight(appValues.String("lms_base_url"), "/"),
		LMSTokenURL:     appValues.String("lms_token_url"),
		LMSClientID:     appValues.String("lms_client_id"),
		LMSClientSecret: appValues.String("lms_client_secret"),
		LMSScopes:       splitList(appValues.String("lms_scopes")),

		DefaultsFile:     appValues.String("defaults_file"),
		FetchConcurrency: appValues.Int("fetch_concurrency"),
		SourceTimeout:    appValues.Duration("source_timeout", 8*time.Second),
		LookupTimeout:    appValues.Duration("lookup_timeout", 3*time.Second),
		RefreshTimeout:   appValues.Duration("refresh_timeout", 30*time.Second),

		RefreshInterval: appValues.Duration("refresh_interval", 5*time.Minute),
		WarmToken:       appValues.String("warm_token"),
		DefaultCompany:  strings.TrimSpace(appValues.String("default_company")),

		AccessTokens: splitList(appValues.String("access_tokens")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Each source mode checks only the settings it uses.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.SourceMode {
	case SourceMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if strings.TrimSpace(appCfg.MongoDatabase) == "" {
			return errors.New("mongo_database is required in mongo mode")
		}
	case SourceLMS:
		if err := validateHTTPURL(appCfg.LMSBaseURL); err != nil {
			return fmt.Errorf("invalid lms_base_url: %w", err)
		}
		if appCfg.LMSClientID != "" {
			if appCfg.LMSClientSecret == "" {
				return errors.New("lms_client_secret is required with lms_client_id")
			}
			if err := validateHTTPURL(appCfg.LMSTokenURL); err != nil {
				return fmt.Errorf("invalid lms_token_url: %w", err)
			}
		}
	case SourceFixture:
	default:
		return fmt.Errorf("unknown source_mode %q (want mongo, lms or fixture)", appCfg.SourceMode)
	}

	if appCfg.SeedFixture && appCfg.SourceMode != SourceMongo {
		logger.Warn("seed_fixture ignored outside mongo mode", zap.String("source_mode", appCfg.SourceMode))
	}
	if appCfg.FetchConcurrency < 0 {
		return errors.New("fetch_concurrency must be >= 0")
	}
	if appCfg.RefreshInterval < 0 {
		return errors.New("refresh_interval must be >= 0")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return errors.New("session_key must be set in production")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	return nil
}
