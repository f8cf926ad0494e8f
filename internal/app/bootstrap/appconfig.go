// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Source modes select the gateway the dashboard reads from.
const (
	SourceMongo   = "mongo"
	SourceLMS     = "lms"
	SourceFixture = "fixture"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries everything specific to the dashboard: where its data
// comes from, how each fetch batch is bounded, and how sessions are kept.
type AppConfig struct {
	// Data source
	SourceMode  string // "mongo", "lms" or "fixture"
	FixtureFile string // JSON data set for fixture mode (blank means the built-in demo)
	SeedFixture bool   // in mongo mode, upsert the fixture data set at startup

	// MongoDB connection configuration (mongo mode)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// LMS API (lms mode). Client credentials are optional; without them
	// each request forwards the signed-in user's token.
	LMSBaseURL      string
	LMSTokenURL     string
	LMSClientID     string
	LMSClientSecret string
	LMSScopes       []string

	// Fetch batch tuning
	DefaultsFile     string        // YAML file of canned analytics payloads
	FetchConcurrency int           // calls in flight per phase; 0 is unbounded
	SourceTimeout    time.Duration // per top-level source call
	LookupTimeout    time.Duration // per per-entity lookup
	RefreshTimeout   time.Duration // whole snapshot build

	// Background refresh
	RefreshInterval time.Duration // 0 disables the worker
	WarmToken       string        // token used to load DefaultCompany at startup
	DefaultCompany  string        // scope warmed at startup ("" is platform-wide)

	// Sign-in tokens for the fixture and mongo sources, as "scope:token"
	// entries where scope is a company ID or "*". The LMS checks its own.
	AccessTokens []string

	// Session management configuration
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration
}
