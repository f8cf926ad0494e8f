// Package timeouts provides centralized timeout values for handler and
// upstream operations.
//
// These timeouts are used with context.WithTimeout around gateway calls and
// other I/O. Timeouts can be configured at startup using Configure(). If not
// configured, sensible defaults are used.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single reads or pass-through writes (UpdateSchool)
//   - Source: one top-level upstream call in a fetch batch
//   - Lookup: one per-entity lookup (count, logo, rating)
//   - Refresh: a whole snapshot build, both fetch phases included
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing    = 2 * time.Second
	DefaultShort   = 5 * time.Second
	DefaultSource  = 8 * time.Second
	DefaultLookup  = 3 * time.Second
	DefaultRefresh = 30 * time.Second
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping    = DefaultPing
	short   = DefaultShort
	source  = DefaultSource
	lookup  = DefaultLookup
	refresh = DefaultRefresh
)

func get(v *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *v
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(&ping) }

// Short returns the timeout for simple single operations.
func Short() time.Duration { return get(&short) }

// Source returns the timeout applied to each top-level source call.
func Source() time.Duration { return get(&source) }

// Lookup returns the timeout applied to each per-entity lookup.
func Lookup() time.Duration { return get(&lookup) }

// Refresh returns the upper bound for one snapshot build.
func Refresh() time.Duration { return get(&refresh) }

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping    time.Duration
	Short   time.Duration
	Source  time.Duration
	Lookup  time.Duration
	Refresh time.Duration
}

// Configure sets custom timeout values. Zero values in the config are ignored,
// keeping the current (or default) values. This should be called during
// application startup before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	set(&ping, cfg.Ping)
	set(&short, cfg.Short)
	set(&source, cfg.Source)
	set(&lookup, cfg.Lookup)
	set(&refresh, cfg.Refresh)
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	source = DefaultSource
	lookup = DefaultLookup
	refresh = DefaultRefresh
}

// Current returns the current timeout configuration as a Config struct.
// Useful for logging at startup.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:    ping,
		Short:   short,
		Source:  source,
		Lookup:  lookup,
		Refresh: refresh,
	}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context was canceled due to deadline exceeded.
//
// Example:
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Refresh(), h.Log, "dashboard refresh")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
