package snapshot

import (
	"context"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"go.uber.org/zap"
)

// Loader builds one snapshot. fetch.Orchestrator implements it.
type Loader interface {
	LoadSnapshot(ctx context.Context, sess source.Session) (models.DashboardSnapshot, []source.SourceError, error)
}

// Refresher builds snapshots and publishes them into a Registry.
type Refresher struct {
	loader Loader
	reg    *Registry
	log    *zap.Logger
}

// NewRefresher creates a Refresher.
func NewRefresher(loader Loader, reg *Registry, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{loader: loader, reg: reg, log: logger}
}

// Registry returns the registry the refresher publishes into.
func (r *Refresher) Registry() *Registry { return r.reg }

// Refresh builds a new snapshot for the session's scope and publishes it.
//
// Concurrent refreshes of one scope need no coordination: each takes a
// generation when it starts, and a result older than the published one is
// dropped. The returned snapshot is whatever is current once this refresh
// settles.
//
// When the batch cannot start, the error is returned together with the
// previous snapshot, which is nil if the scope was never loaded.
func (r *Refresher) Refresh(ctx context.Context, sess source.Session) (*models.DashboardSnapshot, error) {
	scope := sess.Scope()
	h := r.reg.Holder(scope)
	gen := h.Next()
	start := time.Now()

	snap, errs, err := r.loader.LoadSnapshot(ctx, sess)
	if err != nil {
		r.log.Error("dashboard refresh failed",
			zap.String("scope", scope),
			zap.Uint64("generation", gen),
			zap.Error(err))
		prev, _ := h.Load()
		return prev, err
	}
	h.remember(sess)

	snap.Generation = gen
	if !h.Publish(&snap) {
		cur, _ := h.Load()
		r.log.Debug("superseded refresh discarded",
			zap.String("scope", scope),
			zap.Uint64("generation", gen),
			zap.Uint64("current", cur.Generation))
		return cur, nil
	}

	r.log.Info("dashboard snapshot published",
		zap.String("scope", scope),
		zap.String("snapshot_id", snap.ID),
		zap.Uint64("generation", gen),
		zap.Int("source_failures", len(errs)),
		zap.Duration("elapsed", time.Since(start)))
	return &snap, nil
}

// Current returns the published snapshot for the session's scope, loading
// it first if the scope has never been loaded.
func (r *Refresher) Current(ctx context.Context, sess source.Session) (*models.DashboardSnapshot, error) {
	if s, ok := r.reg.Current(sess.Scope()); ok {
		return s, nil
	}
	return r.Refresh(ctx, sess)
}
