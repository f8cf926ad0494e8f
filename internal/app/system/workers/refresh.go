// internal/app/system/workers/refresh.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/strataboard/internal/app/snapshot"
	"go.uber.org/zap"
)

// SnapshotRefresh is a background worker that periodically rebuilds the
// snapshot of every scope that has been loaded at least once.
type SnapshotRefresh struct {
	refresher *snapshot.Refresher
	log       *zap.Logger
	interval  time.Duration
	timeout   time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewSnapshotRefresh creates a new refresh worker.
//
// Parameters:
//   - refresher: builds and publishes snapshots
//   - logger: zap logger for logging
//   - interval: how often to refresh (e.g., 5 minutes)
//   - timeout: upper bound for one scope's refresh
func NewSnapshotRefresh(refresher *snapshot.Refresher, logger *zap.Logger, interval, timeout time.Duration) *SnapshotRefresh {
	return &SnapshotRefresh{
		refresher: refresher,
		log:       logger,
		interval:  interval,
		timeout:   timeout,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background refresh loop.
func (w *SnapshotRefresh) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("snapshot refresh worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("timeout", w.timeout))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *SnapshotRefresh) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("snapshot refresh worker stopped")
}

func (w *SnapshotRefresh) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RefreshAll()
		}
	}
}

// RefreshAll refreshes every known scope once, one after another.
func (w *SnapshotRefresh) RefreshAll() {
	for _, sess := range w.refresher.Registry().Sessions() {
		select {
		case <-w.stopCh:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if _, err := w.refresher.Refresh(ctx, sess); err != nil {
			w.log.Warn("background refresh failed",
				zap.String("scope", sess.Scope()),
				zap.Error(err))
		}
		cancel()
	}
}
