package workers_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/strataboard/internal/app/snapshot"
	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/system/workers"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"go.uber.org/zap"
)

type countingLoader struct{ n atomic.Int32 }

func (l *countingLoader) LoadSnapshot(_ context.Context, sess source.Session) (models.DashboardSnapshot, []source.SourceError, error) {
	l.n.Add(1)
	return models.DashboardSnapshot{Scope: sess.Scope()}, nil, nil
}

func TestSnapshotRefresh_RefreshAll(t *testing.T) {
	loader := &countingLoader{}
	reg := snapshot.NewRegistry()
	r := snapshot.NewRefresher(loader, reg, zap.NewNop())

	// Nothing loaded yet: the worker has no scopes to refresh.
	w := workers.NewSnapshotRefresh(r, zap.NewNop(), time.Hour, time.Second)
	w.RefreshAll()
	if loader.n.Load() != 0 {
		t.Fatalf("loads = %d, want 0", loader.n.Load())
	}

	for _, co := range []string{"a", "b"} {
		if _, err := r.Refresh(context.Background(), source.Session{Token: "t", CompanyID: co}); err != nil {
			t.Fatal(err)
		}
	}
	w.RefreshAll()

	if got := loader.n.Load(); got != 4 {
		t.Errorf("loads = %d, want 4", got)
	}
	if cur, _ := reg.Current("b"); cur.Generation != 2 {
		t.Errorf("b generation = %d, want 2", cur.Generation)
	}
}

func TestSnapshotRefresh_StartStop(t *testing.T) {
	loader := &countingLoader{}
	r := snapshot.NewRefresher(loader, snapshot.NewRegistry(), zap.NewNop())
	if _, err := r.Refresh(context.Background(), source.Session{Token: "t"}); err != nil {
		t.Fatal(err)
	}

	w := workers.NewSnapshotRefresh(r, zap.NewNop(), 10*time.Millisecond, time.Second)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for loader.n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if loader.n.Load() < 3 {
		t.Errorf("loads = %d, want the ticker to refresh at least twice", loader.n.Load())
	}
}
