// Package snapshot holds the current dashboard snapshot per company scope
// and replaces it atomically when a refresh completes.
//
// Readers never block and always see a complete snapshot: either the one
// before a refresh or the one after it. Published snapshots are shared and
// must be treated as read-only.
package snapshot

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/domain/models"
)

// Holder is the swap point for one scope.
type Holder struct {
	current atomic.Pointer[models.DashboardSnapshot]
	issued  atomic.Uint64
	session atomic.Pointer[source.Session]
}

// Load returns the published snapshot, or false if none exists yet.
func (h *Holder) Load() (*models.DashboardSnapshot, bool) {
	s := h.current.Load()
	return s, s != nil
}

// Next issues the generation number for a refresh that is starting.
func (h *Holder) Next() uint64 {
	return h.issued.Add(1)
}

// Publish installs s unless a snapshot of the same or a later generation is
// already installed. It reports whether s was installed. A refresh that
// finishes after a newer one is discarded, so the latest started refresh
// wins regardless of completion order.
func (h *Holder) Publish(s *models.DashboardSnapshot) bool {
	for {
		cur := h.current.Load()
		if cur != nil && cur.Generation >= s.Generation {
			return false
		}
		if h.current.CompareAndSwap(cur, s) {
			return true
		}
	}
}

func (h *Holder) remember(sess source.Session) {
	h.session.Store(&sess)
}

// Registry maps company scopes to their holders.
type Registry struct {
	holders sync.Map // scope -> *Holder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Holder returns the holder for scope, creating it on first use.
func (r *Registry) Holder(scope string) *Holder {
	if h, ok := r.holders.Load(scope); ok {
		return h.(*Holder)
	}
	h, _ := r.holders.LoadOrStore(scope, &Holder{})
	return h.(*Holder)
}

// Current returns the published snapshot for scope.
func (r *Registry) Current(scope string) (*models.DashboardSnapshot, bool) {
	h, ok := r.holders.Load(scope)
	if !ok {
		return nil, false
	}
	return h.(*Holder).Load()
}

// Sessions returns the most recent session seen for every scope, ordered
// by scope.
func (r *Registry) Sessions() []source.Session {
	var out []source.Session
	r.holders.Range(func(_, v any) bool {
		if s := v.(*Holder).session.Load(); s != nil {
			out = append(out, *s)
		}
		return true
	})
	slices.SortFunc(out, func(a, b source.Session) int {
		return strings.Compare(a.Scope(), b.Scope())
	})
	return out
}
