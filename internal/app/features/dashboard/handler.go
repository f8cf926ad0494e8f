// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/strataboard/internal/app/snapshot"
	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"github.com/dalemusser/strataboard/internal/app/system/timeouts"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler serves the dashboard JSON API from published snapshots.
type Handler struct {
	Refresher *snapshot.Refresher
	Gateway   source.Gateway
	Validator *validator.Validate
	Log       *zap.Logger
}

func NewHandler(refresher *snapshot.Refresher, gw source.Gateway, logger *zap.Logger) *Handler {
	return &Handler{
		Refresher: refresher,
		Gateway:   gw,
		Validator: validator.New(),
		Log:       logger,
	}
}

// emptyState is served when no snapshot has ever been built for the scope.
type emptyState struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

var notReady = emptyState{State: "empty", Message: "Dashboard data is not available yet."}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// sessionFor returns the explicit gateway session of the signed-in user.
func sessionFor(r *http.Request) source.Session {
	u, _ := auth.CurrentUser(r)
	return u.Source()
}

// current returns the scope's snapshot, loading it on first use. When no
// snapshot can be produced it writes the empty state and returns nil.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) *models.DashboardSnapshot {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Refresh())
	defer cancel()

	sess := sessionFor(r)
	snap, err := h.Refresher.Current(ctx, sess)
	if err != nil {
		h.Log.Warn("dashboard snapshot unavailable",
			zap.String("scope", sess.Scope()),
			zap.Error(err))
	}
	if snap == nil {
		writeJSON(w, http.StatusOK, notReady)
		return nil
	}
	return snap
}

// ServeSnapshot handles GET /dashboard/snapshot.
func (h *Handler) ServeSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.current(w, r)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type refreshResponse struct {
	ID             string                 `json:"id"`
	Generation     uint64                 `json:"generation"`
	BuiltAt        time.Time              `json:"built_at"`
	Stale          bool                   `json:"stale"`
	SourceFailures []models.SourceFailure `json:"source_failures"`
}

// refresh rebuilds the scope's snapshot. A failed batch still yields the
// previous snapshot, marked stale.
func (h *Handler) refresh(ctx context.Context, sess source.Session) (*models.DashboardSnapshot, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Refresh())
	defer cancel()

	snap, err := h.Refresher.Refresh(ctx, sess)
	return snap, err != nil
}

// ServeRefresh handles POST /dashboard/refresh.
func (h *Handler) ServeRefresh(w http.ResponseWriter, r *http.Request) {
	snap, stale := h.refresh(r.Context(), sessionFor(r))
	if snap == nil {
		writeJSON(w, http.StatusOK, notReady)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		ID:             snap.ID,
		Generation:     snap.Generation,
		BuiltAt:        snap.BuiltAt,
		Stale:          stale,
		SourceFailures: snap.SourceFailures,
	})
}
