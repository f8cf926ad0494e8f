// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles POST /logout. The cookie is expired even when the
// session fails to save, and API clients get 204 instead of a redirect.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	loginID := ""
	if u, ok := auth.CurrentUser(r); ok {
		loginID = u.LoginID
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: clear session", zap.Error(err), zap.String("login_id", loginID))
	} else {
		h.Log.Info("dashboard sign-out", zap.String("login_id", loginID))
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation to "/login".
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Header.Get("Accept") == "application/json" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
