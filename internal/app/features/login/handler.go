// internal/app/features/login/handler.go
package login

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"github.com/dalemusser/strataboard/internal/app/system/normalize"
	"github.com/dalemusser/strataboard/internal/app/system/ratelimit"
	"github.com/dalemusser/strataboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxLoginBody caps the size of a sign-in request.
const maxLoginBody = 16 << 10

// Handler signs dashboard users in with an upstream token. When Tokens is
// set the token must be one of them; otherwise the gateway is trusted to
// reject it. Either way the requested scope is checked against the gateway
// before a session is issued.
type Handler struct {
	SessionMgr *auth.SessionManager
	Gateway    source.Gateway
	Tokens     *auth.TokenSet
	Limiter    *ratelimit.SignInLimiter
	Validator  *validator.Validate
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, gw source.Gateway, tokens *auth.TokenSet, limiter *ratelimit.SignInLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		Gateway:    gw,
		Tokens:     tokens,
		Limiter:    limiter,
		Validator:  validator.New(),
		Log:        logger,
	}
}

// signInRequest is accepted as JSON or as a form post.
type signInRequest struct {
	LoginID   string `json:"login_id" validate:"required,max=254"`
	Name      string `json:"name" validate:"max=200"`
	Token     string `json:"token" validate:"required,max=4096"`
	CompanyID string `json:"company_id" validate:"max=64"`
	ReadOnly  bool   `json:"read_only"`
	Return    string `json:"return"`
}

type signInResponse struct {
	SignedIn bool   `json:"signed_in"`
	LoginID  string `json:"login_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	Scope    string `json:"scope,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

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

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

// roleFor derives the dashboard role from the requested scope. Platform
// tokens administer every school, company tokens manage their own, and
// read-only sign-ins can view but not write.
func roleFor(req signInRequest) string {
	switch {
	case req.ReadOnly:
		return "viewer"
	case req.CompanyID == "":
		return "admin"
	default:
		return "manager"
	}
}

func (h *Handler) decode(r *http.Request) (signInRequest, error) {
	var req signInRequest
	if isJSON(r) {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, err
		}
	} else {
		r.Body = io.NopCloser(io.LimitReader(r.Body, maxLoginBody))
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req = signInRequest{
			LoginID:   r.PostFormValue("login_id"),
			Name:      r.PostFormValue("name"),
			Token:     r.PostFormValue("token"),
			CompanyID: r.PostFormValue("company_id"),
			ReadOnly:  r.PostFormValue("read_only") == "true",
			Return:    r.PostFormValue("return"),
		}
	}
	req.LoginID = strings.TrimSpace(req.LoginID)
	req.Name = normalize.Name(req.Name)
	req.Token = strings.TrimSpace(req.Token)
	req.CompanyID = normalize.QueryParam(req.CompanyID)
	return req, nil
}

// ServeLogin handles GET /login and reports who is signed in, if anyone.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		writeJSON(w, http.StatusOK, signInResponse{})
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{
		SignedIn: true,
		LoginID:  u.LoginID,
		Name:     u.Name,
		Role:     u.Role,
		Scope:    u.Source().Scope(),
	})
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sign-in request")
		return
	}

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, req.LoginID); !ok {
			h.Log.Warn("sign-in rate limited",
				zap.String("login_id", req.LoginID),
				zap.String("ip", ratelimit.ClientIP(r)))
			writeError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	if err := h.Validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		msg := "invalid sign-in request"
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg = strings.ToLower(verrs[0].Field()) + ": " + verrs[0].Tag()
		}
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if h.Tokens != nil {
		bound, ok := h.Tokens.Lookup(req.Token)
		if !ok {
			h.Log.Info("sign-in token not recognized", zap.String("login_id", req.LoginID))
			writeError(w, http.StatusUnauthorized, "credentials were not accepted")
			return
		}
		if bound != "" {
			if req.CompanyID != "" && req.CompanyID != bound {
				writeError(w, http.StatusForbidden, "token is not valid for this school")
				return
			}
			req.CompanyID = bound
		}
	}

	sess := source.Session{Token: req.Token, CompanyID: req.CompanyID, UserID: req.LoginID}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "sign-in check")
	defer cancel()

	companies, err := h.Gateway.Companies(ctx, sess)
	if err != nil {
		h.Log.Info("sign-in token rejected", zap.String("login_id", req.LoginID), zap.Error(err))
		writeError(w, http.StatusUnauthorized, "credentials were not accepted")
		return
	}
	if req.CompanyID != "" && !hasCompany(companies, req.CompanyID) {
		writeError(w, http.StatusForbidden, "unknown school for this token")
		return
	}

	u := auth.SessionUser{
		ID:        req.LoginID,
		Name:      req.Name,
		LoginID:   req.LoginID,
		Role:      roleFor(req),
		Token:     req.Token,
		CompanyID: req.CompanyID,
	}
	if err := h.SessionMgr.SignIn(w, r, u); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("login_id", req.LoginID))
		writeError(w, http.StatusInternalServerError, "unable to create session")
		return
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(req.LoginID)
	}
	h.Log.Info("dashboard sign-in",
		zap.String("login_id", u.LoginID),
		zap.String("role", u.Role),
		zap.String("scope", sess.Scope()))

	dest := urlutil.SafeReturn(req.Return, "", "/dashboard/snapshot")
	if !isJSON(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{
		SignedIn: true,
		LoginID:  u.LoginID,
		Name:     u.Name,
		Role:     u.Role,
		Scope:    sess.Scope(),
		Redirect: dest,
	})
}

func hasCompany(companies []source.Company, id string) bool {
	for _, c := range companies {
		if c.ID == id {
			return true
		}
	}
	return false
}
