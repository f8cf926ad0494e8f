package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/system/htmlsanitize"
	"github.com/dalemusser/strataboard/internal/app/system/normalize"
	"github.com/dalemusser/strataboard/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxUpdateBody caps the size of a school update request.
const maxUpdateBody = 64 << 10

type updateResponse struct {
	Updated    bool   `json:"updated"`
	Generation uint64 `json:"generation,omitempty"`
	Stale      bool   `json:"stale,omitempty"`
}

// cleanUpdate strips markup and collapses whitespace in the text fields.
func cleanUpdate(u source.SchoolUpdate) source.SchoolUpdate {
	clean := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := normalize.Name(htmlsanitize.PlainText(*p))
		return &v
	}
	u.Name = clean(u.Name)
	u.City = clean(u.City)
	u.Country = clean(u.Country)
	u.Region = clean(u.Region)
	if u.Status != nil {
		v := normalize.Status(*u.Status)
		u.Status = &v
	}
	return u
}

// validationMessage renders validator errors as "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}

// ServeUpdateSchool handles PUT /dashboard/schools/{id}. On success the
// scope is refreshed so the response reflects the new generation.
func (h *Handler) ServeUpdateSchool(w http.ResponseWriter, r *http.Request) {
	id := normalize.QueryParam(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "school id is required")
		return
	}

	sess := sessionFor(r)
	if !source.InScope(sess, id) {
		h.Log.Warn("school update outside scope", zap.String("school_id", id), zap.String("scope", sess.Scope()))
		writeError(w, http.StatusForbidden, "school is outside your scope")
		return
	}

	var upd source.SchoolUpdate
	dec := json.NewDecoder(io.LimitReader(r.Body, maxUpdateBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	upd = cleanUpdate(upd)
	if upd.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if err := h.Validator.Struct(upd); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	found, err := h.Gateway.UpdateSchool(ctx, sess, id, upd)
	cancel()
	switch {
	case errors.Is(err, source.ErrOutOfScope):
		writeError(w, http.StatusForbidden, "school is outside your scope")
		return
	case errors.Is(err, source.ErrDuplicate):
		writeError(w, http.StatusConflict, "a school with this name already exists")
		return
	case err != nil:
		h.Log.Error("update school failed", zap.String("school_id", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, "school update failed")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "school not found")
		return
	}

	h.Log.Info("school updated", zap.String("school_id", id), zap.String("scope", sess.Scope()))
	resp := updateResponse{Updated: true}
	if snap, stale := h.refresh(r.Context(), sess); snap != nil {
		resp.Generation = snap.Generation
		resp.Stale = stale
	}
	writeJSON(w, http.StatusOK, resp)
}
