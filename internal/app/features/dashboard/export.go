package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/strataboard/internal/app/export"
	"github.com/dalemusser/strataboard/internal/app/system/normalize"
	wafflequery "github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeExport handles GET /dashboard/export?format=json|csv|text&entity=...
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	snap := h.current(w, r)
	if snap == nil {
		return
	}
	format := normalize.OrDefault(normalize.QueryParam(wafflequery.Get(r, "format")), export.FormatJSON)
	entity := normalize.OrDefault(normalize.QueryParam(wafflequery.Get(r, "entity")), export.EntitySchools)

	rep, err := export.Render(snap, format, entity)
	if errors.Is(err, export.ErrUnknownFormat) || errors.Is(err, export.ErrUnknownEntity) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("export failed", zap.String("format", format), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.Body)
}
