// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard API under whatever mount point the top-level
// router chooses (e.g., "/dashboard").
//
// Every endpoint requires a signed-in user; the user's session supplies the
// upstream token and company scope. Writes require an admin or manager.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/snapshot", h.ServeSnapshot)
		pr.Get("/schools", serveView(h, schoolsView))
		pr.Get("/trainers", serveView(h, trainersView))
		pr.Get("/trainees", serveView(h, traineesView))
		pr.Get("/courses", serveView(h, coursesView))
		pr.Get("/attendance", serveView(h, sessionsView))
		pr.Get("/export", h.ServeExport)
		pr.Post("/refresh", h.ServeRefresh)

		pr.With(sm.RequireRole("admin", "manager")).Put("/schools/{id}", h.ServeUpdateSchool)
	})

	return r
}
