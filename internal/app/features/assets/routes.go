// internal/app/features/assets/routes.go
package assets

import "github.com/go-chi/chi/v5"

// TeamRoutes returns the team-scoped endpoints, mounted under /teams.
//
//	r.Mount("/teams", assets.TeamRoutes(h))
func TeamRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{teamID}/assets", h.ServeList)
	r.Post("/{teamID}/assets", h.HandleCreate)
	r.Get("/{teamID}/availability", h.ServeAvailability)
	return r
}

// AssetRoutes returns the per-asset endpoints, mounted under /assets.
//
//	r.Mount("/assets", assets.AssetRoutes(h))
func AssetRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// READ
	r.Get("/{id}", h.ServeGet)
	r.Get("/{id}/slots", h.ServeSlots)
	r.Get("/{id}/audit", h.ServeAudit)

	// EDIT
	r.Patch("/{id}", h.HandleUpdate)

	// WORKFLOW
	r.Post("/{id}/submit", h.HandleSubmit)
	r.Post("/{id}/review", h.HandleReview)
	r.Post("/{id}/duplicate", h.HandleDuplicate)
	r.Post("/{id}/archive", h.HandleArchive)

	// SCHEDULING
	r.Post("/{id}/schedule", h.HandleSchedule)
	r.Post("/{id}/live", h.HandleLive)

	return r
}
