// internal/app/features/assets/read.go
package assets

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/app/system/timeouts"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /teams/{teamID}/assets.
//
// Query: status, campaign_id, tag, search, include_archived, limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.AssetFilter{
		TeamID:     chi.URLParam(r, "teamID"),
		Status:     models.AssetStatus(strings.TrimSpace(q.Get("status"))),
		CampaignID: strings.TrimSpace(q.Get("campaign_id")),
		Tag:        strings.TrimSpace(q.Get("tag")),
		Search:     q.Get("search"),
	}
	if v := q.Get("include_archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, apperr.Validation("include_archived must be a boolean"))
			return
		}
		f.IncludeArchived = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, r, apperr.Validation("limit must be an integer"))
			return
		}
		f.Limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Svc.ListAssets(ctx, actorID(r), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": list})
}

// ServeGet handles GET /assets/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Svc.GetAsset(ctx, actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ServeSlots handles GET /assets/{id}/slots.
func (h *Handler) ServeSlots(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	slots, err := h.Svc.ListSlots(ctx, actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

// ServeAudit handles GET /assets/{id}/audit?limit=.
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, r, apperr.Validation("limit must be an integer"))
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Svc.ListAuditEvents(ctx, actorID(r), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// ServeAvailability handles GET /teams/{teamID}/availability?start=&end=&exclude_asset_id=.
func (h *Handler) ServeAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseTime("start", q.Get("start"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	end, err := parseTime("end", q.Get("end"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Svc.CheckAvailability(ctx, actorID(r), chi.URLParam(r, "teamID"), start, end, q.Get("exclude_asset_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
