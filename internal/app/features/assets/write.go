// internal/app/features/assets/write.go
package assets

import (
	"context"
	"net/http"

	"github.com/dalemusser/assetflow/internal/app/system/timeouts"
	"github.com/dalemusser/assetflow/internal/app/workflow"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type createRequest struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	CampaignID string         `json:"campaign_id"`
	Metadata   map[string]any `json:"metadata"`
	Tags       []string       `json:"tags"`
}

// HandleCreate handles POST /teams/{teamID}/assets.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Svc.CreateAsset(ctx, actorID(r), workflow.CreateInput{
		Name:       req.Name,
		Type:       req.Type,
		TeamID:     chi.URLParam(r, "teamID"),
		CampaignID: req.CampaignID,
		Metadata:   req.Metadata,
		Tags:       req.Tags,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type updateRequest struct {
	Name            *string        `json:"name"`
	Type            *string        `json:"type"`
	CampaignID      *string        `json:"campaign_id"`
	Metadata        map[string]any `json:"metadata"`
	Tags            *[]string      `json:"tags"`
	ExpectedVersion int64          `json:"expected_version"`
}

// HandleUpdate handles PATCH /assets/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Svc.UpdateAsset(ctx, actorID(r), chi.URLParam(r, "id"), workflow.Patch{
		Name:            req.Name,
		Type:            req.Type,
		CampaignID:      req.CampaignID,
		Metadata:        req.Metadata,
		Tags:            req.Tags,
		ExpectedVersion: req.ExpectedVersion,
	})
	h.respondAsset(w, r, a, err)
}

// HandleSubmit handles POST /assets/{id}/submit with body {"note": "..."}.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Svc.SubmitForReview(ctx, actorID(r), chi.URLParam(r, "id"), req.Note)
	h.respondAsset(w, r, a, err)
}

// HandleReview handles POST /assets/{id}/review with body
// {"action": "approve|reject|request_changes", "feedback": "..."}.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action   string `json:"action"`
		Feedback string `json:"feedback"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Svc.ReviewAsset(ctx, actorID(r), chi.URLParam(r, "id"), req.Action, req.Feedback)
	h.respondAsset(w, r, a, err)
}

// HandleDuplicate handles POST /assets/{id}/duplicate.
func (h *Handler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Svc.DuplicateAsset(ctx, actorID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// HandleArchive handles POST /assets/{id}/archive.
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Svc.ArchiveAsset(ctx, actorID(r), chi.URLParam(r, "id"))
	h.respondAsset(w, r, a, err)
}

// HandleSchedule handles POST /assets/{id}/schedule with body
// {"start": RFC3339, "end": RFC3339}. Overlaps answer 409 with the
// conflicting slots under error.conflicts.
func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	start, err := parseTime("start", req.Start)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	end, err := parseTime("end", req.End)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "schedule asset")
	defer cancel()

	res, err := h.Svc.ScheduleAsset(ctx, actorID(r), chi.URLParam(r, "id"), start, end)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleLive handles POST /assets/{id}/live with body
// {"status": "scheduled|live"}.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Svc.SetLiveStatus(ctx, actorID(r), chi.URLParam(r, "id"), req.Status)
	h.respondAsset(w, r, a, err)
}

func (h *Handler) respondAsset(w http.ResponseWriter, r *http.Request, a models.Asset, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
