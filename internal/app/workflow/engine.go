package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

// Engine applies workflow operations to assets. The zero value is usable
// and stamps times with time.Now and ids with uuid.NewString.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

// New returns an Engine with the given clock and id generator. Nil
// arguments fall back to the defaults.
func New(now func() time.Time, newID func() string) *Engine {
	return &Engine{Now: now, NewID: newID}
}

func (e *Engine) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now().UTC()
}

func (e *Engine) newID() string {
	if e == nil || e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

// CreateInput describes a new asset.
type CreateInput struct {
	Name       string
	Type       string
	TeamID     string
	CampaignID string
	Metadata   map[string]any
	Tags       []string
}

// Create builds a new draft asset at version 1.
func (e *Engine) Create(in CreateInput) (models.Asset, error) {
	teamID := strings.TrimSpace(in.TeamID)
	if teamID == "" {
		return models.Asset{}, apperr.Validation("team_id is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Asset{}, apperr.Validation("name is required")
	}

	now := e.now()
	a := models.Asset{
		ID:         e.newID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Type:       strings.TrimSpace(in.Type),
		TeamID:     teamID,
		CampaignID: strings.TrimSpace(in.CampaignID),
		Status:     models.AssetDraft,
		Tags:       NormalizeTags(in.Tags),
		Review:     models.Review{Status: models.ReviewNone, Notes: []models.ReviewNote{}},
		Schedules:  []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
	if len(in.Metadata) > 0 {
		a.Metadata = make(map[string]any, len(in.Metadata))
		for k, v := range in.Metadata {
			a.Metadata[k] = v
		}
	}
	return a, nil
}

// Submit sends an asset for review and records the submitter's note.
func (e *Engine) Submit(a models.Asset, note, actorID string) (models.Asset, error) {
	to, err := Next(a.Status, ActionSubmit)
	if err != nil {
		return models.Asset{}, err
	}
	out := a.Clone()
	now := e.now()
	out.Status = to
	out.Review.Status = models.ReviewSubmitted
	out.Review.Notes = append(out.Review.Notes, models.ReviewNote{
		Message: htmlsanitize.PlainText(note),
		ActorID: actorID,
		At:      now,
	})
	commit(&out, now)
	return out, nil
}

// Review records a reviewer decision. action must be approve, reject, or
// request_changes.
func (e *Engine) Review(a models.Asset, action, feedback, actorID string) (models.Asset, error) {
	act, err := ParseReviewAction(action)
	if err != nil {
		return models.Asset{}, err
	}
	to, err := Next(a.Status, act)
	if err != nil {
		return models.Asset{}, err
	}
	out := a.Clone()
	now := e.now()
	out.Status = to
	out.Review.Status = reviewStatusFor(act)
	out.Review.Notes = append(out.Review.Notes, models.ReviewNote{
		Message: htmlsanitize.PlainText(feedback),
		ActorID: actorID,
		At:      now,
	})
	commit(&out, now)
	return out, nil
}

// Duplicate returns a brand-new draft copy of a. Review history and
// reservations are not copied; the source is not modified.
func (e *Engine) Duplicate(a models.Asset) models.Asset {
	src := a.Clone()
	now := e.now()
	return models.Asset{
		ID:         e.newID(),
		Name:       src.Name + " (copy)",
		NameCI:     text.Fold(src.Name + " (copy)"),
		Type:       src.Type,
		TeamID:     src.TeamID,
		CampaignID: src.CampaignID,
		Status:     models.AssetDraft,
		Metadata:   src.Metadata,
		Tags:       src.Tags,
		Review:     models.Review{Status: models.ReviewNone, Notes: []models.ReviewNote{}},
		Schedules:  []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
}

// Archive moves an asset to its terminal state and stamps ArchivedAt.
func (e *Engine) Archive(a models.Asset) (models.Asset, error) {
	to, err := Next(a.Status, ActionArchive)
	if err != nil {
		return models.Asset{}, err
	}
	out := a.Clone()
	now := e.now()
	out.Status = to
	out.ArchivedAt = &now
	commit(&out, now)
	return out, nil
}

// SetLiveStatus sets an asset to scheduled or live. Going live requires at
// least one reservation slot.
func (e *Engine) SetLiveStatus(a models.Asset, status string) (models.Asset, error) {
	var act Action
	switch models.AssetStatus(status) {
	case models.AssetScheduled:
		act = ActionSetScheduled
	case models.AssetLive:
		act = ActionGoLive
	default:
		return models.Asset{}, apperr.Validation(fmt.Sprintf("live status must be scheduled or live; got %q", status))
	}
	to, err := Next(a.Status, act)
	if err != nil {
		return models.Asset{}, err
	}
	if to == models.AssetLive && len(a.Schedules) == 0 {
		return models.Asset{}, apperr.Conflicted(
			"asset has no reservation slot; schedule it before going live",
			map[string]string{"asset_id": a.ID},
		)
	}
	out := a.Clone()
	out.Status = to
	commit(&out, e.now())
	return out, nil
}

// MarkReserved appends a committed slot to the asset and moves it to
// scheduled.
func (e *Engine) MarkReserved(a models.Asset, slotID string) (models.Asset, error) {
	to, err := Next(a.Status, ActionReserve)
	if err != nil {
		return models.Asset{}, err
	}
	out := a.Clone()
	out.Status = to
	out.Schedules = append(out.Schedules, slotID)
	commit(&out, e.now())
	return out, nil
}

// commit stamps an accepted mutation.
func commit(a *models.Asset, now time.Time) {
	a.UpdatedAt = now
	a.Version++
}
