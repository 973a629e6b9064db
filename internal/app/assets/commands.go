package assets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/assetflow/internal/app/policy/teampolicy"
	"github.com/dalemusser/assetflow/internal/app/schedule"
	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/app/system/metrics"
	"github.com/dalemusser/assetflow/internal/app/workflow"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"go.uber.org/zap"
)

// mutate loads and authorizes an asset, applies fn, and saves the result
// against the loaded version. Nothing is written when fn fails.
func (s *Service) mutate(ctx context.Context, op, actorID, id string, roles []string, fn func(models.Asset) (models.Asset, error)) (models.Asset, error) {
	out, err := s.doMutate(ctx, op, actorID, id, roles, fn)
	metrics.RecordTransition(op, outcome(err))
	return out, err
}

func (s *Service) doMutate(ctx context.Context, op, actorID, id string, roles []string, fn func(models.Asset) (models.Asset, error)) (models.Asset, error) {
	a, err := s.loadAuthorized(ctx, op, actorID, id, roles)
	if err != nil {
		return models.Asset{}, err
	}
	out, err := fn(a)
	if err != nil {
		return models.Asset{}, err
	}
	if err := s.assets.Save(ctx, out, a.Version); err != nil {
		return models.Asset{}, err
	}
	return out, nil
}

// CreateAsset creates a draft asset in in.TeamID. Requires admin or editor.
func (s *Service) CreateAsset(ctx context.Context, actorID string, in workflow.CreateInput) (models.Asset, error) {
	a, err := s.createAsset(ctx, actorID, in)
	metrics.RecordTransition("create", outcome(err))
	return a, err
}

func (s *Service) createAsset(ctx context.Context, actorID string, in workflow.CreateInput) (models.Asset, error) {
	in.TeamID = strings.TrimSpace(in.TeamID)
	if in.TeamID == "" {
		return models.Asset{}, apperr.Validation("team_id is required")
	}
	if err := s.authorize(ctx, "create_asset", actorID, in.TeamID, "", teampolicy.EditRoles); err != nil {
		return models.Asset{}, err
	}
	a, err := s.workflow.Create(in)
	if err != nil {
		return models.Asset{}, err
	}
	if err := s.assets.Insert(ctx, a); err != nil {
		return models.Asset{}, err
	}
	s.audit.AssetCreated(ctx, actorID, a)
	s.logMutation("asset created", actorID, a)
	return a, nil
}

// UpdateAsset applies a descriptive patch. Requires admin or editor.
func (s *Service) UpdateAsset(ctx context.Context, actorID, id string, p workflow.Patch) (models.Asset, error) {
	out, err := s.mutate(ctx, "update", actorID, id, teampolicy.EditRoles, func(a models.Asset) (models.Asset, error) {
		return s.workflow.ApplyPatch(a, p)
	})
	if err != nil {
		return models.Asset{}, err
	}
	fields := patchedFields(p)
	s.audit.AssetUpdated(ctx, actorID, out, fields)
	s.logMutation("asset updated", actorID, out, zap.Strings("fields", fields))
	return out, nil
}

func patchedFields(p workflow.Patch) []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Type != nil {
		fields = append(fields, "type")
	}
	if p.CampaignID != nil {
		fields = append(fields, "campaign_id")
	}
	if len(p.Metadata) > 0 {
		fields = append(fields, "metadata")
	}
	if p.Tags != nil {
		fields = append(fields, "tags")
	}
	return fields
}

// SubmitForReview moves an asset to in_review with the submitter's note.
// Requires admin or editor.
func (s *Service) SubmitForReview(ctx context.Context, actorID, id, note string) (models.Asset, error) {
	out, err := s.mutate(ctx, "submit", actorID, id, teampolicy.EditRoles, func(a models.Asset) (models.Asset, error) {
		return s.workflow.Submit(a, note, actorID)
	})
	if err != nil {
		return models.Asset{}, err
	}
	s.audit.AssetSubmitted(ctx, actorID, out)
	s.logMutation("asset submitted for review", actorID, out)
	return out, nil
}

// ReviewAsset records approve, reject or request_changes. Requires admin.
// An unknown action is rejected before the asset is loaded.
func (s *Service) ReviewAsset(ctx context.Context, actorID, id, action, feedback string) (models.Asset, error) {
	act, err := workflow.ParseReviewAction(action)
	if err != nil {
		metrics.RecordTransition("review", outcome(err))
		return models.Asset{}, err
	}
	out, err := s.mutate(ctx, "review", actorID, id, teampolicy.ReviewRoles, func(a models.Asset) (models.Asset, error) {
		return s.workflow.Review(a, action, feedback, actorID)
	})
	if err != nil {
		return models.Asset{}, err
	}
	s.audit.AssetReviewed(ctx, actorID, out, string(act))
	s.logMutation("asset reviewed", actorID, out, zap.String("action", string(act)))
	return out, nil
}

// DuplicateAsset stores a new draft copy of an asset and returns it. The
// source is not modified. Requires admin or editor.
func (s *Service) DuplicateAsset(ctx context.Context, actorID, id string) (models.Asset, error) {
	src, err := s.loadAuthorized(ctx, "duplicate", actorID, id, teampolicy.EditRoles)
	if err == nil {
		dup := s.workflow.Duplicate(src)
		if err = s.assets.Insert(ctx, dup); err == nil {
			metrics.RecordTransition("duplicate", "ok")
			s.audit.AssetDuplicated(ctx, actorID, src, dup)
			s.logMutation("asset duplicated", actorID, dup, zap.String("source_asset_id", src.ID))
			return dup, nil
		}
	}
	metrics.RecordTransition("duplicate", outcome(err))
	return models.Asset{}, err
}

// ArchiveAsset moves an asset to its terminal archived state. Requires admin.
func (s *Service) ArchiveAsset(ctx context.Context, actorID, id string) (models.Asset, error) {
	out, err := s.mutate(ctx, "archive", actorID, id, teampolicy.ReviewRoles, s.workflow.Archive)
	if err != nil {
		return models.Asset{}, err
	}
	s.audit.AssetArchived(ctx, actorID, out)
	s.logMutation("asset archived", actorID, out)
	return out, nil
}

// SetLiveStatus sets an asset to scheduled or live. Going live requires an
// existing reservation slot. Requires admin or editor.
func (s *Service) SetLiveStatus(ctx context.Context, actorID, id, status string) (models.Asset, error) {
	out, err := s.mutate(ctx, "set_live_status", actorID, id, teampolicy.EditRoles, func(a models.Asset) (models.Asset, error) {
		return s.workflow.SetLiveStatus(a, status)
	})
	if err != nil {
		return models.Asset{}, err
	}
	s.audit.AssetLiveStatus(ctx, actorID, out)
	s.logMutation("asset live status changed", actorID, out)
	return out, nil
}

// ScheduleResult is the outcome of a successful reservation.
type ScheduleResult struct {
	Asset models.Asset           `json:"asset"`
	Slot  models.ReservationSlot `json:"slot"`
}

// ScheduleAsset reserves [start, end) for an asset. It fails with a
// conflict error listing the overlapping slots when another asset of the
// same team holds any part of the interval. Requires admin or editor.
func (s *Service) ScheduleAsset(ctx context.Context, actorID, id string, start, end time.Time) (ScheduleResult, error) {
	res, err := s.scheduleAsset(ctx, actorID, id, start, end)
	metrics.RecordReservation(outcome(err))
	return res, err
}

func (s *Service) scheduleAsset(ctx context.Context, actorID, id string, start, end time.Time) (ScheduleResult, error) {
	if err := schedule.ValidateInterval(start, end); err != nil {
		return ScheduleResult{}, err
	}
	a, err := s.loadAuthorized(ctx, "schedule", actorID, id, teampolicy.EditRoles)
	if err != nil {
		return ScheduleResult{}, err
	}
	out, slot, err := s.schedule.Reserve(ctx, a, start, end, actorID)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) && len(ae.Conflicts) > 0 {
			s.audit.SlotConflict(ctx, actorID, a, start, end, len(ae.Conflicts))
			s.log.Warn("reservation conflict",
				zap.String("asset_id", a.ID),
				zap.String("team_id", a.TeamID),
				zap.String("actor_id", actorID),
				zap.Int("conflicts", len(ae.Conflicts)),
			)
		}
		return ScheduleResult{}, err
	}
	s.audit.SlotReserved(ctx, actorID, slot)
	s.logMutation("asset scheduled", actorID, out,
		zap.String("slot_id", slot.ID),
		zap.Time("start", slot.Start),
		zap.Time("end", slot.End),
	)
	return ScheduleResult{Asset: out, Slot: slot}, nil
}
