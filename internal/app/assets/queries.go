package assets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/assetflow/internal/app/availability"
	"github.com/dalemusser/assetflow/internal/app/policy/teampolicy"
	"github.com/dalemusser/assetflow/internal/app/schedule"
	"github.com/dalemusser/assetflow/internal/app/store/audit"
	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/app/system/metrics"
	"github.com/dalemusser/assetflow/internal/domain/models"
)

// ListAssets returns a team's assets, most recently updated first. Any
// active member may list. Archived assets are omitted unless
// f.IncludeArchived is set or f.Status asks for them.
func (s *Service) ListAssets(ctx context.Context, actorID string, f models.AssetFilter) ([]models.Asset, error) {
	f.TeamID = strings.TrimSpace(f.TeamID)
	if f.TeamID == "" {
		return nil, apperr.Validation("team_id is required")
	}
	if f.Status != "" && !f.Status.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown status %q", f.Status))
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	if err := s.authorize(ctx, "list_assets", actorID, f.TeamID, "", teampolicy.ReadRoles); err != nil {
		return nil, err
	}
	out, err := s.assets.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Asset{}
	}
	return out, nil
}

// GetAsset returns one asset. Any active member of its team may read it.
func (s *Service) GetAsset(ctx context.Context, actorID, id string) (models.Asset, error) {
	return s.loadAuthorized(ctx, "get_asset", actorID, id, teampolicy.ReadRoles)
}

// ListSlots returns an asset's reservation slots in creation order.
func (s *Service) ListSlots(ctx context.Context, actorID, id string) ([]models.ReservationSlot, error) {
	a, err := s.loadAuthorized(ctx, "list_slots", actorID, id, teampolicy.ReadRoles)
	if err != nil {
		return nil, err
	}
	slots, err := s.schedule.SlotsFor(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []models.ReservationSlot{}
	}
	return slots, nil
}

// CheckAvailability reports whether [start, end) is free for the team,
// ignoring excludeAssetID's own slots, and suggests a later interval when
// it is not. The suggestion is not itself checked for conflicts.
//
// Slots are read without the team's reservation lock, so a concurrent
// ScheduleAsset whose slot is later rolled back may briefly show up as a
// conflict. The answer is advisory; ScheduleAsset re-checks under the lock.
func (s *Service) CheckAvailability(ctx context.Context, actorID, teamID string, start, end time.Time, excludeAssetID string) (availability.Result, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return availability.Result{}, apperr.Validation("team_id is required")
	}
	if err := schedule.ValidateInterval(start, end); err != nil {
		return availability.Result{}, err
	}
	if err := s.authorize(ctx, "check_availability", actorID, teamID, excludeAssetID, teampolicy.ReadRoles); err != nil {
		return availability.Result{}, err
	}
	res, err := s.suggester.Check(ctx, teamID, start, end, excludeAssetID)
	if err != nil {
		return availability.Result{}, err
	}
	metrics.RecordAvailability(res.Available)
	return res, nil
}

// ListAuditEvents returns up to limit audit events for an asset, newest
// first. Any active member of its team may read them.
func (s *Service) ListAuditEvents(ctx context.Context, actorID, id string, limit int) ([]audit.Event, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	a, err := s.loadAuthorized(ctx, "list_audit_events", actorID, id, teampolicy.ReadRoles)
	if err != nil {
		return nil, err
	}
	if s.events == nil {
		return []audit.Event{}, nil
	}
	events, err := s.events.GetByAsset(ctx, a.ID, int64(limit))
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}
