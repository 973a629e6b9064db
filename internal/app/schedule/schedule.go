// Package schedule owns reservation slots and detects overlaps between
// them within a team.
//
// Reserve is atomic per team: the conflict scan and the slot/asset writes
// run under one per-team lock, so two concurrent reservations for the same
// team cannot both pass the scan and then overlap each other.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/app/system/keylock"
	"github.com/dalemusser/assetflow/internal/app/system/timeouts"
	"github.com/dalemusser/assetflow/internal/app/workflow"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/google/uuid"
)

// AssetRepository is the subset of asset persistence the scheduler needs.
type AssetRepository interface {
	List(ctx context.Context, f models.AssetFilter) ([]models.Asset, error)
	Save(ctx context.Context, a models.Asset, expectedVersion int64) error
}

// SlotRepository persists reservation slots keyed by asset.
type SlotRepository interface {
	Insert(ctx context.Context, s models.ReservationSlot) error
	// Delete is only used to roll back a slot whose asset write failed.
	Delete(ctx context.Context, id string) error
	ListByAssets(ctx context.Context, assetIDs []string) ([]models.ReservationSlot, error)
}

// Store is the conflict engine and slot owner.
type Store struct {
	assets   AssetRepository
	slots    SlotRepository
	workflow *workflow.Engine
	locks    *keylock.Map

	Now   func() time.Time
	NewID func() string
}

// New creates a Store. wf applies the status transition on reserve; it may
// be nil to use a default engine.
func New(assets AssetRepository, slots SlotRepository, wf *workflow.Engine) *Store {
	if wf == nil {
		wf = &workflow.Engine{}
	}
	return &Store{
		assets:   assets,
		slots:    slots,
		workflow: wf,
		locks:    keylock.New(),
	}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Store) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

// ValidateInterval checks that start and end are set and start < end.
func ValidateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperr.Validation("start and end are required")
	}
	if !start.Before(end) {
		return apperr.Validation("start must be before end")
	}
	return nil
}

// FindConflicts returns every slot of teamID's non-archived assets, other
// than ignoreAssetID, that overlaps [start, end). Touching endpoints are
// not conflicts. Results are ordered by slot start, then asset id.
//
// This is a full scan of the team's slots.
func (s *Store) FindConflicts(ctx context.Context, teamID string, start, end time.Time, ignoreAssetID string) ([]models.Conflict, error) {
	if err := ValidateInterval(start, end); err != nil {
		return nil, err
	}
	return s.findConflicts(ctx, teamID, start, end, ignoreAssetID)
}

func (s *Store) findConflicts(ctx context.Context, teamID string, start, end time.Time, ignoreAssetID string) ([]models.Conflict, error) {
	assets, err := s.assets.List(ctx, models.AssetFilter{TeamID: teamID})
	if err != nil {
		return nil, fmt.Errorf("list team assets: %w", err)
	}

	byID := make(map[string]models.Asset, len(assets))
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.ID == ignoreAssetID || a.IsArchived() {
			continue
		}
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	slots, err := s.slots.ListByAssets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list team slots: %w", err)
	}

	var conflicts []models.Conflict
	for _, slot := range slots {
		a, ok := byID[slot.AssetID]
		if !ok || !slot.Overlaps(start, end) {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			AssetID:   a.ID,
			AssetName: a.Name,
			SlotID:    slot.ID,
			Start:     slot.Start,
			End:       slot.End,
			Status:    slot.Status,
		})
	}
	sort.SliceStable(conflicts, func(i, j int) bool {
		if !conflicts[i].Start.Equal(conflicts[j].Start) {
			return conflicts[i].Start.Before(conflicts[j].Start)
		}
		return conflicts[i].AssetID < conflicts[j].AssetID
	})
	return conflicts, nil
}

// Reserve commits [start, end) for asset a on behalf of actorID.
//
// It fails with a validation error when start >= end, a conflict error when
// a is archived, and a conflict error carrying the overlap list when
// another asset of the same team holds an overlapping slot. On success the
// returned asset is scheduled, one version newer, with the new slot id
// appended. The asset's own slots are never treated as conflicts.
func (s *Store) Reserve(ctx context.Context, a models.Asset, start, end time.Time, actorID string) (models.Asset, models.ReservationSlot, error) {
	if err := ValidateInterval(start, end); err != nil {
		return models.Asset{}, models.ReservationSlot{}, err
	}
	if _, err := workflow.Next(a.Status, workflow.ActionReserve); err != nil {
		return models.Asset{}, models.ReservationSlot{}, err
	}

	unlock := s.locks.Lock(a.TeamID)
	defer unlock()

	conflicts, err := s.findConflicts(ctx, a.TeamID, start, end, a.ID)
	if err != nil {
		return models.Asset{}, models.ReservationSlot{}, err
	}
	if len(conflicts) > 0 {
		return models.Asset{}, models.ReservationSlot{}, apperr.Overlap(conflicts)
	}

	slot := models.ReservationSlot{
		ID:         s.newID(),
		AssetID:    a.ID,
		TeamID:     a.TeamID,
		Start:      start.UTC(),
		End:        end.UTC(),
		Status:     models.SlotScheduled,
		ReservedBy: actorID,
		CreatedAt:  s.now(),
	}
	updated, err := s.workflow.MarkReserved(a, slot.ID)
	if err != nil {
		return models.Asset{}, models.ReservationSlot{}, err
	}

	if err := s.slots.Insert(ctx, slot); err != nil {
		return models.Asset{}, models.ReservationSlot{}, fmt.Errorf("insert slot: %w", err)
	}
	if err := s.assets.Save(ctx, updated, a.Version); err != nil {
		// ctx may already be done; the rollback must still run.
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
		defer cancel()
		if rbErr := s.slots.Delete(rbCtx, slot.ID); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("roll back slot %s: %w", slot.ID, rbErr))
		}
		return models.Asset{}, models.ReservationSlot{}, err
	}
	return updated, slot, nil
}

// SlotsFor returns an asset's slots in creation order.
func (s *Store) SlotsFor(ctx context.Context, assetID string) ([]models.ReservationSlot, error) {
	slots, err := s.slots.ListByAssets(ctx, []string{assetID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].CreatedAt.Before(slots[j].CreatedAt)
	})
	return slots, nil
}
