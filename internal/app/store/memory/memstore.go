// internal/app/store/memory/memstore.go
//
// Package memstore holds in-process implementations of the asset, slot and
// team directory stores. Values are copied on the way in and out so callers
// never share state with the store.
package memstore

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/assetflow/internal/app/store/audit"
	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetStore keeps assets by id with a per-team index.
type AssetStore struct {
	mu     sync.RWMutex
	byID   map[string]models.Asset
	byTeam map[string]map[string]struct{}
}

// NewAssetStore returns an empty AssetStore.
func NewAssetStore() *AssetStore {
	return &AssetStore{
		byID:   make(map[string]models.Asset),
		byTeam: make(map[string]map[string]struct{}),
	}
}

// Insert adds a new asset. The id must not exist yet.
func (s *AssetStore) Insert(_ context.Context, a models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; ok {
		return apperr.Conflicted("asset already exists", map[string]string{"asset_id": a.ID})
	}
	s.put(a)
	return nil
}

// Save replaces an existing asset if its stored version equals
// expectedVersion.
func (s *AssetStore) Save(_ context.Context, a models.Asset, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[a.ID]
	if !ok {
		return apperr.NotFound("asset not found")
	}
	if cur.Version != expectedVersion {
		return apperr.Conflicted("asset was modified concurrently", map[string]string{
			"asset_id":         a.ID,
			"expected_version": strconv.FormatInt(expectedVersion, 10),
			"current_version":  strconv.FormatInt(cur.Version, 10),
		})
	}
	if cur.TeamID != a.TeamID {
		delete(s.byTeam[cur.TeamID], a.ID)
	}
	s.put(a)
	return nil
}

func (s *AssetStore) put(a models.Asset) {
	a = a.Clone()
	a.NameCI = text.Fold(a.Name)
	s.byID[a.ID] = a
	ids, ok := s.byTeam[a.TeamID]
	if !ok {
		ids = make(map[string]struct{})
		s.byTeam[a.TeamID] = ids
	}
	ids[a.ID] = struct{}{}
}

// Get returns the asset with the given id.
func (s *AssetStore) Get(_ context.Context, id string) (models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return models.Asset{}, apperr.NotFound("asset not found")
	}
	return a.Clone(), nil
}

// List returns the team's assets matching f, most recently updated first.
func (s *AssetStore) List(_ context.Context, f models.AssetFilter) ([]models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := text.Fold(strings.TrimSpace(f.Search))
	var out []models.Asset
	for id := range s.byTeam[f.TeamID] {
		a := s.byID[id]
		if !f.IncludeArchived && a.IsArchived() && f.Status != models.AssetArchived {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.CampaignID != "" && a.CampaignID != f.CampaignID {
			continue
		}
		if f.Tag != "" && !hasTag(a.Tags, f.Tag) {
			continue
		}
		if search != "" && !strings.HasPrefix(a.NameCI, search) {
			continue
		}
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SlotStore keeps reservation slots by id with a per-asset index.
type SlotStore struct {
	mu      sync.RWMutex
	byID    map[string]models.ReservationSlot
	byAsset map[string][]string
}

// NewSlotStore returns an empty SlotStore.
func NewSlotStore() *SlotStore {
	return &SlotStore{
		byID:    make(map[string]models.ReservationSlot),
		byAsset: make(map[string][]string),
	}
}

// Insert adds a slot. The id must not exist yet.
func (s *SlotStore) Insert(_ context.Context, slot models.ReservationSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[slot.ID]; ok {
		return apperr.Conflicted("slot already exists", map[string]string{"slot_id": slot.ID})
	}
	s.byID[slot.ID] = slot
	s.byAsset[slot.AssetID] = append(s.byAsset[slot.AssetID], slot.ID)
	return nil
}

// Delete removes a slot. Deleting a missing slot is not an error.
func (s *SlotStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	ids := s.byAsset[slot.AssetID]
	for i, v := range ids {
		if v == id {
			s.byAsset[slot.AssetID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// ListByAssets returns the slots of the given assets, grouped by asset in
// argument order and in insertion order within an asset.
func (s *SlotStore) ListByAssets(_ context.Context, assetIDs []string) ([]models.ReservationSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ReservationSlot
	for _, aid := range assetIDs {
		for _, id := range s.byAsset[aid] {
			out = append(out, s.byID[id])
		}
	}
	return out, nil
}

// Directory is an in-memory team and membership directory.
type Directory struct {
	mu          sync.RWMutex
	teams       map[string]models.Team
	memberships map[memberKey]models.TeamMembership
}

type memberKey struct{ team, user string }

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		teams:       make(map[string]models.Team),
		memberships: make(map[memberKey]models.TeamMembership),
	}
}

// PutTeam adds or replaces a team.
func (d *Directory) PutTeam(t models.Team) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.teams[t.ID] = t
}

// PutMembership adds or replaces the membership for (TeamID, UserID).
func (d *Directory) PutMembership(m models.TeamMembership) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memberships[memberKey{m.TeamID, m.UserID}] = m
}

// CreateTeam adds a team. The id and name are required and the id must
// not exist yet.
func (d *Directory) CreateTeam(_ context.Context, t models.Team) (models.Team, error) {
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Name) == "" {
		return models.Team{}, apperr.Validation("team id and name are required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.teams[t.ID]; ok {
		return models.Team{}, apperr.Conflicted("team already exists", map[string]string{"team_id": t.ID})
	}
	d.teams[t.ID] = t
	return t, nil
}

// UpsertMembership is PutMembership with the directory store signature.
func (d *Directory) UpsertMembership(_ context.Context, m models.TeamMembership) error {
	d.PutMembership(m)
	return nil
}

// GetTeamAccess reports how actorID relates to teamID, or nil when the
// actor is neither owner nor member.
func (d *Directory) GetTeamAccess(_ context.Context, teamID, actorID string) (*models.TeamAccess, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, hasTeam := d.teams[teamID]
	m, hasMember := d.memberships[memberKey{teamID, actorID}]
	isOwner := hasTeam && t.OwnerID != "" && t.OwnerID == actorID
	if !isOwner && !hasMember {
		return nil, nil
	}
	access := &models.TeamAccess{IsOwner: isOwner}
	if hasMember {
		access.MembershipStatus = m.Status
		access.Role = m.Role
	}
	return access, nil
}

// AuditLog keeps audit events in insertion order.
type AuditLog struct {
	mu     sync.RWMutex
	events []audit.Event
	now    func() time.Time
}

// NewAuditLog returns an empty AuditLog.
func NewAuditLog() *AuditLog {
	return &AuditLog{now: time.Now}
}

// Log appends an event, stamping its id and timestamp the way the Mongo
// store does.
func (l *AuditLog) Log(_ context.Context, e audit.Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}
	e.Details = maps.Clone(e.Details)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

// GetByAsset returns up to limit events for assetID, newest first.
// limit <= 0 returns all of them.
func (l *AuditLog) GetByAsset(_ context.Context, assetID string, limit int64) ([]audit.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []audit.Event
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].AssetID != assetID {
			continue
		}
		e := l.events[i]
		e.Details = maps.Clone(e.Details)
		out = append(out, e)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}
