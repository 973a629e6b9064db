package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/assetflow/internal/app/store/audit"
	memstore "github.com/dalemusser/assetflow/internal/app/store/memory"
	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func asset(id, team, name string, status models.AssetStatus, updated time.Duration) models.Asset {
	return models.Asset{
		ID:        id,
		Name:      name,
		TeamID:    team,
		Status:    status,
		Tags:      []string{},
		Version:   1,
		UpdatedAt: base.Add(updated),
	}
}

func TestAssetStore_SaveChecksVersion(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewAssetStore()
	a := asset("a1", "T1", "Banner", models.AssetDraft, 0)
	if err := s.Insert(ctx, a); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, a); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate Insert: got %v, want conflict", err)
	}

	a.Name = "Banner v2"
	a.Version = 2
	if err := s.Save(ctx, a, 1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	a.Version = 3
	if err := s.Save(ctx, a, 1); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale Save: got %v, want conflict", err)
	}

	got, err := s.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Banner v2" || got.Version != 2 {
		t.Errorf("got %q v%d, want %q v2", got.Name, got.Version, "Banner v2")
	}
	if got.NameCI != "banner v2" {
		t.Errorf("NameCI: got %q", got.NameCI)
	}

	missing := asset("nope", "T1", "x", models.AssetDraft, 0)
	if err := s.Save(ctx, missing, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Save missing: got %v, want not found", err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get missing: got %v, want not found", err)
	}
}

func TestAssetStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewAssetStore()
	a := asset("a1", "T1", "Banner", models.AssetDraft, 0)
	a.Tags = []string{"spring"}
	if err := s.Insert(ctx, a); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	a.Tags[0] = "mutated"

	got, _ := s.Get(ctx, "a1")
	got.Tags[0] = "also mutated"

	again, _ := s.Get(ctx, "a1")
	if again.Tags[0] != "spring" {
		t.Errorf("stored tags changed: %v", again.Tags)
	}
}

func TestAssetStore_List(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewAssetStore()
	seed := []models.Asset{
		asset("a1", "T1", "Été Promo", models.AssetDraft, 1*time.Minute),
		asset("a2", "T1", "Winter Sale", models.AssetApproved, 3*time.Minute),
		asset("a3", "T1", "Old Banner", models.AssetArchived, 5*time.Minute),
		asset("a4", "T2", "Other Team", models.AssetDraft, 2*time.Minute),
		asset("a5", "T1", "ete teaser", models.AssetDraft, 2*time.Minute),
	}
	seed[1].CampaignID = "C1"
	seed[1].Tags = []string{"sale"}
	for _, a := range seed {
		if err := s.Insert(ctx, a); err != nil {
			t.Fatalf("Insert %s: %v", a.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter models.AssetFilter
		want   []string
	}{
		{"team default excludes archived", models.AssetFilter{TeamID: "T1"}, []string{"a2", "a5", "a1"}},
		{"include archived", models.AssetFilter{TeamID: "T1", IncludeArchived: true}, []string{"a3", "a2", "a5", "a1"}},
		{"status archived", models.AssetFilter{TeamID: "T1", Status: models.AssetArchived}, []string{"a3"}},
		{"status draft", models.AssetFilter{TeamID: "T1", Status: models.AssetDraft}, []string{"a5", "a1"}},
		{"campaign", models.AssetFilter{TeamID: "T1", CampaignID: "C1"}, []string{"a2"}},
		{"tag", models.AssetFilter{TeamID: "T1", Tag: "sale"}, []string{"a2"}},
		{"search folds case and accents", models.AssetFilter{TeamID: "T1", Search: "ETE"}, []string{"a5", "a1"}},
		{"limit", models.AssetFilter{TeamID: "T1", Limit: 1}, []string{"a2"}},
		{"unknown team", models.AssetFilter{TeamID: "T9"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d assets, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("[%d] got %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSlotStore(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewSlotStore()
	slots := []models.ReservationSlot{
		{ID: "s1", AssetID: "a1", Start: base, End: base.Add(time.Hour)},
		{ID: "s2", AssetID: "a2", Start: base, End: base.Add(time.Hour)},
		{ID: "s3", AssetID: "a1", Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)},
	}
	for _, sl := range slots {
		if err := s.Insert(ctx, sl); err != nil {
			t.Fatalf("Insert %s: %v", sl.ID, err)
		}
	}
	if err := s.Insert(ctx, slots[0]); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate Insert: got %v, want conflict", err)
	}

	got, _ := s.ListByAssets(ctx, []string{"a1"})
	if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s3" {
		t.Errorf("a1 slots: got %+v", got)
	}

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "s1"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	got, _ = s.ListByAssets(ctx, []string{"a1", "a2"})
	if len(got) != 2 || got[0].ID != "s3" || got[1].ID != "s2" {
		t.Errorf("after delete: got %+v", got)
	}
}

func TestDirectory_GetTeamAccess(t *testing.T) {
	ctx := context.Background()
	d := memstore.NewDirectory()
	d.PutTeam(models.Team{ID: "T1", OwnerID: "owner"})
	d.PutMembership(models.TeamMembership{TeamID: "T1", UserID: "ed", Role: models.RoleEditor, Status: models.MembershipActive})
	d.PutMembership(models.TeamMembership{TeamID: "T1", UserID: "owner", Role: models.RoleViewer, Status: models.MembershipRevoked})

	tests := []struct {
		name  string
		actor string
		want  *models.TeamAccess
	}{
		{"stranger", "nobody", nil},
		{"member", "ed", &models.TeamAccess{MembershipStatus: models.MembershipActive, Role: models.RoleEditor}},
		{"owner with revoked membership", "owner", &models.TeamAccess{IsOwner: true, MembershipStatus: models.MembershipRevoked, Role: models.RoleViewer}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.GetTeamAccess(ctx, "T1", tt.actor)
			if err != nil {
				t.Fatalf("GetTeamAccess: %v", err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("got %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestDirectory_CreateTeam(t *testing.T) {
	ctx := context.Background()
	d := memstore.NewDirectory()

	if _, err := d.CreateTeam(ctx, models.Team{ID: "T1"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("missing name: got %v, want validation", err)
	}
	if _, err := d.CreateTeam(ctx, models.Team{ID: "T1", Name: "Brand", OwnerID: "owner"}); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if _, err := d.CreateTeam(ctx, models.Team{ID: "T1", Name: "Again"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate: got %v, want conflict", err)
	}

	if err := d.UpsertMembership(ctx, models.TeamMembership{TeamID: "T1", UserID: "ed", Role: models.RoleEditor, Status: models.MembershipActive}); err != nil {
		t.Fatalf("UpsertMembership: %v", err)
	}
	access, err := d.GetTeamAccess(ctx, "T1", "ed")
	if err != nil || access == nil || access.Role != models.RoleEditor {
		t.Fatalf("access after upsert: %+v, %v", access, err)
	}
}

func TestDirectory_SlashInIDsDoesNotCollide(t *testing.T) {
	ctx := context.Background()
	d := memstore.NewDirectory()
	d.PutMembership(models.TeamMembership{TeamID: "a/b", UserID: "c", Role: models.RoleEditor, Status: models.MembershipActive})

	got, err := d.GetTeamAccess(ctx, "a", "b/c")
	if err != nil {
		t.Fatalf("GetTeamAccess: %v", err)
	}
	if got != nil {
		t.Errorf("team a / user b/c matched membership of team a/b / user c: %+v", *got)
	}
	got, err = d.GetTeamAccess(ctx, "a/b", "c")
	if err != nil || got == nil || got.Role != models.RoleEditor {
		t.Errorf("own membership: got %+v, %v", got, err)
	}
}

func TestAuditLog_GetByAsset(t *testing.T) {
	ctx := context.Background()
	l := memstore.NewAuditLog()
	for _, e := range []audit.Event{
		{AssetID: "A1", EventType: audit.EventAssetCreated, Details: map[string]string{"name": "x"}},
		{AssetID: "A2", EventType: audit.EventAssetCreated},
		{AssetID: "A1", EventType: audit.EventAssetSubmitted},
		{AssetID: "A1", EventType: audit.EventAssetReviewed},
	} {
		if err := l.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	got, err := l.GetByAsset(ctx, "A1", 2)
	if err != nil {
		t.Fatalf("GetByAsset: %v", err)
	}
	if len(got) != 2 || got[0].EventType != audit.EventAssetReviewed || got[1].EventType != audit.EventAssetSubmitted {
		t.Fatalf("got %+v, want newest two A1 events", got)
	}
	for _, e := range got {
		if e.ID.IsZero() || e.Timestamp.IsZero() {
			t.Errorf("event not stamped: %+v", e)
		}
	}

	all, _ := l.GetByAsset(ctx, "A1", 0)
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	all[2].Details["name"] = "changed"
	again, _ := l.GetByAsset(ctx, "A1", 0)
	if again[2].Details["name"] != "x" {
		t.Error("GetByAsset returned shared details map")
	}
}
