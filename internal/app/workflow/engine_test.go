package workflow_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/app/workflow"
	"github.com/dalemusser/assetflow/internal/domain/models"
)

var fixedNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func testEngine() *workflow.Engine {
	n := 0
	return workflow.New(
		func() time.Time { return fixedNow },
		func() string { n++; return fmt.Sprintf("id-%d", n) },
	)
}

func draftAsset(t *testing.T, e *workflow.Engine) models.Asset {
	t.Helper()
	a, err := e.Create(workflow.CreateInput{
		Name:     "Spring Launch Banner",
		Type:     "image",
		TeamID:   "T1",
		Tags:     []string{"spring", "banner", "spring", " "},
		Metadata: map[string]any{"width": 1200},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a
}

func TestCreate(t *testing.T) {
	e := testEngine()
	a := draftAsset(t, e)

	if a.ID != "id-1" {
		t.Errorf("ID: got %q, want id-1", a.ID)
	}
	if a.Status != models.AssetDraft {
		t.Errorf("Status: got %s, want draft", a.Status)
	}
	if a.Version != 1 {
		t.Errorf("Version: got %d, want 1", a.Version)
	}
	if !reflect.DeepEqual(a.Tags, []string{"spring", "banner"}) {
		t.Errorf("Tags: got %v", a.Tags)
	}
	if a.Review.Status != models.ReviewNone || len(a.Review.Notes) != 0 {
		t.Errorf("Review: got %+v", a.Review)
	}
}

func TestCreate_Validation(t *testing.T) {
	e := testEngine()
	tests := []struct {
		name string
		in   workflow.CreateInput
	}{
		{"missing team", workflow.CreateInput{Name: "x"}},
		{"blank team", workflow.CreateInput{Name: "x", TeamID: "  "}},
		{"missing name", workflow.CreateInput{TeamID: "T1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Create(tt.in); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	e := testEngine()
	a := draftAsset(t, e)

	out, err := e.Submit(a, "<b>ready</b> for review", "u1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Status != models.AssetInReview {
		t.Errorf("Status: got %s, want in_review", out.Status)
	}
	if out.Review.Status != models.ReviewSubmitted {
		t.Errorf("Review.Status: got %s, want submitted", out.Review.Status)
	}
	if len(out.Review.Notes) != 1 || out.Review.Notes[0].Message != "ready for review" || out.Review.Notes[0].ActorID != "u1" {
		t.Errorf("Notes: got %+v", out.Review.Notes)
	}
	if out.Version != a.Version+1 {
		t.Errorf("Version: got %d, want %d", out.Version, a.Version+1)
	}
	if len(a.Review.Notes) != 0 || a.Status != models.AssetDraft {
		t.Error("source asset was modified")
	}
}

func TestSubmit_ResubmitFromInReview(t *testing.T) {
	e := testEngine()
	a, _ := e.Submit(draftAsset(t, e), "first", "u1")

	out, err := e.Submit(a, "second", "u1")
	if err != nil {
		t.Fatalf("re-submit: %v", err)
	}
	if len(out.Review.Notes) != 2 || out.Version != a.Version+1 {
		t.Errorf("re-submit: notes=%d version=%d", len(out.Review.Notes), out.Version)
	}
}

func TestReview_Actions(t *testing.T) {
	tests := []struct {
		action     string
		wantStatus models.AssetStatus
		wantReview models.ReviewStatus
	}{
		{"approve", models.AssetApproved, models.ReviewApproved},
		{"reject", models.AssetRejected, models.ReviewRejected},
		{"request_changes", models.AssetChangesRequested, models.ReviewChangesRequested},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			e := testEngine()
			a, _ := e.Submit(draftAsset(t, e), "", "u1")

			out, err := e.Review(a, tt.action, "feedback", "rev")
			if err != nil {
				t.Fatalf("Review: %v", err)
			}
			if out.Status != tt.wantStatus || out.Review.Status != tt.wantReview {
				t.Errorf("got status=%s review=%s", out.Status, out.Review.Status)
			}
			if out.Version != a.Version+1 {
				t.Errorf("Version: got %d, want %d", out.Version, a.Version+1)
			}
			last := out.Review.Notes[len(out.Review.Notes)-1]
			if last.Message != "feedback" || last.ActorID != "rev" {
				t.Errorf("last note: %+v", last)
			}
		})
	}
}

// Review does not require a prior submit; only archived assets refuse it.
func TestReview_FromDraft(t *testing.T) {
	e := testEngine()
	a := draftAsset(t, e)

	out, err := e.Review(a, "approve", "", "rev")
	if err != nil {
		t.Fatalf("Review from draft: %v", err)
	}
	if out.Status != models.AssetApproved || out.Review.Status != models.ReviewApproved {
		t.Errorf("got status=%s review=%s", out.Status, out.Review.Status)
	}
}

func TestReview_UnknownActionLeavesAssetUnchanged(t *testing.T) {
	e := testEngine()
	a, _ := e.Submit(draftAsset(t, e), "", "u1")
	before := a.Clone()

	out, err := e.Review(a, "publish", "nope", "rev")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
	if !reflect.DeepEqual(out, models.Asset{}) {
		t.Error("expected zero asset on failure")
	}
	if !reflect.DeepEqual(a, before) {
		t.Error("source asset was modified")
	}
}

func TestArchive_IsTerminal(t *testing.T) {
	e := testEngine()
	a := draftAsset(t, e)

	archived, err := e.Archive(a)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if archived.Status != models.AssetArchived || archived.ArchivedAt == nil || !archived.ArchivedAt.Equal(fixedNow) {
		t.Fatalf("Archive: got status=%s archivedAt=%v", archived.Status, archived.ArchivedAt)
	}

	checks := map[string]func() error{
		"submit": func() error { _, err := e.Submit(archived, "", "u1"); return err },
		"review": func() error { _, err := e.Review(archived, "approve", "", "u1"); return err },
		"live":   func() error { _, err := e.SetLiveStatus(archived, "scheduled"); return err },
		"reserve": func() error {
			_, err := e.MarkReserved(archived, "slot")
			return err
		},
		"archive": func() error { _, err := e.Archive(archived); return err },
		"patch": func() error {
			name := "new"
			_, err := e.ApplyPatch(archived, workflow.Patch{Name: &name})
			return err
		},
	}
	for name, op := range checks {
		if err := op(); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("%s on archived: got %v, want conflict", name, err)
		}
	}
}

func TestDuplicate(t *testing.T) {
	e := testEngine()
	a, _ := e.Submit(draftAsset(t, e), "note", "u1")
	a, _ = e.MarkReserved(a, "slot-1")
	before := a.Clone()

	dup := e.Duplicate(a)
	if dup.ID == a.ID {
		t.Error("duplicate reused the source id")
	}
	if dup.Status != models.AssetDraft || dup.Version != 1 {
		t.Errorf("duplicate: status=%s version=%d", dup.Status, dup.Version)
	}
	if len(dup.Review.Notes) != 0 || len(dup.Schedules) != 0 {
		t.Error("duplicate carried review notes or schedules")
	}
	if dup.TeamID != a.TeamID || dup.Name != a.Name+" (copy)" {
		t.Errorf("duplicate: team=%s name=%s", dup.TeamID, dup.Name)
	}
	dup.Metadata["width"] = 1
	dup.Tags[0] = "changed"
	if !reflect.DeepEqual(a, before) {
		t.Error("source asset was modified through the duplicate")
	}
}

func TestSetLiveStatus(t *testing.T) {
	e := testEngine()
	a := draftAsset(t, e)

	if _, err := e.SetLiveStatus(a, "published"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown status: got %v, want validation error", err)
	}
	if _, err := e.SetLiveStatus(a, "live"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("live without slot: got %v, want conflict", err)
	}

	sched, err := e.SetLiveStatus(a, "scheduled")
	if err != nil || sched.Status != models.AssetScheduled {
		t.Fatalf("scheduled: status=%s err=%v", sched.Status, err)
	}

	reserved, _ := e.MarkReserved(a, "slot-1")
	live, err := e.SetLiveStatus(reserved, "live")
	if err != nil {
		t.Fatalf("live with slot: %v", err)
	}
	if live.Status != models.AssetLive || live.Version != reserved.Version+1 {
		t.Errorf("live: status=%s version=%d", live.Status, live.Version)
	}
}

func TestMarkReserved(t *testing.T) {
	e := testEngine()
	a := draftAsset(t, e)

	out, err := e.MarkReserved(a, "slot-1")
	if err != nil {
		t.Fatalf("MarkReserved: %v", err)
	}
	if out.Status != models.AssetScheduled || out.Version != a.Version+1 {
		t.Errorf("got status=%s version=%d", out.Status, out.Version)
	}
	if !reflect.DeepEqual(out.Schedules, []string{"slot-1"}) {
		t.Errorf("Schedules: got %v", out.Schedules)
	}
	if len(a.Schedules) != 0 {
		t.Error("source asset was modified")
	}
}
