package workflow_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/app/workflow"
)

func TestApplyPatch(t *testing.T) {
	e := testEngine()
	a := draftAsset(t, e)

	name := "  Summer Banner "
	tags := []string{"summer", "summer", "hero"}
	out, err := e.ApplyPatch(a, workflow.Patch{
		Name:     &name,
		Tags:     &tags,
		Metadata: map[string]any{"width": nil, "height": 630},
	})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if out.Name != "Summer Banner" {
		t.Errorf("Name: got %q", out.Name)
	}
	if !reflect.DeepEqual(out.Tags, []string{"summer", "hero"}) {
		t.Errorf("Tags: got %v", out.Tags)
	}
	if _, ok := out.Metadata["width"]; ok {
		t.Error("expected width to be deleted")
	}
	if out.Metadata["height"] != 630 {
		t.Errorf("height: got %v", out.Metadata["height"])
	}
	if out.Status != a.Status || out.Version != a.Version+1 {
		t.Errorf("status=%s version=%d", out.Status, out.Version)
	}
	if a.Metadata["width"] != 1200 {
		t.Error("source metadata was modified")
	}
}

func TestApplyPatch_Errors(t *testing.T) {
	e := testEngine()
	a := draftAsset(t, e)
	blank := "  "
	name := "ok"

	tests := []struct {
		name  string
		patch workflow.Patch
		want  error
	}{
		{"empty patch", workflow.Patch{}, apperr.ErrValidation},
		{"blank name", workflow.Patch{Name: &blank}, apperr.ErrValidation},
		{"stale version", workflow.Patch{Name: &name, ExpectedVersion: a.Version + 5}, apperr.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.ApplyPatch(a, tt.patch); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := workflow.NormalizeTags([]string{" a", "b", "a", "", "c "})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("got %v", got)
	}
	if got := workflow.NormalizeTags(nil); got == nil || len(got) != 0 {
		t.Errorf("nil input: got %#v, want empty non-nil slice", got)
	}
}
