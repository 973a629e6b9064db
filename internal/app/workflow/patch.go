package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Patch lists descriptive fields to change. Nil fields are left alone.
// Metadata is merged key by key; a nil value deletes the key. Tags, when
// set, replace the whole set.
type Patch struct {
	Name       *string
	Type       *string
	CampaignID *string
	Metadata   map[string]any
	Tags       *[]string

	// ExpectedVersion, when non-zero, must equal the asset's version.
	ExpectedVersion int64
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.CampaignID == nil && len(p.Metadata) == 0 && p.Tags == nil
}

// ApplyPatch edits descriptive fields. Status is never patchable.
func (e *Engine) ApplyPatch(a models.Asset, p Patch) (models.Asset, error) {
	if p.Empty() {
		return models.Asset{}, apperr.Validation("patch has no fields to update")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return models.Asset{}, apperr.Validation("name cannot be empty")
	}
	if _, err := Next(a.Status, ActionUpdate); err != nil {
		return models.Asset{}, err
	}
	if p.ExpectedVersion != 0 && p.ExpectedVersion != a.Version {
		return models.Asset{}, apperr.Conflicted(
			fmt.Sprintf("asset version is %d, not %d", a.Version, p.ExpectedVersion),
			map[string]string{"current_version": strconv.FormatInt(a.Version, 10)},
		)
	}

	out := a.Clone()
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
		out.NameCI = text.Fold(out.Name)
	}
	if p.Type != nil {
		out.Type = strings.TrimSpace(*p.Type)
	}
	if p.CampaignID != nil {
		out.CampaignID = strings.TrimSpace(*p.CampaignID)
	}
	for k, v := range p.Metadata {
		if v == nil {
			delete(out.Metadata, k)
			continue
		}
		if out.Metadata == nil {
			out.Metadata = map[string]any{}
		}
		out.Metadata[k] = v
	}
	if p.Tags != nil {
		out.Tags = NormalizeTags(*p.Tags)
	}
	commit(&out, e.now())
	return out, nil
}

// NormalizeTags trims tags, drops empties, and removes duplicates keeping
// the first occurrence. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
