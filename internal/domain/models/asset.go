// internal/domain/models/asset.go
package models

import (
	"time"
)

// AssetStatus is the lifecycle state of an asset. The set is closed;
// IsValid reports whether a value belongs to it.
type AssetStatus string

const (
	AssetDraft            AssetStatus = "draft"
	AssetInReview         AssetStatus = "in_review"
	AssetApproved         AssetStatus = "approved"
	AssetRejected         AssetStatus = "rejected"
	AssetChangesRequested AssetStatus = "changes_requested"
	AssetScheduled        AssetStatus = "scheduled"
	AssetLive             AssetStatus = "live"
	AssetArchived         AssetStatus = "archived"
)

// AllAssetStatuses lists every status in lifecycle order.
var AllAssetStatuses = []AssetStatus{
	AssetDraft,
	AssetInReview,
	AssetApproved,
	AssetRejected,
	AssetChangesRequested,
	AssetScheduled,
	AssetLive,
	AssetArchived,
}

// IsValid reports whether s is one of the defined asset statuses.
func (s AssetStatus) IsValid() bool {
	for _, v := range AllAssetStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ReviewStatus tracks where an asset is in its review round.
type ReviewStatus string

const (
	ReviewNone             ReviewStatus = "none"
	ReviewSubmitted        ReviewStatus = "submitted"
	ReviewApproved         ReviewStatus = "approved"
	ReviewRejected         ReviewStatus = "rejected"
	ReviewChangesRequested ReviewStatus = "changes_requested"
)

// ReviewNote is one entry in an asset's review history.
type ReviewNote struct {
	Message string    `bson:"message" json:"message"`
	ActorID string    `bson:"actor_id" json:"actor_id"`
	At      time.Time `bson:"at" json:"at"`
}

// Review holds the review round state and its notes in append order.
type Review struct {
	Status ReviewStatus `bson:"status" json:"status"`
	Notes  []ReviewNote `bson:"notes" json:"notes"`
}

// Asset is one piece of creative content owned by a team.
//
// NOTE:
//   - Schedules holds slot IDs only; the slots themselves live in the
//     reservation_slots collection keyed by asset_id.
//   - Version increases by exactly one on every accepted mutation and is
//     the optimistic-concurrency marker for Save.
type Asset struct {
	ID         string `bson:"_id" json:"id"`
	Name       string `bson:"name" json:"name"`
	NameCI     string `bson:"name_ci" json:"-"`
	Type       string `bson:"type" json:"type"`
	TeamID     string `bson:"team_id" json:"team_id"`
	CampaignID string `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`

	Status AssetStatus `bson:"status" json:"status"`

	Metadata map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Tags     []string       `bson:"tags" json:"tags"`

	Review    Review   `bson:"review" json:"review"`
	Schedules []string `bson:"schedules" json:"schedules"`

	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
	ArchivedAt *time.Time `bson:"archived_at,omitempty" json:"archived_at,omitempty"`

	Version int64 `bson:"version" json:"version"`
}

// IsArchived reports whether the asset has reached its terminal state.
func (a Asset) IsArchived() bool {
	return a.Status == AssetArchived
}

// Clone returns a deep copy so callers can mutate without touching a
// stored or shared value.
func (a Asset) Clone() Asset {
	out := a
	if a.Metadata != nil {
		out.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			out.Metadata[k] = v
		}
	}
	out.Tags = cloneSlice(a.Tags)
	out.Review.Notes = cloneSlice(a.Review.Notes)
	out.Schedules = cloneSlice(a.Schedules)
	if a.ArchivedAt != nil {
		t := *a.ArchivedAt
		out.ArchivedAt = &t
	}
	return out
}

// cloneSlice copies s, keeping nil and empty distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// AssetFilter narrows an asset listing. TeamID is required by callers;
// Limit <= 0 means no limit.
type AssetFilter struct {
	TeamID          string
	Status          AssetStatus
	CampaignID      string
	Tag             string
	Search          string // case- and diacritic-insensitive name prefix
	IncludeArchived bool
	Limit           int
}
