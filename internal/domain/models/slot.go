// internal/domain/models/slot.go
package models

import "time"

// SlotStatus is the state of a reservation slot. Only "scheduled" exists
// today; slots are never mutated once created.
type SlotStatus string

const SlotScheduled SlotStatus = "scheduled"

// ReservationSlot is a committed, half-open time interval [Start, End)
// reserved for exactly one asset.
type ReservationSlot struct {
	ID         string     `bson:"_id" json:"id"`
	AssetID    string     `bson:"asset_id" json:"asset_id"`
	TeamID     string     `bson:"team_id" json:"team_id"`
	Start      time.Time  `bson:"start" json:"start"`
	End        time.Time  `bson:"end" json:"end"`
	Status     SlotStatus `bson:"status" json:"status"`
	ReservedBy string     `bson:"reserved_by" json:"reserved_by"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
}

// Overlaps reports whether [start, end) strictly overlaps the slot.
// Touching endpoints do not overlap.
func (s ReservationSlot) Overlaps(start, end time.Time) bool {
	return start.Before(s.End) && s.Start.Before(end)
}

// Conflict describes one existing slot that overlaps a requested interval.
type Conflict struct {
	AssetID   string     `json:"asset_id"`
	AssetName string     `json:"asset_name"`
	SlotID    string     `json:"slot_id"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Status    SlotStatus `json:"status"`
}
