// internal/domain/models/team.go
package models

import "time"

// Team is the authorization and scheduling scope for assets.
// The owner is recorded on the team, not as a membership role.
type Team struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Membership statuses. Only active memberships grant access.
const (
	MembershipPending = "pending" // invite sent, not accepted
	MembershipActive  = "active"
	MembershipRevoked = "revoked"
)

// Team roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// TeamMembership links a user to a team with a role.
// Exactly one document per (team_id, user_id).
type TeamMembership struct {
	ID        string    `bson:"_id" json:"id"`
	TeamID    string    `bson:"team_id" json:"team_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Role      string    `bson:"role" json:"role"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TeamAccess is the directory's answer to "how does this actor relate
// to this team". A nil *TeamAccess means no relationship at all.
type TeamAccess struct {
	IsOwner          bool
	MembershipStatus string
	Role             string
}
