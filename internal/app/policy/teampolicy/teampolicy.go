// Package teampolicy decides whether an actor may act on a team.
//
// Decide is a pure function over the directory's answer; Check resolves
// that answer from a Directory and turns a denial into an authorization
// error. Use cases call Check once, before loading or mutating anything.
package teampolicy

import (
	"context"
	"strings"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
)

// Wildcard in an allowed-role set grants any active member.
const Wildcard = "*"

// Role sets used by the asset use cases. An empty set means "any active
// member" and is used for reads.
var (
	ReadRoles   []string
	EditRoles   = []string{models.RoleAdmin, models.RoleEditor}
	ReviewRoles = []string{models.RoleAdmin}
)

// Directory is the external team/role directory. It returns nil, nil when
// the actor has no relationship with the team.
type Directory interface {
	GetTeamAccess(ctx context.Context, teamID, actorID string) (*models.TeamAccess, error)
}

// Decision is the outcome of an access check.
type Decision struct {
	Granted bool
	Reason  string

	// Diagnostics for denials.
	RequiredRoles []string
	CurrentRole   string
}

// Denial reasons.
const (
	ReasonNotMember      = "not_a_member"
	ReasonInactive       = "membership_not_active"
	ReasonRoleNotAllowed = "role_not_allowed"
)

// Decide applies the access rules to a directory answer:
//   - owners are granted regardless of allowedRoles
//   - otherwise the membership must be active
//   - an empty allowedRoles or one containing Wildcard grants any active member
//   - otherwise the stored role must be in allowedRoles
func Decide(access *models.TeamAccess, allowedRoles []string) Decision {
	if access == nil {
		return Decision{Reason: ReasonNotMember, RequiredRoles: allowedRoles}
	}
	if access.IsOwner {
		return Decision{Granted: true}
	}
	if access.MembershipStatus != models.MembershipActive {
		return Decision{Reason: ReasonInactive, RequiredRoles: allowedRoles, CurrentRole: access.Role}
	}
	if len(allowedRoles) == 0 {
		return Decision{Granted: true}
	}
	for _, r := range allowedRoles {
		if r == Wildcard || r == access.Role {
			return Decision{Granted: true}
		}
	}
	return Decision{Reason: ReasonRoleNotAllowed, RequiredRoles: allowedRoles, CurrentRole: access.Role}
}

// Check resolves the actor's relationship to teamID and applies Decide.
// Directory failures are returned as-is; denials become authorization
// errors carrying the required roles and the actor's current role.
func Check(ctx context.Context, dir Directory, actorID, teamID string, allowedRoles []string) error {
	if strings.TrimSpace(actorID) == "" {
		return apperr.Authorization("actor is required", map[string]string{"reason": ReasonNotMember})
	}
	access, err := dir.GetTeamAccess(ctx, teamID, actorID)
	if err != nil {
		return err
	}
	d := Decide(access, allowedRoles)
	if d.Granted {
		return nil
	}
	return apperr.Authorization(denialMessage(d), map[string]string{
		"reason":         d.Reason,
		"team_id":        teamID,
		"required_roles": strings.Join(d.RequiredRoles, ","),
		"current_role":   d.CurrentRole,
	})
}

func denialMessage(d Decision) string {
	switch d.Reason {
	case ReasonNotMember:
		return "actor is not a member of this team"
	case ReasonInactive:
		return "team membership is not active"
	default:
		return "role " + d.CurrentRole + " is not allowed; requires one of: " + strings.Join(d.RequiredRoles, ", ")
	}
}
