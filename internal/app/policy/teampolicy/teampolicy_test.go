package teampolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/assetflow/internal/app/policy/teampolicy"
	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
)

func TestDecide(t *testing.T) {
	active := func(role string) *models.TeamAccess {
		return &models.TeamAccess{MembershipStatus: models.MembershipActive, Role: role}
	}
	tests := []struct {
		name    string
		access  *models.TeamAccess
		allowed []string
		want    bool
		reason  string
	}{
		{"no relationship", nil, nil, false, teampolicy.ReasonNotMember},
		{"owner with no membership", &models.TeamAccess{IsOwner: true}, []string{"admin"}, true, ""},
		{"owner with pending membership", &models.TeamAccess{IsOwner: true, MembershipStatus: models.MembershipPending}, []string{"admin"}, true, ""},
		{"active any role, empty set", active("viewer"), nil, true, ""},
		{"active any role, wildcard", active("viewer"), []string{"admin", teampolicy.Wildcard}, true, ""},
		{"active matching role", active("editor"), []string{"admin", "editor"}, true, ""},
		{"active role mismatch", active("viewer"), []string{"admin", "editor"}, false, teampolicy.ReasonRoleNotAllowed},
		{"pending with matching role", &models.TeamAccess{MembershipStatus: models.MembershipPending, Role: "admin"}, []string{"admin"}, false, teampolicy.ReasonInactive},
		{"revoked with empty set", &models.TeamAccess{MembershipStatus: models.MembershipRevoked, Role: "admin"}, nil, false, teampolicy.ReasonInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := teampolicy.Decide(tt.access, tt.allowed)
			if d.Granted != tt.want {
				t.Errorf("Granted: got %v, want %v", d.Granted, tt.want)
			}
			if d.Reason != tt.reason {
				t.Errorf("Reason: got %q, want %q", d.Reason, tt.reason)
			}
		})
	}
}

func TestDecide_DenialCarriesDiagnostics(t *testing.T) {
	d := teampolicy.Decide(&models.TeamAccess{MembershipStatus: models.MembershipActive, Role: "viewer"}, []string{"admin"})
	if d.CurrentRole != "viewer" || len(d.RequiredRoles) != 1 || d.RequiredRoles[0] != "admin" {
		t.Errorf("diagnostics: got %+v", d)
	}
}

type stubDirectory struct {
	access *models.TeamAccess
	err    error
	calls  int
}

func (s *stubDirectory) GetTeamAccess(ctx context.Context, teamID, actorID string) (*models.TeamAccess, error) {
	s.calls++
	return s.access, s.err
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	dir := &stubDirectory{access: &models.TeamAccess{MembershipStatus: models.MembershipActive, Role: "editor"}}
	if err := teampolicy.Check(ctx, dir, "u1", "T1", teampolicy.EditRoles); err != nil {
		t.Errorf("editor on edit roles: %v", err)
	}

	err := teampolicy.Check(ctx, dir, "u1", "T1", teampolicy.ReviewRoles)
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("editor on review roles: got %v, want authorization error", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Metadata["current_role"] != "editor" || ae.Metadata["required_roles"] != "admin" {
		t.Errorf("metadata: got %+v", ae)
	}
}

func TestCheck_EmptyActor(t *testing.T) {
	dir := &stubDirectory{access: &models.TeamAccess{IsOwner: true}}
	err := teampolicy.Check(context.Background(), dir, "", "T1", nil)
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Errorf("got %v, want authorization error", err)
	}
	if dir.calls != 0 {
		t.Error("directory should not be consulted without an actor")
	}
}

func TestCheck_DirectoryErrorPropagates(t *testing.T) {
	boom := errors.New("directory unavailable")
	err := teampolicy.Check(context.Background(), &stubDirectory{err: boom}, "u1", "T1", nil)
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want directory error", err)
	}
}
