package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateTeam creates a team owned by ownerID.
func (f *Fixtures) CreateTeam(ctx context.Context, name, ownerID string) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// AddMember creates an active membership with the given role.
func (f *Fixtures) AddMember(ctx context.Context, teamID, userID, role string) models.TeamMembership {
	f.t.Helper()
	return f.addMembership(ctx, teamID, userID, role, models.MembershipActive)
}

// AddPendingMember creates a membership that has not been accepted yet.
func (f *Fixtures) AddPendingMember(ctx context.Context, teamID, userID, role string) models.TeamMembership {
	f.t.Helper()
	return f.addMembership(ctx, teamID, userID, role, models.MembershipPending)
}

func (f *Fixtures) addMembership(ctx context.Context, teamID, userID, role, status string) models.TeamMembership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.TeamMembership{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("team_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateAsset creates an asset in the given status at version 1.
func (f *Fixtures) CreateAsset(ctx context.Context, teamID, name string, status models.AssetStatus) models.Asset {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	a := models.Asset{
		ID:        uuid.NewString(),
		Name:      name,
		NameCI:    text.Fold(name),
		Type:      "image",
		TeamID:    teamID,
		Status:    status,
		Tags:      []string{},
		Review:    models.Review{Status: models.ReviewNone, Notes: []models.ReviewNote{}},
		Schedules: []string{},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	if _, err := f.db.Collection("assets").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test asset: %v", err)
	}
	return a
}
