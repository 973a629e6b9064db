// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads and writes teams and team memberships. It is the directory
// consulted by access checks.
type Store struct {
	teams       *mongo.Collection
	memberships *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		teams:       db.Collection("teams"),
		memberships: db.Collection("team_memberships"),
	}
}

// CreateTeam inserts a team, assigning an ID and timestamps when unset.
func (s *Store) CreateTeam(ctx context.Context, t models.Team) (models.Team, error) {
	if strings.TrimSpace(t.Name) == "" {
		return models.Team{}, apperr.Validation("team name is required")
	}
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.teams.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, apperr.Conflicted("team already exists", map[string]string{"team_id": t.ID})
		}
		return models.Team{}, fmt.Errorf("insert team: %w", err)
	}
	return t, nil
}

// GetTeam returns a team by ID.
func (s *Store) GetTeam(ctx context.Context, id string) (models.Team, error) {
	var t models.Team
	err := s.teams.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Team{}, apperr.NotFound("team not found")
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

// UpsertMembership creates or updates the membership for (TeamID, UserID).
func (s *Store) UpsertMembership(ctx context.Context, m models.TeamMembership) error {
	now := time.Now().UTC()
	filter := bson.M{"team_id": m.TeamID, "user_id": m.UserID}
	update := bson.M{
		"$set": bson.M{
			"role":       m.Role,
			"status":     m.Status,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}
	_, err := s.memberships.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

// GetTeamAccess reports how actorID relates to teamID, or nil when the
// actor is neither owner nor member.
func (s *Store) GetTeamAccess(ctx context.Context, teamID, actorID string) (*models.TeamAccess, error) {
	var access models.TeamAccess
	found := false

	var team struct {
		OwnerID string `bson:"owner_id"`
	}
	err := s.teams.FindOne(ctx, bson.M{"_id": teamID},
		options.FindOne().SetProjection(bson.M{"owner_id": 1})).Decode(&team)
	switch {
	case err == nil:
		if team.OwnerID != "" && team.OwnerID == actorID {
			access.IsOwner = true
			found = true
		}
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("load team: %w", err)
	}

	var m models.TeamMembership
	err = s.memberships.FindOne(ctx, bson.M{"team_id": teamID, "user_id": actorID}).Decode(&m)
	switch {
	case err == nil:
		access.MembershipStatus = m.Status
		access.Role = m.Role
		found = true
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("load membership: %w", err)
	}

	if !found {
		return nil, nil
	}
	return &access, nil
}
