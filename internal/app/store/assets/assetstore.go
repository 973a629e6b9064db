// internal/app/store/assets/assetstore.go
package assetstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assets")}
}

// Insert stores a new asset, setting NameCI.
func (s *Store) Insert(ctx context.Context, a models.Asset) error {
	a.NameCI = text.Fold(a.Name)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Schedules == nil {
		a.Schedules = []string{}
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return apperr.Conflicted("asset already exists", map[string]string{"asset_id": a.ID})
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// Save replaces the asset document if the stored version equals
// expectedVersion. A missing document is not found; a version mismatch is
// a conflict.
func (s *Store) Save(ctx context.Context, a models.Asset, expectedVersion int64) error {
	a.NameCI = text.Fold(a.Name)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Schedules == nil {
		a.Schedules = []string{}
	}
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": a.ID, "version": expectedVersion}, a)
	if err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Distinguish a stale version from a missing asset.
	var cur struct {
		Version int64 `bson:"version"`
	}
	err = s.c.FindOne(ctx, bson.M{"_id": a.ID}, options.FindOne().SetProjection(bson.M{"version": 1})).Decode(&cur)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("asset not found")
	}
	if err != nil {
		return fmt.Errorf("load asset version: %w", err)
	}
	return apperr.Conflicted("asset was modified concurrently", map[string]string{
		"asset_id":         a.ID,
		"expected_version": strconv.FormatInt(expectedVersion, 10),
		"current_version":  strconv.FormatInt(cur.Version, 10),
	})
}

// Get returns an asset by its ID.
func (s *Store) Get(ctx context.Context, id string) (models.Asset, error) {
	var a models.Asset
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Asset{}, apperr.NotFound("asset not found")
	}
	if err != nil {
		return models.Asset{}, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// List returns the team's assets matching f, most recently updated first.
func (s *Store) List(ctx context.Context, f models.AssetFilter) ([]models.Asset, error) {
	query := bson.M{"team_id": f.TeamID}
	switch {
	case f.Status != "":
		query["status"] = f.Status
	case !f.IncludeArchived:
		query["status"] = bson.M{"$ne": models.AssetArchived}
	}
	if f.CampaignID != "" {
		query["campaign_id"] = f.CampaignID
	}
	if f.Tag != "" {
		query["tags"] = f.Tag
	}
	if q := text.Fold(strings.TrimSpace(f.Search)); q != "" {
		query["name_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q)}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: 1},
	})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Asset
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	return out, nil
}
