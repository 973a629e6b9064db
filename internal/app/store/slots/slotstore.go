// internal/app/store/slots/slotstore.go
package slotstore

import (
	"context"
	"fmt"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reservation_slots")}
}

// Insert stores a new slot.
func (s *Store) Insert(ctx context.Context, slot models.ReservationSlot) error {
	if _, err := s.c.InsertOne(ctx, slot); err != nil {
		if wafflemongo.IsDup(err) {
			return apperr.Conflicted("slot already exists", map[string]string{"slot_id": slot.ID})
		}
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

// Delete removes a slot by ID. Deleting a missing slot is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// ListByAssets returns the slots owned by any of assetIDs, ordered by
// asset then creation time.
func (s *Store) ListByAssets(ctx context.Context, assetIDs []string) ([]models.ReservationSlot, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "asset_id", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"asset_id": bson.M{"$in": assetIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.ReservationSlot
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode slots: %w", err)
	}
	return out, nil
}
