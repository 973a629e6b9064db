// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/assetflow/internal/app/assets"
	"github.com/dalemusser/assetflow/internal/app/policy/teampolicy"
	"github.com/dalemusser/assetflow/internal/app/schedule"
	assetstore "github.com/dalemusser/assetflow/internal/app/store/assets"
	"github.com/dalemusser/assetflow/internal/app/store/audit"
	memstore "github.com/dalemusser/assetflow/internal/app/store/memory"
	slotstore "github.com/dalemusser/assetflow/internal/app/store/slots"
	teamstore "github.com/dalemusser/assetflow/internal/app/store/teams"
	"github.com/dalemusser/assetflow/internal/app/system/auditlog"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. The Mongo fields
// are nil with the memory backend.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Stores Stores
}

// TeamWriter creates teams and memberships.
type TeamWriter interface {
	CreateTeam(ctx context.Context, t models.Team) (models.Team, error)
	UpsertMembership(ctx context.Context, m models.TeamMembership) error
}

// Stores are the repositories behind the asset service.
type Stores struct {
	Assets    assets.AssetRepository
	Slots     schedule.SlotRepository
	Directory teampolicy.Directory
	Teams     TeamWriter
	Audit     AuditStore
}

// AuditStore persists audit events and reads an asset's trail back.
type AuditStore interface {
	auditlog.Sink
	assets.AuditReader
}

func mongoStores(db *mongo.Database) Stores {
	teams := teamstore.New(db)
	return Stores{
		Assets:    assetstore.New(db),
		Slots:     slotstore.New(db),
		Directory: teams,
		Teams:     teams,
		Audit:     audit.New(db),
	}
}

func memoryStores() Stores {
	dir := memstore.NewDirectory()
	return Stores{
		Assets:    memstore.NewAssetStore(),
		Slots:     memstore.NewSlotStore(),
		Directory: dir,
		Teams:     dir,
		Audit:     memstore.NewAuditLog(),
	}
}
