// Package assets is the use-case layer for content assets. Every operation
// takes the acting user's id, resolves the asset, checks team access, and
// then delegates to the workflow engine or the schedule store.
package assets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/assetflow/internal/app/availability"
	"github.com/dalemusser/assetflow/internal/app/policy/teampolicy"
	"github.com/dalemusser/assetflow/internal/app/schedule"
	"github.com/dalemusser/assetflow/internal/app/store/audit"
	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/app/system/auditlog"
	"github.com/dalemusser/assetflow/internal/app/system/metrics"
	"github.com/dalemusser/assetflow/internal/app/workflow"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"go.uber.org/zap"
)

// List limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// AssetRepository persists assets. Save must fail with a conflict error
// when the stored version differs from expectedVersion.
type AssetRepository interface {
	Get(ctx context.Context, id string) (models.Asset, error)
	List(ctx context.Context, f models.AssetFilter) ([]models.Asset, error)
	Insert(ctx context.Context, a models.Asset) error
	Save(ctx context.Context, a models.Asset, expectedVersion int64) error
}

// AuditReader reads back an asset's audit trail, newest first.
// *audit.Store satisfies it.
type AuditReader interface {
	GetByAsset(ctx context.Context, assetID string, limit int64) ([]audit.Event, error)
}

// Deps wires a Service. Assets, Slots and Directory are required.
type Deps struct {
	Assets    AssetRepository
	Slots     schedule.SlotRepository
	Directory teampolicy.Directory
	Audit     *auditlog.Logger
	// AuditEvents serves ListAuditEvents; nil yields an empty trail.
	AuditEvents AuditReader
	Log         *zap.Logger

	// SuggestionGap is the gap before a suggested interval; 0 uses the default.
	SuggestionGap time.Duration

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// Service exposes the asset use cases.
type Service struct {
	assets    AssetRepository
	directory teampolicy.Directory
	workflow  *workflow.Engine
	schedule  *schedule.Store
	suggester *availability.Suggester
	audit     *auditlog.Logger
	events    AuditReader
	log       *zap.Logger
}

// New builds a Service from its dependencies.
func New(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	wf := workflow.New(d.Now, d.NewID)
	st := schedule.New(d.Assets, d.Slots, wf)
	st.Now = d.Now
	st.NewID = d.NewID
	return &Service{
		assets:    d.Assets,
		directory: d.Directory,
		workflow:  wf,
		schedule:  st,
		suggester: availability.New(st, d.SuggestionGap),
		audit:     d.Audit,
		events:    d.AuditEvents,
		log:       log,
	}
}

// authorize runs the access gate for op and records denials.
func (s *Service) authorize(ctx context.Context, op, actorID, teamID, assetID string, roles []string) error {
	err := teampolicy.Check(ctx, s.directory, actorID, teamID, roles)
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind == apperr.KindAuthorization {
		metrics.RecordAccessDenied()
		s.audit.AccessDenied(ctx, actorID, teamID, assetID, op, ae.Metadata["reason"])
		s.log.Warn("access denied",
			zap.String("operation", op),
			zap.String("team_id", teamID),
			zap.String("asset_id", assetID),
			zap.String("actor_id", actorID),
			zap.String("reason", ae.Metadata["reason"]),
		)
	}
	return err
}

// loadAuthorized fetches an asset and checks the actor's access to its team.
func (s *Service) loadAuthorized(ctx context.Context, op, actorID, id string, roles []string) (models.Asset, error) {
	if strings.TrimSpace(id) == "" {
		return models.Asset{}, apperr.Validation("asset id is required")
	}
	a, err := s.assets.Get(ctx, id)
	if err != nil {
		return models.Asset{}, err
	}
	if err := s.authorize(ctx, op, actorID, a.TeamID, a.ID, roles); err != nil {
		return models.Asset{}, err
	}
	return a, nil
}

// outcome labels a metric with "ok" or the error kind.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k := apperr.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}

func (s *Service) logMutation(msg, actorID string, a models.Asset, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("asset_id", a.ID),
		zap.String("team_id", a.TeamID),
		zap.String("actor_id", actorID),
		zap.String("status", string(a.Status)),
		zap.Int64("version", a.Version),
	}, extra...)
	s.log.Info(msg, fields...)
}
