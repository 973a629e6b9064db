// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SeedTeamID == "" {
		return nil
	}
	return ensureSeedTeam(ctx, deps.Stores.Teams, appCfg, logger)
}

// ensureSeedTeam creates the configured team if it does not exist yet. An
// existing team with the same id is left untouched.
func ensureSeedTeam(ctx context.Context, teams TeamWriter, appCfg AppConfig, logger *zap.Logger) error {
	name := appCfg.SeedTeamName
	if name == "" {
		name = appCfg.SeedTeamID
	}
	_, err := teams.CreateTeam(ctx, models.Team{
		ID:      appCfg.SeedTeamID,
		Name:    name,
		OwnerID: appCfg.SeedTeamOwner,
	})
	switch {
	case err == nil:
		logger.Info("created seed team",
			zap.String("team_id", appCfg.SeedTeamID),
			zap.String("owner_id", appCfg.SeedTeamOwner))
		return nil
	case errors.Is(err, apperr.ErrConflict):
		logger.Debug("seed team already exists", zap.String("team_id", appCfg.SeedTeamID))
		return nil
	default:
		return fmt.Errorf("seed team: %w", err)
	}
}
