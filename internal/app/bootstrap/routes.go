// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/assetflow/internal/app/assets"
	assetsfeature "github.com/dalemusser/assetflow/internal/app/features/assets"
	healthfeature "github.com/dalemusser/assetflow/internal/app/features/health"
	"github.com/dalemusser/assetflow/internal/app/system/auditlog"
	"github.com/dalemusser/assetflow/internal/app/system/metrics"
	"github.com/dalemusser/assetflow/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the asset service over the
// selected stores and mounts:
//   - /health   liveness and database ping
//   - /metrics  Prometheus counters
//   - /teams    team-scoped asset listing, creation and availability
//   - /assets   per-asset reads, edits, workflow and scheduling
//
// The asset routes share a per-actor rate limit when one is configured.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	auditLog := auditlog.New(deps.Stores.Audit, logger, auditlog.Config{
		Assets: appCfg.AuditLogAssets,
		Access: appCfg.AuditLogAccess,
	})

	svc := assets.New(assets.Deps{
		Assets:        deps.Stores.Assets,
		Slots:         deps.Stores.Slots,
		Directory:     deps.Stores.Directory,
		Audit:         auditLog,
		AuditEvents:   deps.Stores.Audit,
		Log:           logger,
		SuggestionGap: appCfg.SuggestionGap,
	})

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler())

	assetsHandler := assetsfeature.NewHandler(svc, logger)
	r.Group(func(r chi.Router) {
		if appCfg.RateLimitPerMinute > 0 {
			limiter := ratelimit.New(appCfg.RateLimitPerMinute, appCfg.RateLimitBurst, logger)
			limiter.KeyFunc = ratelimit.HeaderOrIP(assetsfeature.ActorHeader)
			r.Use(limiter.Middleware)
		}
		r.Mount("/teams", assetsfeature.TeamRoutes(assetsHandler))
		r.Mount("/assets", assetsfeature.AssetRoutes(assetsHandler))
	})

	return r, nil
}
