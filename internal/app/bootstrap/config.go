// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/assetflow/internal/app/availability"
	"github.com/dalemusser/assetflow/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for assetflow.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, storage_backend, etc.
//   - Environment variables: ASSETFLOW_MONGO_URI, ASSETFLOW_STORAGE_BACKEND, etc.
//   - Command-line flags: --mongo_uri, --storage_backend, etc.
var appConfigKeys = []config.AppKey{
	{Name: "storage_backend", Default: BackendMongo, Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "assetflow", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Audit logging settings
	{Name: "audit_log_assets", Default: "all", Desc: "Asset and schedule event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_access", Default: "all", Desc: "Access denial logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Scheduling
	{Name: "suggestion_gap", Default: "30m", Desc: "Gap after a conflicting interval before the suggested start (e.g., 30m, 1h)"},

	// Rate limiting
	{Name: "rate_limit_per_minute", Default: 600, Desc: "Asset API requests per minute per actor (0 disables)"},
	{Name: "rate_limit_burst", Default: 60, Desc: "Asset API burst size per actor"},

	// Seed team
	{Name: "seed_team_id", Default: "", Desc: "ID of a team to create on startup (blank disables seeding)"},
	{Name: "seed_team_name", Default: "Default", Desc: "Name of the seed team"},
	{Name: "seed_team_owner", Default: "", Desc: "Actor ID that owns the seed team"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ASSETFLOW_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
//
// Request timeouts are overridden from TIMEOUT_* variables here as well.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ASSETFLOW", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StorageBackend:   strings.ToLower(strings.TrimSpace(appValues.String("storage_backend"))),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Audit logging
		AuditLogAssets: appValues.String("audit_log_assets"),
		AuditLogAccess: appValues.String("audit_log_access"),

		// Scheduling
		SuggestionGap: appValues.Duration("suggestion_gap", availability.DefaultGap),

		// Rate limiting
		RateLimitPerMinute: appValues.Int("rate_limit_per_minute"),
		RateLimitBurst:     appValues.Int("rate_limit_burst"),

		// Seed team
		SeedTeamID:    appValues.String("seed_team_id"),
		SeedTeamName:  appValues.String("seed_team_name"),
		SeedTeamOwner: appValues.String("seed_team_owner"),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("request timeouts overridden from environment",
			zap.Int("overrides", n),
			zap.Duration("short", timeouts.Short()),
			zap.Duration("medium", timeouts.Medium()),
			zap.Duration("long", timeouts.Long()))
	}

	return coreCfg, appCfg, nil
}

var auditModes = map[string]bool{"": true, "all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is only checked when the mongo backend is selected.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StorageBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if strings.TrimSpace(appCfg.MongoDatabase) == "" {
			return fmt.Errorf("mongo_database is required with the mongo backend")
		}
	case BackendMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
	default:
		return fmt.Errorf("unknown storage_backend %q (want %q or %q)", appCfg.StorageBackend, BackendMongo, BackendMemory)
	}

	if !auditModes[appCfg.AuditLogAssets] {
		return fmt.Errorf("audit_log_assets must be all, db, log or off; got %q", appCfg.AuditLogAssets)
	}
	if !auditModes[appCfg.AuditLogAccess] {
		return fmt.Errorf("audit_log_access must be all, db, log or off; got %q", appCfg.AuditLogAccess)
	}
	if appCfg.SuggestionGap < 0 {
		return fmt.Errorf("suggestion_gap must not be negative")
	}
	if appCfg.RateLimitPerMinute < 0 || appCfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate_limit_per_minute and rate_limit_burst must not be negative")
	}
	if appCfg.SeedTeamID != "" && strings.TrimSpace(appCfg.SeedTeamOwner) == "" {
		return fmt.Errorf("seed_team_id requires seed_team_owner")
	}

	return nil
}
