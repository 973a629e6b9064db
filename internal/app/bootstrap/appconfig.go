// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown should live here.
type AppConfig struct {
	// Storage backend: "mongo" or "memory"
	StorageBackend string

	// MongoDB connection configuration (only used if StorageBackend is "mongo")
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAssets string
	AuditLogAccess string

	// Gap between a conflicting interval's end and the suggested start
	SuggestionGap time.Duration

	// Per-actor request limit on the asset API; 0 disables limiting
	RateLimitPerMinute int
	RateLimitBurst     int

	// Team created on startup when SeedTeamID is set. Useful with the
	// memory backend, which starts empty.
	SeedTeamID    string
	SeedTeamName  string
	SeedTeamOwner string
}

// Storage backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)
