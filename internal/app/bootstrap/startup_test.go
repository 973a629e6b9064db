package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/assetflow/internal/domain/models"
	"github.com/dalemusser/assetflow/internal/testutil"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func memoryConfig() AppConfig {
	return AppConfig{
		StorageBackend:     BackendMemory,
		AuditLogAssets:     "log",
		AuditLogAccess:     "log",
		SuggestionGap:      30 * time.Minute,
		RateLimitPerMinute: 600,
		RateLimitBurst:     60,
		SeedTeamID:         "T1",
		SeedTeamName:       "Brand",
		SeedTeamOwner:      "owner",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"memory ok", func(*AppConfig) {}, false},
		{"mongo ok", func(c *AppConfig) {
			c.StorageBackend = BackendMongo
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = "assetflow"
		}, false},
		{"mongo bad uri", func(c *AppConfig) {
			c.StorageBackend = BackendMongo
			c.MongoURI = ""
			c.MongoDatabase = "assetflow"
		}, true},
		{"mongo missing database", func(c *AppConfig) {
			c.StorageBackend = BackendMongo
			c.MongoURI = "mongodb://localhost:27017"
		}, true},
		{"unknown backend", func(c *AppConfig) { c.StorageBackend = "redis" }, true},
		{"bad audit mode", func(c *AppConfig) { c.AuditLogAssets = "verbose" }, true},
		{"bad access audit mode", func(c *AppConfig) { c.AuditLogAccess = "sometimes" }, true},
		{"negative gap", func(c *AppConfig) { c.SuggestionGap = -time.Minute }, true},
		{"negative rate limit", func(c *AppConfig) { c.RateLimitPerMinute = -1 }, true},
		{"seed without owner", func(c *AppConfig) { c.SeedTeamOwner = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig: err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureSeedTeam_Idempotent(t *testing.T) {
	ctx := context.Background()
	stores := memoryStores()
	cfg := memoryConfig()

	for i := 0; i < 2; i++ {
		if err := ensureSeedTeam(ctx, stores.Teams, cfg, testLogger()); err != nil {
			t.Fatalf("ensureSeedTeam (run %d): %v", i+1, err)
		}
	}

	access, err := stores.Directory.GetTeamAccess(ctx, "T1", "owner")
	if err != nil {
		t.Fatalf("GetTeamAccess: %v", err)
	}
	if access == nil || !access.IsOwner {
		t.Errorf("expected owner access, got %+v", access)
	}
}

func TestEnsureSeedTeam_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stores := mongoStores(db)
	cfg := memoryConfig()
	for i := 0; i < 2; i++ {
		if err := ensureSeedTeam(ctx, stores.Teams, cfg, testLogger()); err != nil {
			t.Fatalf("ensureSeedTeam (run %d): %v", i+1, err)
		}
	}
	access, err := stores.Directory.GetTeamAccess(ctx, "T1", "owner")
	if err != nil || access == nil || !access.IsOwner {
		t.Fatalf("owner access: %+v, %v", access, err)
	}
}

func TestBuildHandler_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	cfg.AuditLogAssets = "db"

	deps, err := ConnectDB(ctx, nil, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.MongoClient != nil {
		t.Fatal("memory backend should not open a Mongo client")
	}
	if err := EnsureSchema(ctx, nil, cfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := Startup(ctx, nil, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	h, err := BuildHandler(nil, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health: got %d", rec.Code)
	}

	body, _ := json.Marshal(map[string]string{"name": "Hero", "type": "image"})
	req := httptest.NewRequest(http.MethodPost, "/teams/T1/assets", bytes.NewReader(body))
	req.Header.Set(testutil.ActorHeader, "owner")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d (%s)", rec.Code, rec.Body.String())
	}
	var a models.Asset
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.TeamID != "T1" || a.Status != models.AssetDraft {
		t.Errorf("created: %+v", a)
	}

	req = httptest.NewRequest(http.MethodGet, "/assets/"+a.ID+"/audit", nil)
	req.Header.Set(testutil.ActorHeader, "owner")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var trail struct {
		Events []struct {
			EventType string `json:"event_type"`
		} `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trail); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("audit: got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(trail.Events) != 1 || trail.Events[0].EventType != "asset_created" {
		t.Errorf("audit trail: %+v", trail.Events)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: got %d", rec.Code)
	}

	if err := Shutdown(ctx, nil, cfg, deps, testLogger()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
