// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/assetflow/internal/app/store/audit"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Assets controls logging for asset and schedule events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Assets string
	// Access controls logging for authorization denials. Same values as Assets.
	Access string
}

// Sink persists audit events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to a Sink (normally the audit_events collection) and to zap.
type Logger struct {
	store  Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case the
// "db" part of any setting is skipped.
func New(store Sink, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.TeamID != "" {
		fields = append(fields, zap.String("team_id", event.TeamID))
	}
	if event.AssetID != "" {
		fields = append(fields, zap.String("asset_id", event.AssetID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAsset, audit.CategorySchedule:
		setting = l.config.Assets
	case audit.CategoryAccess:
		setting = l.config.Access
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) assetEvent(ctx context.Context, eventType, actorID string, a models.Asset, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAsset,
		EventType: eventType,
		TeamID:    a.TeamID,
		AssetID:   a.ID,
		ActorID:   actorID,
		Success:   true,
		Details:   details,
	})
}

// --- Asset Events ---

// AssetCreated logs a new draft asset.
func (l *Logger) AssetCreated(ctx context.Context, actorID string, a models.Asset) {
	l.assetEvent(ctx, audit.EventAssetCreated, actorID, a, map[string]string{
		"name": a.Name,
		"type": a.Type,
	})
}

// AssetUpdated logs a patch; fields lists the patched field names.
func (l *Logger) AssetUpdated(ctx context.Context, actorID string, a models.Asset, fields []string) {
	l.assetEvent(ctx, audit.EventAssetUpdated, actorID, a, map[string]string{
		"fields_changed": strings.Join(fields, ","),
		"version":        strconv.FormatInt(a.Version, 10),
	})
}

// AssetSubmitted logs a submission for review.
func (l *Logger) AssetSubmitted(ctx context.Context, actorID string, a models.Asset) {
	l.assetEvent(ctx, audit.EventAssetSubmitted, actorID, a, map[string]string{
		"status": string(a.Status),
	})
}

// AssetReviewed logs a review decision.
func (l *Logger) AssetReviewed(ctx context.Context, actorID string, a models.Asset, action string) {
	l.assetEvent(ctx, audit.EventAssetReviewed, actorID, a, map[string]string{
		"action": action,
		"status": string(a.Status),
	})
}

// AssetDuplicated logs a copy of source.
func (l *Logger) AssetDuplicated(ctx context.Context, actorID string, source, copied models.Asset) {
	l.assetEvent(ctx, audit.EventAssetDuplicated, actorID, copied, map[string]string{
		"source_asset_id": source.ID,
	})
}

// AssetArchived logs an archive.
func (l *Logger) AssetArchived(ctx context.Context, actorID string, a models.Asset) {
	l.assetEvent(ctx, audit.EventAssetArchived, actorID, a, nil)
}

// AssetLiveStatus logs a scheduled/live toggle.
func (l *Logger) AssetLiveStatus(ctx context.Context, actorID string, a models.Asset) {
	l.assetEvent(ctx, audit.EventAssetLiveStatus, actorID, a, map[string]string{
		"status": string(a.Status),
	})
}

// --- Schedule Events ---

// SlotReserved logs a committed reservation.
func (l *Logger) SlotReserved(ctx context.Context, actorID string, slot models.ReservationSlot) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategorySchedule,
		EventType: audit.EventSlotReserved,
		TeamID:    slot.TeamID,
		AssetID:   slot.AssetID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"slot_id": slot.ID,
			"start":   slot.Start.Format(time.RFC3339),
			"end":     slot.End.Format(time.RFC3339),
		},
	})
}

// SlotConflict logs a reservation rejected because of overlapping slots.
func (l *Logger) SlotConflict(ctx context.Context, actorID string, a models.Asset, start, end time.Time, conflicts int) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategorySchedule,
		EventType:     audit.EventSlotConflict,
		TeamID:        a.TeamID,
		AssetID:       a.ID,
		ActorID:       actorID,
		Success:       false,
		FailureReason: "overlapping reservation",
		Details: map[string]string{
			"start":     start.Format(time.RFC3339),
			"end":       end.Format(time.RFC3339),
			"conflicts": strconv.Itoa(conflicts),
		},
	})
}

// --- Access Events ---

// AccessDenied logs an authorization denial for operation on teamID.
func (l *Logger) AccessDenied(ctx context.Context, actorID, teamID, assetID, operation, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAccess,
		EventType:     audit.EventAccessDenied,
		TeamID:        teamID,
		AssetID:       assetID,
		ActorID:       actorID,
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"operation": operation,
		},
	})
}
