// internal/app/features/assets/handler.go
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	assetsvc "github.com/dalemusser/assetflow/internal/app/assets"
	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
	"go.uber.org/zap"
)

// ActorHeader carries the authenticated actor id. It is set by the identity
// layer in front of this service.
const ActorHeader = "X-Actor-ID"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler owns the JSON asset endpoints. It is a thin adapter over the
// asset service: it decodes input, calls one use case, and maps errors to
// status codes.
type Handler struct {
	Svc *assetsvc.Service
	Log *zap.Logger
}

// NewHandler constructs an asset Handler.
func NewHandler(svc *assetsvc.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Svc: svc, Log: logger}
}

func actorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ActorHeader))
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("invalid JSON body: " + err.Error())
	}
	return nil
}

// parseTime parses an RFC 3339 timestamp named field.
func parseTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.Validation(field + " is required")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperr.Validation(fmt.Sprintf("%s must be an RFC 3339 timestamp; got %q", field, value))
	}
	return t.UTC(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Kind      string            `json:"kind"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Conflicts []models.Conflict `json:"conflicts,omitempty"`
}

// writeError maps a service error to a JSON error response. Errors without
// a kind are logged and reported as a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		h.Log.Error("asset request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]errorBody{
			"error": {Kind: "internal", Message: "internal error"},
		})
		return
	}
	writeJSON(w, apperr.HTTPStatus(ae.Kind), map[string]errorBody{
		"error": {
			Kind:      string(ae.Kind),
			Message:   ae.Message,
			Metadata:  ae.Metadata,
			Conflicts: ae.Conflicts,
		},
	})
}
