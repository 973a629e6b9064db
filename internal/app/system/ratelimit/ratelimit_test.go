package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/assetflow/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

func TestLimiter_BurstThenBlock(t *testing.T) {
	l := ratelimit.New(1, 3, zap.NewNop())
	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if l.Allow("a") {
		t.Error("fourth request should be blocked")
	}
	if !l.Allow("b") {
		t.Error("other keys have their own bucket")
	}
}

func TestMiddleware(t *testing.T) {
	l := ratelimit.New(1, 1, zap.NewNop())
	l.KeyFunc = ratelimit.HeaderOrIP("X-Actor-ID")
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(actor string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if actor != "" {
			req.Header.Set("X-Actor-ID", actor)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("ed"); got != http.StatusNoContent {
		t.Fatalf("first: got %d", got)
	}
	if got := send("ed"); got != http.StatusTooManyRequests {
		t.Errorf("second: got %d, want 429", got)
	}
	if got := send("owner"); got != http.StatusNoContent {
		t.Errorf("other actor: got %d", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.2.3.4:5", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": " 10.0.0.9 "}, "1.2.3.4:5", "10.0.0.9"},
		{"remote with port", nil, "1.2.3.4:5", "1.2.3.4"},
		{"remote without port", nil, "1.2.3.4", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := ratelimit.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}
