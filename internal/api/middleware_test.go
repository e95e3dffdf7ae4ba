package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alphabot-ai/campusboard/internal/store"
)

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	logged := LogRequests(zap.New(core))(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	logged.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != http.MethodGet {
		t.Errorf("method = %v", fields["method"])
	}
	if fields["path"] != "/api/posts" {
		t.Errorf("path = %v", fields["path"])
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field = %v (%T)", fields["status"], fields["status"])
	}
	if _, ok := fields["duration"]; !ok {
		t.Error("log should contain the request duration")
	}
}

func TestLogRequestsDefaultStatus(t *testing.T) {
	methods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPatch,
		http.MethodDelete,
	}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			})

			req := httptest.NewRequest(method, "/test", nil)
			LogRequests(zap.New(core))(handler).ServeHTTP(httptest.NewRecorder(), req)

			fields := logs.All()[0].ContextMap()
			if fields["method"] != method {
				t.Errorf("method = %v, want %s", fields["method"], method)
			}
			if fields["status"] != int64(http.StatusOK) {
				t.Errorf("status = %v, want 200", fields["status"])
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	ts := setupTestServer(t, nil)
	defer ts.cleanup()

	var seen *store.Identity
	protected := ts.handler.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	protected(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("logged out status = %d, want 401", rec.Code)
	}
	if seen != nil {
		t.Error("handler should not run without a session")
	}

	ts.register(t, "alice", "a@x.edu")

	rec = httptest.NewRecorder()
	protected(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("logged in status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.Email != "a@x.edu" {
		t.Errorf("identity in context = %+v", seen)
	}
}

func TestIdentityFromContextEmpty(t *testing.T) {
	if id := IdentityFromContext(context.Background()); id != nil {
		t.Errorf("IdentityFromContext = %+v, want nil", id)
	}
}

func TestGetClientIP(t *testing.T) {
	h := &Handler{}

	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.2.3.4:5", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.2.3.4:5", "10.0.0.3"},
		{"remote addr", nil, "1.2.3.4:5678", "1.2.3.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := h.getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
