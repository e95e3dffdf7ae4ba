package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alphabot-ai/campusboard/internal/store"
)

type contextKey string

const ContextKeyIdentity contextKey = "identity"

// RequireSession rejects the request unless a user is logged in, and puts
// the session identity on the request context.
func (h *Handler) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := h.identity.Current()
		if id == nil {
			writeError(w, http.StatusUnauthorized, store.ErrUnauthenticated.Error())
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyIdentity, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// IdentityFromContext returns the identity set by RequireSession, or nil.
func IdentityFromContext(ctx context.Context) *store.Identity {
	if v, ok := ctx.Value(ContextKeyIdentity).(*store.Identity); ok {
		return v
	}
	return nil
}

// actor is the acting user of r: the identity from RequireSession when
// present, otherwise the current session, which may be nil.
func (h *Handler) actor(r *http.Request) *store.Identity {
	if id := IdentityFromContext(r.Context()); id != nil {
		return id
	}
	return h.identity.Current()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests returns middleware that logs every request with its status
// and duration.
func LogRequests(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
