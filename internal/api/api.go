package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alphabot-ai/campusboard/internal/auth"
	"github.com/alphabot-ai/campusboard/internal/config"
	"github.com/alphabot-ai/campusboard/internal/notify"
	"github.com/alphabot-ai/campusboard/internal/ratelimit"
	"github.com/alphabot-ai/campusboard/internal/store"
)

// Handler holds dependencies for API handlers. The acting user of every
// request is the profile's current session.
type Handler struct {
	posts    *store.PostStore
	identity *store.IdentityStore
	limiter  ratelimit.Limiter
	notes    *notify.Queue
	cfg      *config.Config
	logger   *zap.Logger
}

func NewHandler(posts *store.PostStore, identity *store.IdentityStore, limiter ratelimit.Limiter, notes *notify.Queue, cfg *config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		posts:    posts,
		identity: identity,
		limiter:  limiter,
		notes:    notes,
		cfg:      cfg,
		logger:   logger,
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Posts
	mux.HandleFunc("GET /api/posts", h.ListPosts)
	mux.HandleFunc("POST /api/posts", h.CreatePost)
	mux.HandleFunc("GET /api/posts/{id}", h.GetPost)
	mux.HandleFunc("PATCH /api/posts/{id}", h.RequireSession(h.UpdatePost))
	mux.HandleFunc("DELETE /api/posts/{id}", h.RequireSession(h.DeletePost))
	mux.HandleFunc("POST /api/posts/{id}/status", h.RequireSession(h.ChangeStatus))
	mux.HandleFunc("POST /api/posts/{id}/watch", h.RequireSession(h.ToggleWatch))

	// Comments
	mux.HandleFunc("POST /api/posts/{id}/comments", h.AddComment)
	mux.HandleFunc("PATCH /api/posts/{id}/comments/{commentId}", h.RequireSession(h.UpdateComment))
	mux.HandleFunc("DELETE /api/posts/{id}/comments/{commentId}", h.RequireSession(h.DeleteComment))

	// Views
	mux.HandleFunc("GET /api/map", h.Map)
	mux.HandleFunc("GET /api/me/posts", h.RequireSession(h.MyPosts))
	mux.HandleFunc("GET /api/me/bounties", h.RequireSession(h.MyBounties))

	// Identity
	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/session", h.Session)

	mux.HandleFunc("GET /api/notifications", h.Notifications)

	return mux
}

// Response helpers

type ErrorResponse struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeRateLimited(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Error:      "rate limit exceeded",
		RetryAfter: retryAfter,
	})
}

// writeStoreError maps store errors to HTTP statuses and queues an error
// toast for the user.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		h.notes.Error(ve.Error())
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field})
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrUnauthenticated),
		errors.Is(err, store.ErrAccountNotFound),
		errors.Is(err, store.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrDuplicateUsername),
		errors.Is(err, store.ErrDuplicateEmail):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		h.notes.Error("something went wrong")
		writeError(w, status, "internal error")
		return
	}
	h.notes.Error(err.Error())
	writeError(w, status, err.Error())
}

// Request helpers

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func (h *Handler) getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// checkRateLimit counts an attempt at action for the client, narrowed by
// extra key parts such as the login identifier.
func (h *Handler) checkRateLimit(r *http.Request, action string, limit int, extra ...string) (bool, int) {
	parts := append([]string{auth.HashIP(h.getClientIP(r))}, extra...)
	key := ratelimit.Key(action, parts...)

	if !h.limiter.Allow(key, limit, h.cfg.RateLimitWindow) {
		retryAfter := int(h.limiter.RetryAfter(key, h.cfg.RateLimitWindow).Seconds())
		return false, retryAfter
	}

	return true, 0
}
