package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alphabot-ai/campusboard/internal/notify"
	"github.com/alphabot-ai/campusboard/internal/store"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type SessionResponse struct {
	LoggedIn bool            `json:"loggedIn"`
	Identity *store.Identity `json:"identity,omitempty"`
}

type NotificationsResponse struct {
	Notifications []notify.Toast `json:"notifications"`
}

// Register handles POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	acct, err := h.identity.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.notes.Success(fmt.Sprintf("Welcome, %s", acct.Username))
	writeJSON(w, http.StatusCreated, SessionResponse{
		LoggedIn: true,
		Identity: &store.Identity{Name: acct.Username, Email: acct.Email},
	})
}

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ident := strings.ToLower(strings.TrimSpace(req.Identifier))
	allowed, retryAfter := h.checkRateLimit(r, "login", h.cfg.LoginRateLimit, ident)
	if !allowed {
		writeRateLimited(w, retryAfter)
		return
	}

	id, err := h.identity.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.notes.Success(fmt.Sprintf("Logged in as %s", id.Name))
	writeJSON(w, http.StatusOK, SessionResponse{LoggedIn: true, Identity: &id})
}

// Logout handles POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.identity.Logout(r.Context())
	h.notes.Info("Logged out")
	writeJSON(w, http.StatusOK, SessionResponse{LoggedIn: false})
}

// Session handles GET /api/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	id := h.identity.Current()
	writeJSON(w, http.StatusOK, SessionResponse{LoggedIn: id != nil, Identity: id})
}

// Notifications handles GET /api/notifications
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: h.notes.Drain()})
}
