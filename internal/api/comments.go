package api

import (
	"net/http"

	"github.com/alphabot-ai/campusboard/internal/store"
)

type CommentRequest struct {
	Text string `json:"text"`
}

// AddComment handles POST /api/posts/{id}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	allowed, retryAfter := h.checkRateLimit(r, "comment", h.cfg.CommentRateLimit)
	if !allowed {
		writeRateLimited(w, retryAfter)
		return
	}

	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.posts.AddComment(r.Context(), r.PathValue("id"), req.Text, h.actor(r))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// UpdateComment handles PATCH /api/posts/{id}/comments/{commentId}
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	id, commentID := r.PathValue("id"), r.PathValue("commentId")
	if err := h.posts.UpdateComment(ctx, id, commentID, req.Text, h.actor(r)); err != nil {
		h.writeStoreError(w, err)
		return
	}

	p, err := h.posts.Get(ctx, id)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	for _, c := range p.Comments {
		if c.ID == commentID {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	h.writeStoreError(w, store.ErrNotFound)
}

// DeleteComment handles DELETE /api/posts/{id}/comments/{commentId}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.posts.DeleteComment(r.Context(), r.PathValue("id"), r.PathValue("commentId"), h.actor(r))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
