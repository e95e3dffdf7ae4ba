package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alphabot-ai/campusboard/internal/feed"
	"github.com/alphabot-ai/campusboard/internal/store"
)

type CreatePostResponse struct {
	ID string `json:"id"`
}

type ListPostsResponse struct {
	Posts []store.Post `json:"posts"`
}

type PostResponse struct {
	store.Post
	// AllowedTransitions lists the statuses the current user may move the
	// post to.
	AllowedTransitions []store.Status `json:"allowedTransitions"`
}

type ChangeStatusRequest struct {
	Status store.Status `json:"status"`
}

type WatchResponse struct {
	Watching bool `json:"watching"`
}

type MyPostsResponse struct {
	Owned   []store.Post `json:"owned"`
	Claimed []store.Post `json:"claimed"`
	Watched []store.Post `json:"watched"`
}

// parseCriteria reads feed filters from the query string.
func parseCriteria(r *http.Request) (feed.Criteria, error) {
	q := r.URL.Query()
	c := feed.Criteria{
		Channel: feed.ParseChannel(q.Get("channel")),
		Query:   q.Get("q"),
		Tags:    q.Get("tags"),
		Status:  q.Get("status"),
		Sort:    feed.ParseSort(q.Get("sort")),
	}

	var err error
	if c.Min, err = store.ParseAmount("min", q.Get("min")); err != nil {
		return c, err
	}
	if c.Max, err = store.ParseAmount("max", q.Get("max")); err != nil {
		return c, err
	}

	lat, lng := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lng"))
	if lat != "" && lng != "" {
		la, errLat := strconv.ParseFloat(lat, 64)
		ln, errLng := strconv.ParseFloat(lng, 64)
		if errLat != nil || errLng != nil {
			return c, &store.ValidationError{Field: "lat", Message: "must be a coordinate pair"}
		}
		c.Origin = &feed.Coord{Lat: la, Lng: ln}
	}
	return c, nil
}

// ListPosts handles GET /api/posts
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	posts := feed.Apply(h.posts.List(r.Context()), c)
	writeJSON(w, http.StatusOK, ListPostsResponse{Posts: posts})
}

// GetPost handles GET /api/posts/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	allowed := store.AllowedTransitions(&p, h.actor(r))
	if allowed == nil {
		allowed = []store.Status{}
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: p, AllowedTransitions: allowed})
}

// CreatePost handles POST /api/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	allowed, retryAfter := h.checkRateLimit(r, "post", h.cfg.PostRateLimit)
	if !allowed {
		writeRateLimited(w, retryAfter)
		return
	}

	var d store.Draft
	if !decodeJSON(w, r, &d) {
		return
	}
	if err := store.ValidateDraft(d); err != nil {
		h.writeStoreError(w, err)
		return
	}

	id, err := h.posts.CreatePost(r.Context(), d, h.actor(r))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.notes.Success(fmt.Sprintf("Posted %q", strings.TrimSpace(d.Title)))
	writeJSON(w, http.StatusCreated, CreatePostResponse{ID: id})
}

// UpdatePost handles PATCH /api/posts/{id}
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var patch store.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")
	if err := h.posts.UpdatePostFields(ctx, id, patch, h.actor(r)); err != nil {
		h.writeStoreError(w, err)
		return
	}

	updated, err := h.posts.Get(ctx, id)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.notes.Success("Post updated")
	writeJSON(w, http.StatusOK, updated)
}

// DeletePost handles DELETE /api/posts/{id}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.DeletePost(r.Context(), r.PathValue("id"), h.actor(r)); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.notes.Success("Post deleted")
	w.WriteHeader(http.StatusNoContent)
}

// ChangeStatus handles POST /api/posts/{id}/status
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")
	if err := h.posts.ChangeStatus(ctx, id, req.Status, h.actor(r)); err != nil {
		h.writeStoreError(w, err)
		return
	}

	p, err := h.posts.Get(ctx, id)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.notes.Success(fmt.Sprintf("Marked as %s", req.Status))
	writeJSON(w, http.StatusOK, p)
}

// ToggleWatch handles POST /api/posts/{id}/watch
func (h *Handler) ToggleWatch(w http.ResponseWriter, r *http.Request) {
	watching, err := h.posts.ToggleWatch(r.Context(), r.PathValue("id"), h.actor(r))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	if watching {
		h.notes.Info("Added to watchlist")
	} else {
		h.notes.Info("Removed from watchlist")
	}
	writeJSON(w, http.StatusOK, WatchResponse{Watching: watching})
}

// Map handles GET /api/map
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	posts := feed.Geolocated(h.posts.List(r.Context()), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, ListPostsResponse{Posts: posts})
}

// MyPosts handles GET /api/me/posts
func (h *Handler) MyPosts(w http.ResponseWriter, r *http.Request) {
	email := h.actor(r).Email
	posts := h.posts.List(r.Context())

	writeJSON(w, http.StatusOK, MyPostsResponse{
		Owned:   feed.Owned(posts, email),
		Claimed: feed.Claimed(posts, email),
		Watched: feed.Watched(posts, email),
	})
}

// MyBounties handles GET /api/me/bounties
func (h *Handler) MyBounties(w http.ResponseWriter, r *http.Request) {
	owned := feed.Owned(h.posts.List(r.Context()), h.actor(r).Email)
	writeJSON(w, http.StatusOK, feed.GroupByStatus(owned, store.TypeBounty))
}
