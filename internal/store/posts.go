package store

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/alphabot-ai/campusboard/internal/clock"
	"github.com/alphabot-ai/campusboard/internal/kv"
)

// PostStore owns the post collection of a profile.
type PostStore struct {
	mu     sync.RWMutex
	posts  []*Post
	kv     kv.Store
	clock  clock.Clock
	logger *zap.Logger
}

// NewPostStore loads the collection from s. A missing, unreadable or
// corrupt value falls back to the default dataset.
func NewPostStore(ctx context.Context, s kv.Store, clk clock.Clock, logger *zap.Logger) *PostStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	ps := &PostStore{kv: s, clock: clk, logger: logger}
	ps.load(ctx)
	return ps
}

func (s *PostStore) load(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, KeyPosts)
	save := true
	switch {
	case err != nil:
		// Leave whatever is stored alone; the backend may recover.
		s.logger.Warn("failed to load posts, using defaults", zap.Error(err))
		save = false
	case !ok:
		s.logger.Info("no saved posts, using defaults")
	default:
		var posts []*Post
		if err := json.Unmarshal([]byte(raw), &posts); err != nil {
			s.logger.Warn("corrupt saved posts, using defaults", zap.Error(err))
			break
		}
		// The store always writes an array of objects; null anywhere is corrupt.
		if posts == nil || slices.Contains(posts, nil) {
			s.logger.Warn("corrupt saved posts, using defaults", zap.String("reason", "contains null"))
			break
		}
		s.posts = posts
		return
	}

	for _, p := range DefaultPosts(s.clock.Now()) {
		s.posts = append(s.posts, &p)
	}
	if save {
		s.persistLocked(ctx)
	}
}

// persistLocked writes the whole collection. Write failures are logged and
// the in-memory state stands.
func (s *PostStore) persistLocked(ctx context.Context) {
	posts := s.posts
	if posts == nil {
		posts = []*Post{}
	}
	b, err := json.Marshal(posts)
	if err != nil {
		s.logger.Warn("failed to encode posts", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, KeyPosts, string(b)); err != nil {
		s.logger.Warn("failed to save posts", zap.Error(err))
	}
}

func (s *PostStore) findLocked(id string) (int, *Post) {
	for i, p := range s.posts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (s *PostStore) now() int64 {
	return clock.Millis(s.clock.Now())
}

// List returns a copy of every post in collection order.
func (s *PostStore) List(ctx context.Context) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, clonePost(p))
	}
	return out
}

func (s *PostStore) Get(ctx context.Context, id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, p := s.findLocked(id)
	if p == nil {
		return Post{}, ErrNotFound
	}
	return clonePost(p), nil
}

// CreatePost adds an open post owned by actor, or by Anonymous when actor
// is nil, and returns its id.
func (s *PostStore) CreatePost(ctx context.Context, d Draft, actor *Identity) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}

	p := &Post{
		ID:          id,
		CreatedAt:   s.now(),
		Type:        d.Type,
		Status:      StatusOpen,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Location:    strings.TrimSpace(d.Location),
		Price:       cloneFloat(d.Price),
		Reward:      cloneFloat(d.Reward),
		Lat:         cloneFloat(d.Lat),
		Lng:         cloneFloat(d.Lng),
		Tags:        append([]string{}, d.Tags...),
		OwnerName:   AnonymousName,
		Watchers:    []string{},
		Comments:    []Comment{},
	}
	if d.Images != nil {
		p.Images = append([]string{}, d.Images...)
	}
	if actor != nil {
		p.OwnerName = actor.Name
		p.OwnerEmail = actor.Email
	}
	normalizeAmounts(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append(s.posts, p)
	s.persistLocked(ctx)

	s.logger.Debug("post created", zap.String("id", id), zap.String("type", string(p.Type)))
	return id, nil
}

// normalizeAmounts drops the price-like field that does not belong to the
// post's type.
func normalizeAmounts(p *Post) {
	switch p.Type {
	case TypeSale, TypeFree:
		p.Reward = nil
	case TypeBounty:
		p.Price = nil
	case TypeActivity:
		p.Price = nil
		p.Reward = nil
	}
}

// ChangeStatus moves a post along the status state machine. Claiming
// records actor as the claimant.
func (s *PostStore) ChangeStatus(ctx context.Context, id string, next Status, actor *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, p := s.findLocked(id)
	if p == nil {
		return ErrNotFound
	}
	if err := CheckTransition(p, next, actor); err != nil {
		return err
	}

	p.Status = next
	if next == StatusClaimed {
		p.ClaimedByName = actor.Name
		p.ClaimedByEmail = actor.Email
	}
	s.persistLocked(ctx)

	s.logger.Debug("post status changed", zap.String("id", id), zap.String("status", string(next)))
	return nil
}

// ToggleWatch adds or removes actor's email from the watchers and reports
// whether actor is watching afterwards. Without an actor it does nothing.
func (s *PostStore) ToggleWatch(ctx context.Context, id string, actor *Identity) (bool, error) {
	if actor == nil || actor.Email == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, p := s.findLocked(id)
	if p == nil {
		return false, ErrNotFound
	}

	watching := false
	kept := p.Watchers[:0]
	for _, w := range p.Watchers {
		if w == actor.Email {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == len(p.Watchers) {
		kept = append(kept, actor.Email)
		watching = true
	}
	p.Watchers = kept
	s.persistLocked(ctx)

	return watching, nil
}

// AddComment appends a comment by actor, or by Anonymous when actor is nil.
func (s *PostStore) AddComment(ctx context.Context, id, text string, actor *Identity) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrEmptyText
	}
	cid, err := newID()
	if err != nil {
		return Comment{}, err
	}

	c := Comment{
		ID:         cid,
		Text:       text,
		AuthorName: AnonymousName,
		CreatedAt:  s.now(),
	}
	if actor != nil {
		c.AuthorName = actor.Name
		c.AuthorEmail = actor.Email
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, p := s.findLocked(id)
	if p == nil {
		return Comment{}, ErrNotFound
	}
	p.Comments = append(p.Comments, c)
	s.persistLocked(ctx)

	return c, nil
}

func (s *PostStore) authorCommentLocked(id, commentID string, actor *Identity) (*Post, int, error) {
	if actor == nil || actor.Email == "" {
		return nil, -1, ErrUnauthenticated
	}
	_, p := s.findLocked(id)
	if p == nil {
		return nil, -1, ErrNotFound
	}
	for i := range p.Comments {
		if p.Comments[i].ID != commentID {
			continue
		}
		if p.Comments[i].AuthorEmail != actor.Email {
			return nil, -1, ErrForbidden
		}
		return p, i, nil
	}
	return nil, -1, ErrNotFound
}

// UpdateComment replaces the text of a comment authored by actor.
func (s *PostStore) UpdateComment(ctx context.Context, id, commentID, text string, actor *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, i, err := s.authorCommentLocked(id, commentID, actor)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}

	p.Comments[i].Text = text
	p.Comments[i].EditedAt = s.now()
	s.persistLocked(ctx)
	return nil
}

// DeleteComment removes a comment authored by actor.
func (s *PostStore) DeleteComment(ctx context.Context, id, commentID string, actor *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, i, err := s.authorCommentLocked(id, commentID, actor)
	if err != nil {
		return err
	}

	p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
	s.persistLocked(ctx)
	return nil
}

func (s *PostStore) ownedLocked(id string, actor *Identity) (int, *Post, error) {
	if actor == nil || actor.Email == "" {
		return -1, nil, ErrUnauthenticated
	}
	i, p := s.findLocked(id)
	if p == nil {
		return -1, nil, ErrNotFound
	}
	if !isOwner(p, actor) {
		return -1, nil, ErrForbidden
	}
	return i, p, nil
}

// UpdatePostFields merges the non-nil fields of patch into a post owned by
// actor, then unsets the fields named in patch.Clear. The patch is
// validated against the post as stored, under the same lock as the merge.
func (s *PostStore) UpdatePostFields(ctx context.Context, id string, patch Patch, actor *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, p, err := s.ownedLocked(id, actor)
	if err != nil {
		return err
	}
	if err := ValidatePatch(*p, patch); err != nil {
		return err
	}

	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Location != nil {
		p.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Price != nil {
		p.Price = cloneFloat(patch.Price)
	}
	if patch.Reward != nil {
		p.Reward = cloneFloat(patch.Reward)
	}
	if patch.Lat != nil {
		p.Lat = cloneFloat(patch.Lat)
	}
	if patch.Lng != nil {
		p.Lng = cloneFloat(patch.Lng)
	}
	if patch.Tags != nil {
		p.Tags = append([]string{}, (*patch.Tags)...)
	}
	if patch.Images != nil {
		p.Images = append([]string{}, (*patch.Images)...)
	}
	for _, f := range patch.Clear {
		switch f {
		case ClearPrice:
			p.Price = nil
		case ClearReward:
			p.Reward = nil
		case ClearLat:
			p.Lat = nil
		case ClearLng:
			p.Lng = nil
		}
	}
	normalizeAmounts(p)
	p.UpdatedAt = s.now()
	s.persistLocked(ctx)

	return nil
}

// DeletePost removes a post owned by actor from the collection.
func (s *PostStore) DeletePost(ctx context.Context, id string, actor *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, _, err := s.ownedLocked(id, actor)
	if err != nil {
		return err
	}

	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	s.persistLocked(ctx)

	s.logger.Debug("post deleted", zap.String("id", id))
	return nil
}
