package feed

import (
	"strings"

	"github.com/alphabot-ai/campusboard/internal/store"
)

// GroupByStatus buckets posts of type typ by status. Every status has an
// entry, possibly empty. An empty typ groups every type.
func GroupByStatus(posts []store.Post, typ store.PostType) map[store.Status][]store.Post {
	out := make(map[store.Status][]store.Post, len(store.Statuses))
	for _, s := range store.Statuses {
		out[s] = []store.Post{}
	}
	for _, p := range posts {
		if typ != "" && p.Type != typ {
			continue
		}
		out[p.Status] = append(out[p.Status], p)
	}
	return out
}

func Owned(posts []store.Post, email string) []store.Post {
	return selectPosts(posts, func(p *store.Post) bool {
		return email != "" && p.OwnerEmail == email
	})
}

func Claimed(posts []store.Post, email string) []store.Post {
	return selectPosts(posts, func(p *store.Post) bool {
		return email != "" && p.ClaimedByEmail == email
	})
}

func Watched(posts []store.Post, email string) []store.Post {
	return selectPosts(posts, func(p *store.Post) bool {
		return email != "" && p.Watching(email)
	})
}

// Geolocated returns the posts that can be pinned on a map, narrowed by a
// case-insensitive match of query against location or title.
func Geolocated(posts []store.Post, query string) []store.Post {
	query = strings.ToLower(strings.TrimSpace(query))
	return selectPosts(posts, func(p *store.Post) bool {
		if !p.Geolocated() {
			return false
		}
		return query == "" ||
			strings.Contains(strings.ToLower(p.Location), query) ||
			strings.Contains(strings.ToLower(p.Title), query)
	})
}

func selectPosts(posts []store.Post, keep func(*store.Post) bool) []store.Post {
	out := []store.Post{}
	for i := range posts {
		if keep(&posts[i]) {
			out = append(out, posts[i])
		}
	}
	return out
}
