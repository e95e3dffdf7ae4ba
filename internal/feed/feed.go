// Package feed derives display lists from the post collection. Everything
// here is pure: inputs are never modified and equal sort keys keep their
// input order.
package feed

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/alphabot-ai/campusboard/internal/store"
)

type Channel string

const (
	ChannelAll        Channel = "all"
	ChannelBounty     Channel = "bounty"
	ChannelSecondhand Channel = "secondhand"
	ChannelActivity   Channel = "activity"
)

// ParseChannel maps a query value to a channel. Unknown values mean all;
// "resale" is accepted as an alias of secondhand.
func ParseChannel(s string) Channel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bounty":
		return ChannelBounty
	case "secondhand", "resale":
		return ChannelSecondhand
	case "activity":
		return ChannelActivity
	default:
		return ChannelAll
	}
}

type SortMode string

const (
	SortNewest    SortMode = "newest"
	SortDistance  SortMode = "distance"
	SortRelevance SortMode = "relevance"
)

func ParseSort(s string) SortMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "distance":
		return SortDistance
	case "relevance":
		return SortRelevance
	default:
		return SortNewest
	}
}

type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Criteria is the filter state of a feed view. The zero value matches
// every post and sorts newest first.
type Criteria struct {
	Channel Channel
	Query   string
	// Tags is the comma-separated tag filter as typed.
	Tags string
	// Status restricts to one status; empty or "all" matches every status.
	Status string
	Min    *float64
	Max    *float64
	Sort   SortMode
	Origin *Coord
}

// Apply filters posts by c and sorts the result.
func Apply(posts []store.Post, c Criteria) []store.Post {
	out := Filter(posts, c)
	Sort(out, c)
	return out
}

// Filter returns the posts matching every criterion, in input order.
func Filter(posts []store.Post, c Criteria) []store.Post {
	query := strings.ToLower(strings.TrimSpace(c.Query))
	tags := ParseTags(c.Tags)

	out := make([]store.Post, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		if !matchesChannel(p, c.Channel) ||
			!matchesStatus(p, c.Status) ||
			!matchesQuery(p, query) ||
			!matchesTags(p, tags) ||
			!withinBounds(p, c.Min, c.Max) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// ParseTags splits a comma-separated tag filter into lower-cased, trimmed,
// non-empty tags.
func ParseTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.ToLower(strings.TrimSpace(part)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func matchesChannel(p *store.Post, ch Channel) bool {
	switch ch {
	case ChannelBounty:
		return p.Type == store.TypeBounty
	case ChannelSecondhand:
		return p.Type == store.TypeSale || p.Type == store.TypeFree
	case ChannelActivity:
		return p.Type == store.TypeActivity
	default:
		return true
	}
}

func matchesStatus(p *store.Post, status string) bool {
	status = strings.ToLower(strings.TrimSpace(status))
	return status == "" || status == "all" || string(p.Status) == status
}

func matchesQuery(p *store.Post, query string) bool {
	if query == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		p.Title, p.Description, p.Location, strings.Join(p.Tags, " "),
	}, " "))
	return strings.Contains(haystack, query)
}

// matchesTags is conjunctive: every wanted tag must be on the post.
func matchesTags(p *store.Post, wanted []string) bool {
	for _, w := range wanted {
		found := false
		for _, t := range p.Tags {
			if strings.ToLower(strings.TrimSpace(t)) == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func withinBounds(p *store.Post, lo, hi *float64) bool {
	amount := p.Amount()
	if lo != nil && amount < *lo {
		return false
	}
	if hi != nil && amount > *hi {
		return false
	}
	return true
}

// Sort orders posts in place according to c.Sort.
func Sort(posts []store.Post, c Criteria) {
	switch c.Sort {
	case SortDistance:
		dist := make(map[string]float64, len(posts))
		for i := range posts {
			dist[posts[i].ID] = distanceFrom(c.Origin, &posts[i])
		}
		slices.SortStableFunc(posts, func(a, b store.Post) int {
			return cmp.Compare(dist[a.ID], dist[b.ID])
		})
	case SortRelevance:
		query := strings.ToLower(strings.TrimSpace(c.Query))
		score := make(map[string]int, len(posts))
		for i := range posts {
			score[posts[i].ID] = Relevance(&posts[i], query)
		}
		slices.SortStableFunc(posts, func(a, b store.Post) int {
			return cmp.Compare(score[b.ID], score[a.ID])
		})
	default:
		slices.SortStableFunc(posts, func(a, b store.Post) int {
			return cmp.Compare(b.CreatedAt, a.CreatedAt)
		})
	}
}

// distanceFrom is the distance in meters from origin to p. Posts without
// coordinates are infinitely far; without an origin every geo-located post
// is at distance zero.
func distanceFrom(origin *Coord, p *store.Post) float64 {
	if !p.Geolocated() {
		return math.Inf(1)
	}
	if origin == nil {
		return 0
	}
	return Haversine(*origin, Coord{Lat: *p.Lat, Lng: *p.Lng})
}

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Coord) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Relevance weights.
const (
	weightTag         = 4
	weightTitle       = 3
	weightDescription = 2
	weightLocation    = 1
)

// Relevance scores p against a lower-cased query. Each keyword adds the
// weight of every field it appears in.
func Relevance(p *store.Post, query string) int {
	keywords := strings.Fields(query)
	if len(keywords) == 0 {
		return 0
	}

	title := strings.ToLower(p.Title)
	desc := strings.ToLower(p.Description)
	loc := strings.ToLower(p.Location)

	score := 0
	for _, k := range keywords {
		for _, t := range p.Tags {
			if strings.Contains(strings.ToLower(t), k) {
				score += weightTag
				break
			}
		}
		if strings.Contains(title, k) {
			score += weightTitle
		}
		if strings.Contains(desc, k) {
			score += weightDescription
		}
		if strings.Contains(loc, k) {
			score += weightLocation
		}
	}
	return score
}
