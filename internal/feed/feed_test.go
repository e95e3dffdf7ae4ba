package feed

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabot-ai/campusboard/internal/store"
)

func f(v float64) *float64 { return &v }

func ids(posts []store.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func samplePosts() []store.Post {
	return []store.Post{
		{
			ID: "chair", CreatedAt: 100, Type: store.TypeSale, Status: store.StatusOpen,
			Title: "Ergonomic chair", Description: "Barely used office chair",
			Location: "Library", Price: f(25), Tags: []string{"Furniture", "office"},
			Lat: f(43.0766), Lng: f(-89.4125),
		},
		{
			ID: "boxes", CreatedAt: 300, Type: store.TypeBounty, Status: store.StatusOpen,
			Title: "Help moving boxes", Description: "Need two people for an hour",
			Location: "Dorm B", Reward: f(30), Tags: []string{"moving"},
		},
		{
			ID: "shelf", CreatedAt: 200, Type: store.TypeFree, Status: store.StatusClaimed,
			Title: "Bookshelf", Description: "Free to a good home, some furniture scratches",
			Location: "Main street", Price: f(0), Tags: []string{"furniture"},
			Lat: f(43.0731), Lng: f(-89.4012),
		},
		{
			ID: "volley", CreatedAt: 400, Type: store.TypeActivity, Status: store.StatusOpen,
			Title: "Volleyball at the beach", Description: "Pickup game, all levels",
			Location: "Lakeshore", Tags: []string{"sports"},
			Lat: f(43.0800), Lng: f(-89.4200),
		},
	}
}

func TestFilterSecondhandPriceWindow(t *testing.T) {
	posts := []store.Post{
		{ID: "sale", Type: store.TypeSale, Price: f(25)},
		{ID: "bounty", Type: store.TypeBounty, Reward: f(30)},
	}

	got := Filter(posts, Criteria{Channel: ChannelSecondhand, Min: f(20), Max: f(30)})
	assert.Equal(t, []string{"sale"}, ids(got))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"zero value matches all", Criteria{}, []string{"chair", "boxes", "shelf", "volley"}},
		{"bounty channel", Criteria{Channel: ChannelBounty}, []string{"boxes"}},
		{"secondhand includes free", Criteria{Channel: ChannelSecondhand}, []string{"chair", "shelf"}},
		{"activity channel", Criteria{Channel: ChannelActivity}, []string{"volley"}},
		{"query in title any case", Criteria{Query: "CHAIR"}, []string{"chair"}},
		{"query in location", Criteria{Query: "dorm"}, []string{"boxes"}},
		{"query in tags", Criteria{Query: "sports"}, []string{"volley"}},
		{"single tag", Criteria{Tags: "furniture"}, []string{"chair", "shelf"}},
		{"tags are conjunctive", Criteria{Tags: "furniture, office"}, []string{"chair"}},
		{"blank tags ignored", Criteria{Tags: " , ,"}, []string{"chair", "boxes", "shelf", "volley"}},
		{"status", Criteria{Status: "claimed"}, []string{"shelf"}},
		{"status all", Criteria{Status: "all"}, []string{"chair", "boxes", "shelf", "volley"}},
		{"min counts missing amount as zero", Criteria{Min: f(1)}, []string{"chair", "boxes"}},
		{"max", Criteria{Max: f(0)}, []string{"shelf", "volley"}},
		{"no match", Criteria{Query: "piano"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(samplePosts(), tt.c))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyIsIdempotentAndPure(t *testing.T) {
	posts := samplePosts()
	before := samplePosts()
	c := Criteria{Channel: ChannelSecondhand, Tags: "furniture", Sort: SortRelevance, Query: "chair"}

	once := Apply(posts, c)
	twice := Apply(once, c)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed the result (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(before, posts); diff != "" {
		t.Errorf("input was modified (-before +after):\n%s", diff)
	}
}

func TestSortNewest(t *testing.T) {
	got := Apply(samplePosts(), Criteria{})
	assert.Equal(t, []string{"volley", "boxes", "shelf", "chair"}, ids(got))
}

func TestSortDistance(t *testing.T) {
	// Standing next to the bookshelf.
	origin := &Coord{Lat: 43.0731, Lng: -89.4012}

	got := Apply(samplePosts(), Criteria{Sort: SortDistance, Origin: origin})
	require.Len(t, got, 4)
	assert.Equal(t, "shelf", got[0].ID)
	assert.Equal(t, "boxes", got[len(got)-1].ID, "posts without coordinates sort last")
}

func TestSortDistanceWithoutOrigin(t *testing.T) {
	got := Apply(samplePosts(), Criteria{Sort: SortDistance})
	// Geolocated posts tie at zero and keep input order.
	assert.Equal(t, []string{"chair", "shelf", "volley", "boxes"}, ids(got))
}

func TestSortRelevance(t *testing.T) {
	got := Apply(samplePosts(), Criteria{Sort: SortRelevance, Query: "furniture"})
	// chair and shelf both carry the tag; shelf also mentions it in its
	// description.
	require.NotEmpty(t, got)
	assert.Equal(t, []string{"shelf", "chair"}, ids(got))
}

func TestRelevance(t *testing.T) {
	p := &store.Post{
		Title:       "Oak desk",
		Description: "Solid oak, seats two",
		Location:    "Oak hall",
		Tags:        []string{"Oak"},
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"oak", 4 + 3 + 2 + 1},
		{"desk", 3},
		{"seats", 2},
		{"hall", 1},
		{"desk hall", 3 + 1},
		{"piano", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Relevance(p, tt.query))
		})
	}
}

func TestHaversine(t *testing.T) {
	a := Coord{Lat: 0, Lng: 0}
	assert.Zero(t, Haversine(a, a))

	// A quarter of the equator.
	got := Haversine(a, Coord{Lat: 0, Lng: 90})
	assert.InDelta(t, EarthRadius*math.Pi/2, got, 1e-6)

	// Symmetric.
	b := Coord{Lat: 43.0766, Lng: -89.4125}
	c := Coord{Lat: 40.7128, Lng: -74.0060}
	assert.InDelta(t, Haversine(b, c), Haversine(c, b), 1e-9)
}

func TestParseChannelAndSort(t *testing.T) {
	assert.Equal(t, ChannelSecondhand, ParseChannel("resale"))
	assert.Equal(t, ChannelBounty, ParseChannel(" Bounty "))
	assert.Equal(t, ChannelAll, ParseChannel("whatever"))

	assert.Equal(t, SortDistance, ParseSort("distance"))
	assert.Equal(t, SortRelevance, ParseSort("RELEVANCE"))
	assert.Equal(t, SortNewest, ParseSort(""))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"furniture", "office"}, ParseTags(" Furniture,, OFFICE "))
	assert.Empty(t, ParseTags(""))
}
