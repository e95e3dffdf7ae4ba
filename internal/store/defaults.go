package store

import (
	"time"

	"github.com/alphabot-ai/campusboard/internal/clock"
)

func amount(v float64) *float64 { return &v }

// DefaultPosts is the dataset a fresh or unreadable profile starts from.
// Creation times are spread over the hours before now so that the newest
// sort is deterministic.
func DefaultPosts(now time.Time) []Post {
	at := func(hoursAgo int) int64 {
		return clock.Millis(now.Add(-time.Duration(hoursAgo) * time.Hour))
	}

	return []Post{
		{
			ID:          "seed-1",
			CreatedAt:   at(5),
			Type:        TypeSale,
			Status:      StatusOpen,
			Title:       "Office Chair - Like New",
			Description: "Comfortable office chair, barely used. Great condition!",
			Location:    "Lakeshore Dorms",
			Price:       amount(25),
			Lat:         amount(43.0766),
			Lng:         amount(-89.4125),
			Tags:        []string{"furniture", "office"},
			Images:      []string{"https://images.pexels.com/photos/813691/pexels-photo-813691.jpeg"},
			OwnerName:   AnonymousName,
			Watchers:    []string{},
			Comments:    []Comment{},
		},
		{
			ID:          "seed-2",
			CreatedAt:   at(4),
			Type:        TypeFree,
			Status:      StatusOpen,
			Title:       "Free Bookshelf",
			Description: "Small bookshelf, free to good home. Pick up only.",
			Location:    "Southeast Dorms",
			Lat:         amount(43.0702),
			Lng:         amount(-89.3995),
			Tags:        []string{"furniture", "free"},
			Images:      []string{"https://images.pexels.com/photos/3965545/pexels-photo-3965545.jpeg"},
			OwnerName:   AnonymousName,
			Watchers:    []string{},
			Comments:    []Comment{},
		},
		{
			ID:          "seed-3",
			CreatedAt:   at(3),
			Type:        TypeBounty,
			Status:      StatusOpen,
			Title:       "Need Help Moving Boxes",
			Description: "Looking for someone to help move boxes from apartment to storage unit. Should take about 2 hours.",
			Location:    "Downtown",
			Reward:      amount(30),
			Tags:        []string{"moving", "help"},
			OwnerName:   AnonymousName,
			Watchers:    []string{},
			Comments:    []Comment{},
		},
		{
			ID:             "seed-4",
			CreatedAt:      at(2),
			Type:           TypeBounty,
			Status:         StatusClaimed,
			Title:          "IKEA Desk Assembly",
			Description:    "Need someone to assemble a desk. Tools provided, just need the help!",
			Location:       "Near Campus",
			Reward:         amount(20),
			Tags:           []string{"assembly", "furniture"},
			OwnerName:      AnonymousName,
			ClaimedByName:  "jordan",
			ClaimedByEmail: "jordan@example.edu",
			Watchers:       []string{},
			Comments:       []Comment{},
		},
		{
			ID:          "seed-5",
			CreatedAt:   at(1),
			Type:        TypeActivity,
			Status:      StatusOpen,
			Title:       "Looking for Volleyball Teammates",
			Description: "Planning casual volleyball games on Sunday afternoons at the SERF. Looking for 3-4 more players.",
			Location:    "SERF Gym",
			Lat:         amount(43.0690),
			Lng:         amount(-89.3978),
			Tags:        []string{"sports", "activity"},
			OwnerName:   AnonymousName,
			Watchers:    []string{},
			Comments:    []Comment{},
		},
	}
}
