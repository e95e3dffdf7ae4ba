package store

type PostType string

const (
	TypeSale     PostType = "sale"
	TypeFree     PostType = "free"
	TypeBounty   PostType = "bounty"
	TypeActivity PostType = "activity"
)

func (t PostType) Valid() bool {
	switch t {
	case TypeSale, TypeFree, TypeBounty, TypeActivity:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusOpen      Status = "open"
	StatusClaimed   Status = "claimed"
	StatusCompleted Status = "completed"
	StatusClosed    Status = "closed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusOpen, StatusClaimed, StatusCompleted, StatusClosed}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClaimed, StatusCompleted, StatusClosed:
		return true
	default:
		return false
	}
}

// AnonymousName is recorded as the author of posts and comments made
// without a session.
const AnonymousName = "Anonymous"

// Keys under which the stores persist their state.
const (
	KeyPosts   = "posts"
	KeyUsers   = "users"
	KeySession = "current_session"
)

// Timestamps are epoch milliseconds.
type Post struct {
	ID          string   `json:"id"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt,omitempty"`
	Type        PostType `json:"type"`
	Status      Status   `json:"status"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Price       *float64 `json:"price,omitempty"`
	Reward      *float64 `json:"reward,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images,omitempty"`

	OwnerName      string `json:"ownerName"`
	OwnerEmail     string `json:"ownerEmail"`
	ClaimedByName  string `json:"claimedByName,omitempty"`
	ClaimedByEmail string `json:"claimedByEmail,omitempty"`

	Watchers []string  `json:"watchers"`
	Comments []Comment `json:"comments"`
}

// Geolocated reports whether both coordinates are present.
func (p *Post) Geolocated() bool {
	return p.Lat != nil && p.Lng != nil
}

// Amount is the price-like value that applies to the post's type:
// price for sale/free, reward for bounty, zero otherwise or when unset.
func (p *Post) Amount() float64 {
	switch p.Type {
	case TypeSale, TypeFree:
		if p.Price != nil {
			return *p.Price
		}
	case TypeBounty:
		if p.Reward != nil {
			return *p.Reward
		}
	}
	return 0
}

// Watching reports whether email is in the post's watcher set.
func (p *Post) Watching(email string) bool {
	for _, w := range p.Watchers {
		if w == email {
			return true
		}
	}
	return false
}

type Comment struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	CreatedAt   int64  `json:"createdAt"`
	EditedAt    int64  `json:"editedAt,omitempty"`
}

type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    int64  `json:"createdAt"`
}

// Identity is the acting user of an operation and the shape of the
// persisted session.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Draft carries the caller-supplied fields of a new post.
type Draft struct {
	Title       string   `json:"title"`
	Type        PostType `json:"type"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Price       *float64 `json:"price,omitempty"`
	Reward      *float64 `json:"reward,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// Patch is a shallow partial update; nil fields are left untouched.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Type        *PostType `json:"type,omitempty"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Reward      *float64  `json:"reward,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	// Clear names optional fields to unset: price, reward, lat, lng.
	Clear []string `json:"clear,omitempty"`
}

// Optional fields a Patch can unset.
const (
	ClearPrice  = "price"
	ClearReward = "reward"
	ClearLat    = "lat"
	ClearLng    = "lng"
)
