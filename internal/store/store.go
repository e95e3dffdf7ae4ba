// Package store holds the post collection and the account list of a board
// profile. Each store keeps its collection in memory and writes the whole
// collection back to the key-value store after every successful mutation.
package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("not allowed for this user")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a rejected input field. No mutation happens when
// an operation returns one.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ErrEmptyText is returned when comment text trims to nothing.
var ErrEmptyText = &ValidationError{Field: "text", Message: "must not be empty"}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// newID returns a time-ordered id; uuid v7 is monotonic within the process.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func isOwner(p *Post, actor *Identity) bool {
	return actor != nil && actor.Email != "" && actor.Email == p.OwnerEmail
}

func isClaimant(p *Post, actor *Identity) bool {
	return actor != nil && actor.Email != "" && actor.Email == p.ClaimedByEmail
}

func clonePost(p *Post) Post {
	c := *p
	c.Price = cloneFloat(p.Price)
	c.Reward = cloneFloat(p.Reward)
	c.Lat = cloneFloat(p.Lat)
	c.Lng = cloneFloat(p.Lng)
	c.Tags = append([]string{}, p.Tags...)
	if p.Images != nil {
		c.Images = append([]string{}, p.Images...)
	}
	c.Watchers = append([]string{}, p.Watchers...)
	c.Comments = append([]Comment{}, p.Comments...)
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
