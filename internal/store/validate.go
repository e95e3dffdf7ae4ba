package store

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateDraft checks a new post the way the submit form does. The store
// itself trusts its input; callers run this first.
func ValidateDraft(d Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	if !d.Type.Valid() {
		return &ValidationError{Field: "type", Message: "must be one of sale, free, bounty, activity"}
	}
	if err := validateAmounts(d.Type, d.Price, d.Reward); err != nil {
		return err
	}
	return validateCoords(d.Lat, d.Lng)
}

// ValidatePatch checks a partial update against the post it will be merged
// into.
func ValidatePatch(p Post, patch Patch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	typ := p.Type
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return &ValidationError{Field: "type", Message: "must be one of sale, free, bounty, activity"}
		}
		typ = *patch.Type
	}
	if err := validateAmounts(typ, patch.Price, patch.Reward); err != nil {
		return err
	}
	lat, lng := p.Lat, p.Lng
	if patch.Lat != nil {
		lat = patch.Lat
	}
	if patch.Lng != nil {
		lng = patch.Lng
	}
	for _, f := range patch.Clear {
		var set bool
		switch f {
		case ClearPrice:
			set = patch.Price != nil
		case ClearReward:
			set = patch.Reward != nil
		case ClearLat:
			set, lat = patch.Lat != nil, nil
		case ClearLng:
			set, lng = patch.Lng != nil, nil
		default:
			return &ValidationError{Field: "clear", Message: fmt.Sprintf("cannot clear %q", f)}
		}
		if set {
			return &ValidationError{Field: f, Message: "cannot be set and cleared together"}
		}
	}
	return validateCoords(lat, lng)
}

func validateAmounts(typ PostType, price, reward *float64) error {
	if price != nil {
		if *price < 0 {
			return &ValidationError{Field: "price", Message: "must be a non-negative number"}
		}
		if typ != TypeSale && typ != TypeFree {
			return &ValidationError{Field: "price", Message: "only applies to sale and free posts"}
		}
	}
	if reward != nil {
		if *reward < 0 {
			return &ValidationError{Field: "reward", Message: "must be a non-negative number"}
		}
		if typ != TypeBounty {
			return &ValidationError{Field: "reward", Message: "only applies to bounty posts"}
		}
	}
	return nil
}

func validateCoords(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return &ValidationError{Field: "lat", Message: "lat and lng must be given together"}
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		return &ValidationError{Field: "lat", Message: "must be between -90 and 90"}
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return &ValidationError{Field: "lng", Message: "must be between -180 and 180"}
	}
	return nil
}

// ParseAmount parses a numeric form field. Blank input means unset.
func ParseAmount(field, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: "must be a number"}
	}
	return &v, nil
}

// SplitList splits a comma-separated form field, trimming entries and
// dropping empty ones.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
