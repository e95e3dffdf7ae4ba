package store

type actorRule int

const (
	anyUser actorRule = iota
	ownerOnly
	ownerOrClaimant
)

// transitions is the status state machine. closed has no outgoing edges.
var transitions = map[Status]map[Status]actorRule{
	StatusOpen: {
		StatusClaimed: anyUser,
		StatusClosed:  ownerOnly,
	},
	StatusClaimed: {
		StatusCompleted: ownerOrClaimant,
	},
	StatusCompleted: {
		StatusClosed: ownerOnly,
	},
}

// CheckTransition reports whether actor may move p to next.
func CheckTransition(p *Post, next Status, actor *Identity) error {
	rule, ok := transitions[p.Status][next]
	if !ok {
		return ErrInvalidTransition
	}
	if actor == nil || actor.Email == "" {
		return ErrUnauthenticated
	}
	switch rule {
	case ownerOnly:
		if !isOwner(p, actor) {
			return ErrForbidden
		}
	case ownerOrClaimant:
		if !isOwner(p, actor) && !isClaimant(p, actor) {
			return ErrForbidden
		}
	}
	return nil
}

// AllowedTransitions lists the statuses actor may move p to, in lifecycle
// order.
func AllowedTransitions(p *Post, actor *Identity) []Status {
	var out []Status
	for _, s := range Statuses {
		if CheckTransition(p, s, actor) == nil {
			out = append(out, s)
		}
	}
	return out
}
