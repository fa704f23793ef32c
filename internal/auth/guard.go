package auth

import "time"

// DefaultMaxAge is how long a session counts as fresh after authentication.
const DefaultMaxAge = 24 * time.Hour

// Reason explains a NotSignedIn decision.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonAbsent    Reason = "absent"
	ReasonExpired   Reason = "expired"
	ReasonMalformed Reason = "malformed_timestamp"
)

// Decision is the outcome of a guard evaluation.
type Decision struct {
	SignedIn bool
	Claims   ClaimSet
	Reason   Reason
}

// Guard decides signed-in status from a stored session and the clock.
type Guard struct {
	MaxAge time.Duration
}

// NewGuard returns a guard with the given freshness window, defaulting to
// DefaultMaxAge when maxAge is zero or negative.
func NewGuard(maxAge time.Duration) Guard {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return Guard{MaxAge: maxAge}
}

// Evaluate combines presence with a time-bounded freshness check. The stored
// timestamp is reparsed on every call; an unparseable timestamp fails closed
// to NotSignedIn rather than erroring, a corrupt session must never grant
// access. Evaluate itself cannot fail.
func (g Guard) Evaluate(session *AuthSession, now time.Time) Decision {
	if session == nil {
		return Decision{Reason: ReasonAbsent}
	}

	authenticatedAt, err := time.Parse(time.RFC3339, session.AuthenticatedAt)
	if err != nil {
		return Decision{Reason: ReasonMalformed}
	}

	if now.Sub(authenticatedAt) >= g.MaxAge {
		return Decision{Reason: ReasonExpired}
	}

	return Decision{SignedIn: true, Claims: session.Claims}
}
