package auth

import "time"

// AuthSession is the server-side session record created once per successful
// callback. It is immutable after materialization; expiry is computed at read
// time from AuthenticatedAt, there is no separate expiry field to keep in sync.
type AuthSession struct {
	Claims          ClaimSet `json:"claims"`
	AuthenticatedAt string   `json:"authenticated_at"`
	CorrelationID   string   `json:"correlation_id"`
}

// TokenPresence records that tokens were received, and their non-sensitive
// metadata. Raw token material is never copied in.
type TokenPresence struct {
	IDTokenPresent     bool   `json:"id_token_present"`
	AccessTokenPresent bool   `json:"access_token_present"`
	TokenType          string `json:"token_type,omitempty"`
	ExpiresAt          *int64 `json:"expires_at,omitempty"`
}

// Materialize stamps a claim set into an AuthSession and derives the
// companion TokenPresence from the credential block of the original
// assertion. AuthenticatedAt is always taken from the server clock passed in,
// never from provider claims. The correlation id is the session store's own
// identifier, accepted as an input. Pure: the caller persists the pair.
func Materialize(claims ClaimSet, creds *Credentials, correlationID string, now time.Time) (AuthSession, TokenPresence) {
	session := AuthSession{
		Claims:          claims,
		AuthenticatedAt: now.UTC().Format(time.RFC3339),
		CorrelationID:   correlationID,
	}

	var tokens TokenPresence
	if creds != nil {
		tokens = TokenPresence{
			IDTokenPresent:     creds.IDToken != "",
			AccessTokenPresent: creds.Token != "",
			TokenType:          creds.TokenType,
			ExpiresAt:          creds.ExpiresAt,
		}
	}

	return session, tokens
}
