package auth

import (
	"context"
	"net/http"
)

// Exchanger is the external OAuth2/PKCE collaborator. By the time
// HandleCallback returns, it has already verified the authorization code and
// code_verifier and exchanged them for tokens; this core only consumes the
// resulting assertion.
type Exchanger interface {
	// InitiateAuth builds the provider authorization URL for a new login
	// attempt and hands back the transient state the callback will need.
	InitiateAuth(ctx context.Context) (*LoginRedirect, error)

	// HandleCallback completes the code exchange for an inbound provider
	// callback and returns the raw assertion, or nil when the exchange did
	// not complete.
	HandleCallback(ctx context.Context, req *http.Request) (*RawAssertion, error)

	// LogoutURL builds the provider's own logout endpoint with an escaped
	// return target.
	LogoutURL(returnTo string) string
}

// LoginRedirect describes where to send the browser to start a login.
type LoginRedirect struct {
	URL   string
	State string
}
