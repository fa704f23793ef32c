package proxy

import (
	"net/http/httptest"
	"testing"

	"github.com/ittullos/authgate/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestInjectHeaders(t *testing.T) {
	verified := true
	claims := auth.ClaimSet{
		Subject:       "auth0|abc123",
		Provider:      "auth0",
		Email:         "jane@example.com",
		Name:          "Jane Doe",
		GivenName:     "Jane",
		EmailVerified: &verified,
	}

	r := httptest.NewRequest("GET", "/reports", nil)
	InjectHeaders(r, claims)

	assert.Equal(t, "auth0|abc123", r.Header.Get("X-Auth-Subject"))
	assert.Equal(t, "auth0", r.Header.Get("X-Auth-Provider"))
	assert.Equal(t, "jane@example.com", r.Header.Get("X-Auth-Email"))
	assert.Equal(t, "Jane Doe", r.Header.Get("X-Auth-Name"))
	assert.Equal(t, "Jane", r.Header.Get("X-Auth-Given-Name"))
	assert.Equal(t, "true", r.Header.Get("X-Auth-Email-Verified"))
}

func TestInjectHeadersSkipsAbsentClaims(t *testing.T) {
	r := httptest.NewRequest("GET", "/reports", nil)
	InjectHeaders(r, auth.ClaimSet{Subject: "auth0|abc123"})

	assert.Equal(t, "auth0|abc123", r.Header.Get("X-Auth-Subject"))

	_, emailSet := r.Header["X-Auth-Email"]
	assert.False(t, emailSet)
	_, verifiedSet := r.Header["X-Auth-Email-Verified"]
	assert.False(t, verifiedSet)
}
