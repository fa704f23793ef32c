package auth

import "errors"

// ErrMissingAssertion means the callback was reached without a completed
// provider exchange. It is the only way Normalize can fail.
var ErrMissingAssertion = errors.New("missing identity assertion")

// RawAssertion is the untrusted auth payload handed over by the provider
// exchange once the code/verifier handshake has succeeded. Every nested
// block is optional; only UID and Provider identify the assertion's origin.
type RawAssertion struct {
	UID      string `json:"uid"`
	Provider string `json:"provider"`

	Info        *Info        `json:"info,omitempty"`
	Credentials *Credentials `json:"credentials,omitempty"`
	Extra       *Extra       `json:"extra,omitempty"`
}

type Info struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Image    string `json:"image,omitempty"`
}

type Credentials struct {
	IDToken   string `json:"id_token,omitempty"`
	Token     string `json:"token,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
}

type Extra struct {
	RawInfo *RawInfo `json:"raw_info,omitempty"`
}

// RawInfo carries the ID token claims the provider surfaced alongside the
// profile block.
type RawInfo struct {
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Locale        string `json:"locale,omitempty"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	Sub           string `json:"sub,omitempty"`
	Aud           string `json:"aud,omitempty"`
	Iss           string `json:"iss,omitempty"`
	Iat           *int64 `json:"iat,omitempty"`
	Exp           *int64 `json:"exp,omitempty"`
}

// ClaimSet is the canonical, typed view of a RawAssertion. Every field is
// independently optional; zero values mean the provider did not supply them.
type ClaimSet struct {
	Subject  string `json:"subject,omitempty"`
	Provider string `json:"provider,omitempty"`

	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Nickname   string `json:"nickname,omitempty"`
	PictureURL string `json:"picture_url,omitempty"`

	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Locale        string `json:"locale,omitempty"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`

	Issuer    string `json:"issuer,omitempty"`
	Audience  string `json:"audience,omitempty"`
	IssuedAt  *int64 `json:"issued_at,omitempty"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
}

// Normalize turns a raw provider assertion into a ClaimSet. Missing
// intermediate blocks yield absent fields, never an error; the only failure
// mode is a nil assertion. Claim content is not validated here, the provider
// exchange already verified the tokens it came from.
func Normalize(raw *RawAssertion) (ClaimSet, error) {
	if raw == nil {
		return ClaimSet{}, ErrMissingAssertion
	}

	claims := ClaimSet{
		Subject:  raw.UID,
		Provider: raw.Provider,
	}

	if raw.Info != nil {
		claims.Name = raw.Info.Name
		claims.Email = raw.Info.Email
		claims.Nickname = raw.Info.Nickname
		claims.PictureURL = raw.Info.Image
	}

	if raw.Extra != nil && raw.Extra.RawInfo != nil {
		ri := raw.Extra.RawInfo
		claims.GivenName = ri.GivenName
		claims.FamilyName = ri.FamilyName
		claims.Locale = ri.Locale
		claims.EmailVerified = ri.EmailVerified
		claims.UpdatedAt = ri.UpdatedAt
		claims.Issuer = ri.Iss
		claims.Audience = ri.Aud
		claims.IssuedAt = ri.Iat
		claims.ExpiresAt = ri.Exp

		// The token's sub is authoritative when the top-level uid is absent.
		if claims.Subject == "" {
			claims.Subject = ri.Sub
		}
	}

	return claims, nil
}
