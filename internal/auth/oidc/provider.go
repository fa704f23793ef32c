package oidc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/ittullos/authgate/internal/auth"
	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/store"
	"golang.org/x/oauth2"
)

const (
	providerName  = "auth0"
	loginStateTTL = 10 * time.Minute
)

// Provider performs the Authorization Code Flow with PKCE against the
// configured OIDC issuer and hands the verified result to the session core
// as a RawAssertion.
type Provider struct {
	cfg   config.ProviderConfig
	store store.Store

	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

type loginState struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewProvider(ctx context.Context, cfg config.ProviderConfig, redirectURL string, st store.Store) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer())
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  redirectURL,
		Scopes:       cfg.Scopes,
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	return &Provider{
		cfg:          cfg,
		store:        st,
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
	}, nil
}

func (p *Provider) InitiateAuth(ctx context.Context) (*auth.LoginRedirect, error) {
	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	codeChallenge := generateCodeChallenge(codeVerifier)

	state := uuid.New().String()

	authURL := p.oauth2Config.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	stateData, err := json.Marshal(loginState{
		State:        state,
		CodeVerifier: codeVerifier,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := p.store.SetLoginState(ctx, state, stateData, loginStateTTL); err != nil {
		return nil, fmt.Errorf("failed to persist login state: %w", err)
	}

	return &auth.LoginRedirect{
		URL:   authURL,
		State: state,
	}, nil
}

func (p *Provider) HandleCallback(ctx context.Context, req *http.Request) (*auth.RawAssertion, error) {
	code := req.URL.Query().Get("code")
	state := req.URL.Query().Get("state")

	if code == "" {
		return nil, fmt.Errorf("missing code parameter")
	}
	if state == "" {
		return nil, fmt.Errorf("missing state parameter")
	}

	stateData, err := p.store.TakeLoginState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired state: %w", err)
	}

	var ls loginState
	if err := json.Unmarshal(stateData, &ls); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	oauth2Token, err := p.oauth2Config.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", ls.CodeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("no id_token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Nickname      string `json:"nickname"`
		Picture       string `json:"picture"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Locale        string `json:"locale"`
		EmailVerified *bool  `json:"email_verified"`
		UpdatedAt     string `json:"updated_at"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	audience := ""
	if len(idToken.Audience) > 0 {
		audience = idToken.Audience[0]
	}

	iat := idToken.IssuedAt.Unix()
	exp := idToken.Expiry.Unix()

	var tokenExpiresAt *int64
	if !oauth2Token.Expiry.IsZero() {
		unix := oauth2Token.Expiry.Unix()
		tokenExpiresAt = &unix
	}

	return &auth.RawAssertion{
		UID:      idToken.Subject,
		Provider: providerName,
		Info: &auth.Info{
			Name:     claims.Name,
			Email:    claims.Email,
			Nickname: claims.Nickname,
			Image:    claims.Picture,
		},
		Credentials: &auth.Credentials{
			IDToken:   rawIDToken,
			Token:     oauth2Token.AccessToken,
			TokenType: oauth2Token.TokenType,
			ExpiresAt: tokenExpiresAt,
		},
		Extra: &auth.Extra{
			RawInfo: &auth.RawInfo{
				GivenName:     claims.GivenName,
				FamilyName:    claims.FamilyName,
				Locale:        claims.Locale,
				EmailVerified: claims.EmailVerified,
				UpdatedAt:     claims.UpdatedAt,
				Sub:           idToken.Subject,
				Aud:           audience,
				Iss:           idToken.Issuer,
				Iat:           &iat,
				Exp:           &exp,
			},
		},
	}, nil
}

// LogoutURL builds the provider's logout endpoint; returnTo is query-escaped
// before it lands in the URL.
func (p *Provider) LogoutURL(returnTo string) string {
	return fmt.Sprintf(
		"https://%s/v2/logout?client_id=%s&returnTo=%s",
		p.cfg.Domain,
		url.QueryEscape(p.cfg.ClientID),
		url.QueryEscape(returnTo),
	)
}

func generateCodeVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
