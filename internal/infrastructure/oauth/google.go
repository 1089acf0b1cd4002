package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	ProviderGoogle    = "google"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	accountTypeOAuth  = "oauth"
)

// GoogleUser represents the user info from Google
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Identity is the result of a completed code exchange.
type Identity struct {
	Provider          string
	Type              string
	ProviderAccountID string
	Email             string
	Name              string
	Image             string
	AccessToken       string
	RefreshToken      string
	TokenType         string
	ExpiresAt         int64
	Scope             string
	IDToken           string
}

// GoogleProvider handles Google OAuth
type GoogleProvider struct {
	Config      *oauth2.Config
	UserInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

// AuthURL returns the Google OAuth authorization URL
func (g *GoogleProvider) AuthURL(state string) string {
	return g.Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades the authorization code for tokens and loads the profile.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	u, err := g.userInfo(ctx, tok)
	if err != nil {
		return nil, err
	}
	if u.Email == "" {
		return nil, fmt.Errorf("google profile has no email")
	}
	id := &Identity{
		Provider:          ProviderGoogle,
		Type:              accountTypeOAuth,
		ProviderAccountID: u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Image:             u.Picture,
		AccessToken:       tok.AccessToken,
		RefreshToken:      tok.RefreshToken,
		TokenType:         tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		id.ExpiresAt = tok.Expiry.Unix()
	}
	if s, ok := tok.Extra("scope").(string); ok {
		id.Scope = s
	}
	if s, ok := tok.Extra("id_token").(string); ok {
		id.IDToken = s
	}
	return id, nil
}

func (g *GoogleProvider) userInfo(ctx context.Context, tok *oauth2.Token) (*GoogleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("failed to get user info: %s", string(body))
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
