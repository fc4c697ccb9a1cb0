// Package identity signs users in with their Google account. The frontend
// obtains an authorization code; it is exchanged here and the returned ID
// token is validated before its claims are trusted.
package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

var (
	ErrNotConfigured = errors.New("google sign-in is not configured")
	ErrUnverified    = errors.New("google account email is not verified")
)

type Profile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type exchanger interface {
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type GoogleProvider struct {
	clientID string
	oauth    exchanger
	validate validateFunc
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	p := &GoogleProvider{clientID: clientID, validate: idtoken.Validate}
	if clientID != "" {
		p.oauth = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return p
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	if p.oauth == nil {
		return nil, ErrNotConfigured
	}

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, errors.New("token response has no id_token")
	}

	payload, err := p.validate(ctx, raw, p.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}
	return profileFromClaims(payload)
}

func profileFromClaims(payload *idtoken.Payload) (*Profile, error) {
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("id token has no email claim")
	}
	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return nil, ErrUnverified
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &Profile{
		Subject: payload.Subject,
		Email:   email,
		Name:    name,
		Picture: picture,
	}, nil
}
