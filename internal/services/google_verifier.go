package services

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity holds the claims used from a verified Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier checks a Google ID token against an OAuth client ID.
type GoogleVerifier interface {
	Verify(ctx context.Context, token, audience string) (*GoogleIdentity, error)
}

// IDTokenVerifier validates tokens with Google's published signing keys.
type IDTokenVerifier struct {
	validator *idtoken.Validator
}

func NewIDTokenVerifier(ctx context.Context) (*IDTokenVerifier, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &IDTokenVerifier{validator: v}, nil
}

func (v *IDTokenVerifier) Verify(ctx context.Context, token, audience string) (*GoogleIdentity, error) {
	payload, err := v.validator.Validate(ctx, token, audience)
	if err != nil {
		return nil, err
	}

	identity := &GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		identity.Picture = picture
	}
	return identity, nil
}
