package auth

import (
	"context"
	"errors"
	"fmt"

	"invoicer/internal/apperror"
)

// Identity is the authenticated owner. UserID is the Google subject and
// partitions every invoice and counter.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Authenticator resolves a bearer token to an Identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// TokenVerifier is the Google side of authentication.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

type chainAuthenticator struct {
	issuer *Issuer
	google TokenVerifier
}

// NewAuthenticator accepts app tokens minted by issuer and, when google is
// non-nil, raw Google ID tokens.
func NewAuthenticator(issuer *Issuer, google TokenVerifier) Authenticator {
	return &chainAuthenticator{issuer: issuer, google: google}
}

func (a *chainAuthenticator) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: missing token", apperror.ErrUnauthorized)
	}

	identity, err := a.issuer.Parse(token)
	if err == nil {
		return identity, nil
	}
	if a.google == nil {
		return Identity{}, err
	}

	identity, googleErr := a.google.Verify(ctx, token)
	if googleErr != nil {
		return Identity{}, errors.Join(err, googleErr)
	}
	return identity, nil
}
