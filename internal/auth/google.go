package auth

import (
	"context"
	"fmt"
	"strings"

	"invoicer/internal/apperror"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google ID tokens issued for one OAuth client.
type GoogleVerifier struct {
	audience string
	validate func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if v.audience == "" {
		return Identity{}, fmt.Errorf("%w: google sign-in is not configured", apperror.ErrUnauthorized)
	}

	payload, err := v.validate(ctx, idToken, v.audience)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid google token: %v", apperror.ErrUnauthorized, err)
	}

	sub := strings.TrimSpace(payload.Subject)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: google token has no subject", apperror.ErrUnauthorized)
	}

	return Identity{
		UserID: sub,
		Email:  stringClaim(payload.Claims, "email"),
		Name:   stringClaim(payload.Claims, "name"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if raw, ok := claims[key]; ok {
		if s, ok := raw.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
