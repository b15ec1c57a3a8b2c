package service

import (
	"context"
	"fmt"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/auth"
	"invoicer/internal/logger"
	"invoicer/internal/model"
	"invoicer/internal/repository"
)

// --- DTOs ---

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type UserResponse struct {
	ID       string `json:"id"`
	GoogleID string `json:"google_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// --- Interface ---

type AuthService interface {
	GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*TokenResponse, error)
}

type authService struct {
	userRepo     repository.UserRepository
	verifier     auth.TokenVerifier
	issuer       *auth.Issuer
	auditService AuditService
}

func NewAuthService(userRepo repository.UserRepository, verifier auth.TokenVerifier, issuer *auth.Issuer, auditService AuditService) AuthService {
	return &authService{
		userRepo:     userRepo,
		verifier:     verifier,
		issuer:       issuer,
		auditService: auditService,
	}
}

// --- Implementation ---

// GoogleLogin exchanges a Google ID token for an app token, creating or
// refreshing the user on the way.
func (s *authService) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*TokenResponse, error) {
	if req.IDToken == "" {
		return nil, apperror.Validation("id_token is required")
	}

	identity, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}

	user := &model.User{GoogleID: identity.UserID, Email: identity.Email, Name: identity.Name}
	if err := s.userRepo.UpsertByGoogleID(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	token, expiresAt, err := s.issuer.Issue(identity)
	if err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, &model.AuditLog{
		UserID:     identity.UserID,
		Action:     model.ActionGoogleSignIn,
		EntityID:   user.ID.String(),
		EntityName: user.Email,
	})

	log := logger.WithComponent(logger.ComponentAuth)
	log.Info().Str("user_id", identity.UserID).Msg("google sign-in")

	return &TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User: UserResponse{
			ID:       user.ID.String(),
			GoogleID: user.GoogleID,
			Email:    user.Email,
			Name:     user.Name,
		},
	}, nil
}
