package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

var errInvalidCredentials = apperrors.NewUnauthorized("invalid email or password", nil)

type Service struct {
	userRepo    repository.UserRepository
	hasher      security.PasswordHasher
	jwtSvc      auth.JWTService
	revocations *auth.RevocationList
	now         func() time.Time
}

func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher,
	jwtSvc auth.JWTService, revocations *auth.RevocationList) *Service {
	return &Service{
		userRepo:    userRepo,
		hasher:      hasher,
		jwtSvc:      jwtSvc,
		revocations: revocations,
		now:         time.Now,
	}
}

// Login verifies credentials and issues an access token. Five consecutive
// failures lock the account for fifteen minutes.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := s.now().UTC()
	switch user.Status {
	case model.UserStatusDisabled:
		return nil, apperrors.NewUnauthorized("account is disabled", nil)
	case model.UserStatusLocked:
		if user.LastLoginAttempt != nil && now.Sub(*user.LastLoginAttempt) < lockoutDuration {
			return nil, apperrors.NewUnauthorized("account is locked, please try again later", nil)
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, security.ErrMismatch) {
			return nil, fmt.Errorf("failed to compare password: %w", err)
		}
		user.LoginAttempts++
		user.LastLoginAttempt = &now
		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.UserStatusLocked
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", err)
		}
		return nil, errInvalidCredentials
	}

	// Reset login attempts on successful login
	user.LoginAttempts = 0
	user.LastLoginAttempt = &now
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	token, claims, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
	}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.NewUnauthorized("missing token", nil)
	}
	until := s.now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(ctx, claims.ID, until); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}
