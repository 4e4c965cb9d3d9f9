// Package service implements registration, sign in and sessions.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ncobase/taskdesk/core/auth/data/repository"
	"github.com/ncobase/taskdesk/core/auth/structs"
	"github.com/ncobase/taskdesk/logging/logger"
	securityjwt "github.com/ncobase/taskdesk/security/jwt"
	"github.com/ncobase/taskdesk/types"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	revocation   repository.Revocation
	tokenManager *securityjwt.TokenManager
	clock        types.Clock
}

// NewService wires the repositories. revocation may be nil, in which case
// a deleted session alone invalidates its token.
func NewService(users repository.UserRepository, sessions repository.SessionRepository, revocation repository.Revocation, tm *securityjwt.TokenManager, clock types.Clock) *Service {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Service{
		users:        users,
		sessions:     sessions,
		revocation:   revocation,
		tokenManager: tm,
		clock:        clock,
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (*structs.User, error) {
	email = normalizeEmail(email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, structs.ErrEmailTaken
	} else if !errors.Is(err, structs.ErrUserNotFound) {
		return nil, err
	}

	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &structs.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "User registered", "user_id", user.ID, "email", email)
	return user, nil
}

// Login checks the password and opens a session. The access token carries
// the session id as its jti.
func (s *Service) Login(ctx context.Context, email, password string) (*structs.TokenResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, structs.ErrUserNotFound) {
			return nil, structs.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, structs.ErrInvalidCredentials
	}

	now := s.clock.Now().UTC()
	session := &structs.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokenManager.Expire()),
		CreatedAt: now,
	}

	token, err := s.tokenManager.GenerateAccessToken(session.ID, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	logger.Info(ctx, "User logged in", "user_id", user.ID, "session_id", session.ID)
	return &structs.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenManager.Expire().Seconds()),
		User:        user,
	}, nil
}

// Authenticate resolves an access token to its identity. Tokens of
// signed-out or expired sessions are rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (*structs.Identity, error) {
	claims, err := s.tokenManager.DecodeToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", structs.ErrInvalidToken, err)
	}

	jti := securityjwt.GetTokenIDFromToken(claims)
	userID := securityjwt.GetUserIDFromToken(claims)
	if jti == "" || userID == "" {
		return nil, structs.ErrInvalidToken
	}

	if s.revocation != nil {
		revoked, err := s.revocation.Revoked(ctx, jti)
		if err != nil {
			logger.Warn(ctx, "revocation lookup failed", "session_id", jti, "error", err)
		} else if revoked {
			return nil, structs.ErrInvalidToken
		}
	}

	session, err := s.sessions.FindByID(ctx, jti)
	if err != nil {
		if errors.Is(err, structs.ErrSessionNotFound) {
			return nil, structs.ErrInvalidToken
		}
		return nil, err
	}
	if session.UserID != userID || !s.clock.Now().Before(session.ExpiresAt) {
		return nil, structs.ErrInvalidToken
	}

	return &structs.Identity{
		UserID:    userID,
		Email:     securityjwt.GetEmailFromToken(claims),
		SessionID: jti,
		Token:     token,
	}, nil
}

// SignOut ends a session. Signing out of a session that no longer exists
// succeeds.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, structs.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, structs.ErrSessionNotFound) {
		return err
	}
	if s.revocation != nil {
		ttl := session.ExpiresAt.Sub(s.clock.Now())
		if err := s.revocation.Revoke(ctx, sessionID, ttl); err != nil {
			logger.Warn(ctx, "failed to revoke token", "session_id", sessionID, "error", err)
		}
	}

	logger.Info(ctx, "User signed out", "user_id", session.UserID, "session_id", sessionID)
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, userID string) (*structs.User, error) {
	return s.users.FindByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
