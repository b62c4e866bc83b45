package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/williamsps/maintenance-portal/internal/auth"
	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/repository"
)

type AuthService struct {
	repos       *repository.Repositories
	tokens      *auth.Manager
	revocations auth.Revocations
	now         func() time.Time
}

func NewAuthService(repos *repository.Repositories, tokens *auth.Manager, revocations auth.Revocations) *AuthService {
	return &AuthService{repos: repos, tokens: tokens, revocations: revocations, now: time.Now}
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.repos.Users.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return &LoginResult{Token: token.Value, ExpiresAt: token.ExpiresAt, User: user}, nil
}

// Authenticate turns a bearer token into the principal of a still-active user.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (model.Principal, time.Time, error) {
	principal, expiresAt, err := s.tokens.Parse(raw)
	if err != nil {
		return model.Principal{}, time.Time{}, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}
	revoked, err := s.revocations.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		return model.Principal{}, time.Time{}, err
	}
	if revoked {
		return model.Principal{}, time.Time{}, fmt.Errorf("%w: token has been revoked", ErrUnauthorized)
	}

	user, err := s.repos.Users.Get(ctx, principal.UserID)
	if err != nil || !user.Active {
		return model.Principal{}, time.Time{}, fmt.Errorf("%w: account is not active", ErrUnauthorized)
	}
	current := user.Principal()
	current.TokenID = principal.TokenID
	return current, expiresAt, nil
}

func (s *AuthService) Me(ctx context.Context, principal model.Principal) (*model.User, error) {
	user, err := s.repos.Users.Get(ctx, principal.UserID)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, principal model.Principal, expiresAt time.Time) error {
	if principal.TokenID == "" {
		return nil
	}
	return s.revocations.Revoke(ctx, principal.TokenID, expiresAt)
}

// ClientContext validates an admin's X-Client-Context target.
func (s *AuthService) ClientContext(ctx context.Context, id uuid.UUID) error {
	_, err := s.repos.Clients.Get(ctx, id)
	return translate(err, "client")
}
