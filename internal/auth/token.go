package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/williamsps/maintenance-portal/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID   string `json:"uid"`
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Manager signs and verifies HS256 access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *Manager) Issue(user model.User) (*Token, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	jti := uuid.New().String()

	claims := Claims{
		UserID:   user.ID.String(),
		ClientID: user.ClientID.String(),
		Role:     string(user.Role),
		Name:     user.Name,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &Token{Value: signed, ID: jti, ExpiresAt: expiresAt}, nil
}

// Parse verifies the token and returns the principal it carries.
func (m *Manager) Parse(raw string) (model.Principal, time.Time, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return model.Principal{}, time.Time{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.Principal{}, time.Time{}, ErrInvalidToken
	}
	clientID, err := uuid.Parse(claims.ClientID)
	if err != nil {
		return model.Principal{}, time.Time{}, ErrInvalidToken
	}
	role := model.Role(claims.Role)
	if !role.Valid() {
		return model.Principal{}, time.Time{}, ErrInvalidToken
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return model.Principal{
		UserID:   userID,
		ClientID: clientID,
		Role:     role,
		Name:     claims.Name,
		Email:    claims.Email,
		TokenID:  claims.ID,
	}, expiresAt, nil
}
