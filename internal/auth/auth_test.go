package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamsps/maintenance-portal/internal/model"
)

func testUser() model.User {
	return model.User{
		ID:       uuid.New(),
		ClientID: uuid.New(),
		Email:    "jane@example.com",
		Name:     "Jane",
		Role:     model.RoleClientAdmin,
	}
}

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)
	user := testUser()

	token, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token.ID)

	principal, expiresAt, err := m.Parse(token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, user.ClientID, principal.ClientID)
	assert.Equal(t, model.RoleClientAdmin, principal.Role)
	assert.Equal(t, token.ID, principal.TokenID)
	assert.WithinDuration(t, token.ExpiresAt, expiresAt, time.Second)
}

func TestParseRejectsWrongSecretAndExpired(t *testing.T) {
	user := testUser()
	token, err := NewManager("secret", time.Hour).Issue(user)
	require.NoError(t, err)

	_, _, err = NewManager("other", time.Hour).Parse(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(user)
	require.NoError(t, err)
	_, _, err = NewManager("secret", time.Hour).Parse(old.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	user := testUser()
	claims := Claims{UserID: user.ID.String(), ClientID: user.ClientID.String(), Role: "admin"}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = NewManager("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRevocations(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevocations()

	require.NoError(t, r.Revoke(ctx, "a", time.Now().Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "stale", time.Now().Add(-time.Hour)))

	revoked, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = r.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)
}
