package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", 60)

	token, err := tm.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)
	assert.Equal(t, "user-123", token.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 2*time.Second)

	userID, err := tm.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestIssue_FreshTokenEveryCall(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("k", 60)
	first, err := tm.Issue("u1")
	require.NoError(t, err)
	second, err := tm.Issue("u1")
	require.NoError(t, err)

	assert.NotEqual(t, first.Value, second.Value)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Now()
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return issuedAt }

	token, err := tm.Issue("u1")
	require.NoError(t, err)

	tm.now = func() time.Time { return token.ExpiresAt }
	_, err = tm.Verify(token.Value)
	assert.ErrorIs(t, err, ErrTokenExpired)

	tm.now = func() time.Time { return token.ExpiresAt.Add(-time.Second) }
	_, err = tm.Verify(token.Value)
	assert.NoError(t, err)
}

func TestVerify_Invalid(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("right-secret", 60)
	other := NewTokenManager("wrong-secret", 60)
	foreign, err := other.Issue("u2")
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "u3",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u3"},
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID: "u4",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u4",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: foreign.Value},
		{name: "malformed", token: "not.a.jwt"},
		{name: "empty", token: ""},
		{name: "missing expiry", token: noExpiry},
		{name: "unexpected algorithm", token: wrongAlg},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tm.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
