package platform

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims TokenClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims() TokenClaims {
	return TokenClaims{
		Email: "seller@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testUserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	v := NewJWTVerifier("secret")
	tok := signToken(t, "secret", jwt.SigningMethodHS256, validClaims())

	u, err := v.ResolveUser(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, u.ID.String())
	assert.Equal(t, "seller@example.com", u.Email)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	v := NewJWTVerifier("secret")
	tok := signToken(t, "other", jwt.SigningMethodHS256, validClaims())

	_, err := v.ResolveUser(context.Background(), tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTVerifier_Expired(t *testing.T) {
	v := NewJWTVerifier("secret")
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	_, err := v.ResolveUser(context.Background(), signToken(t, "secret", jwt.SigningMethodHS256, claims))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTVerifier_RejectsOtherAlgorithms(t *testing.T) {
	v := NewJWTVerifier("secret")
	tok := signToken(t, "secret", jwt.SigningMethodHS512, validClaims())

	_, err := v.ResolveUser(context.Background(), tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTVerifier_NonUUIDSubject(t *testing.T) {
	v := NewJWTVerifier("secret")
	claims := validClaims()
	claims.Subject = "not-a-uuid"

	_, err := v.ResolveUser(context.Background(), signToken(t, "secret", jwt.SigningMethodHS256, claims))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTVerifier_Garbage(t *testing.T) {
	_, err := NewJWTVerifier("secret").ResolveUser(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewResolver(t *testing.T) {
	remote := newTestClient(t, "http://localhost")
	assert.Same(t, remote, NewResolver("", remote))
	assert.IsType(t, &JWTVerifier{}, NewResolver("secret", remote))
}
