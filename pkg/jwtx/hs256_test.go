package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("test-secret"), "threatcombat")
	now := time.Now().UTC()

	claims := NewSessionClaims("user-1", "chapter_admin", "chapter-9", "admin@example.edu", "threatcombat", time.Hour, now)
	raw, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "chapter_admin", got.Role)
	require.Equal(t, "chapter-9", got.Chapter)
	require.Equal(t, "admin@example.edu", got.Email)
	require.NoError(t, got.ValidateExpiry())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewHS256([]byte("secret-a"), "threatcombat")
	verifier := NewHS256([]byte("secret-b"), "threatcombat")

	raw, err := signer.Sign(NewSessionClaims("u", "member", "", "", "threatcombat", time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("secret"), "threatcombat")
	past := time.Now().Add(-2 * time.Hour)

	raw, err := h.Sign(NewSessionClaims("u", "member", "", "", "threatcombat", time.Hour, past))
	require.NoError(t, err)

	_, err = h.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("secret"), "threatcombat")
	_, err := h.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsIssuerMismatch(t *testing.T) {
	t.Parallel()

	signer := NewHS256([]byte("secret"), "someone-else")
	verifier := NewHS256([]byte("secret"), "threatcombat")

	raw, err := signer.Sign(NewSessionClaims("u", "member", "", "", "someone-else", time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestNewJTIUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 64 {
		jti := NewJTI()
		_, dup := seen[jti]
		require.False(t, dup)
		seen[jti] = struct{}{}
	}
}
