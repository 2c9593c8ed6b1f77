package service

import (
	"context"
	"testing"
	"time"

	"github.com/dom/jbf-storefront/internal/denylist"
	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-key-for-testing-only"

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newTestTokens(t *testing.T, c *clock) (*TokenService, *denylist.Memory) {
	t.Helper()
	store := denylist.NewMemory()
	svc := NewTokenService(testSecret, 24*time.Hour, store, nil)
	svc.now = c.Now
	return svc, store
}

func testSubject() domain.Subject {
	return domain.Subject{ID: uuid.New(), Email: "admin@example.com", Name: "Admin"}
}

func TestTokenService_ValidityWindow(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{t: issued}
	tokens, _ := newTestTokens(t, c)

	subject := testSubject()
	token, expiresAt, err := tokens.Issue(subject)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour), expiresAt)

	tests := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"at issuance", issued, true},
		{"one hour later", issued.Add(time.Hour), true},
		{"one second before expiry", issued.Add(24*time.Hour - time.Second), true},
		{"one nanosecond before expiry", issued.Add(24*time.Hour - time.Nanosecond), true},
		{"at expiry", issued.Add(24 * time.Hour), false},
		{"after expiry", issued.Add(25 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.t = tt.at
			session, err := tokens.Validate(context.Background(), token)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, subject, session.Subject)
			assert.Equal(t, expiresAt, session.ExpiresAt)
		})
	}
}

func TestTokenService_IssueTruncatesToSeconds(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 900_000_000, time.UTC)
	c := &clock{t: issued}
	tokens, _ := newTestTokens(t, c)

	token, expiresAt, err := tokens.Issue(testSubject())
	require.NoError(t, err)
	assert.Equal(t, issued.Truncate(time.Second).Add(24*time.Hour), expiresAt)

	// Still valid at the exact (sub-second) issuance instant.
	_, err = tokens.Validate(context.Background(), token)
	assert.NoError(t, err)
}

func TestTokenService_RejectsTampering(t *testing.T) {
	c := &clock{t: time.Now()}
	tokens, _ := newTestTokens(t, c)

	token, _, err := tokens.Issue(testSubject())
	require.NoError(t, err)

	other := NewTokenService("a-completely-different-signing-secret", 24*time.Hour, nil, nil)
	other.now = c.Now
	foreign, _, err := other.Issue(testSubject())
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(c.t),
		ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  uuid.NewString(),
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(c.t),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"truncated signature", token[:len(token)-4]},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"missing expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Validate(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_Revoke(t *testing.T) {
	c := &clock{t: time.Now()}
	tokens, _ := newTestTokens(t, c)
	ctx := context.Background()

	token, _, err := tokens.Issue(testSubject())
	require.NoError(t, err)
	other, _, err := tokens.Issue(testSubject())
	require.NoError(t, err)

	session, err := tokens.Validate(ctx, token)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(ctx, session))

	_, err = tokens.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Revocation is per token, not per subject.
	_, err = tokens.Validate(ctx, other)
	assert.NoError(t, err)
}
