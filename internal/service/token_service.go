package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/jbf-storefront/internal/denylist"
	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)

// TokenClaims is the payload of a session token.
type TokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Session is a validated token.
type Session struct {
	Subject   domain.Subject
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService signs and verifies stateless HS256 session tokens. Revoked
// token ids are looked up in the denylist.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	denylist denylist.Store
	logger   *zap.Logger
	now      func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, store denylist.Store, logger *zap.Logger) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		denylist: store,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue signs a token for subject, valid from now for the configured TTL.
func (s *TokenService) Issue(subject domain.Subject) (string, time.Time, error) {
	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	claims := TokenClaims{
		Email: subject.Email,
		Name:  subject.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate returns the session for a well-signed, unexpired, unrevoked token.
// Every verification failure is reported as ErrInvalidToken.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	var claims TokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// The jwt library accepts a token at the exact expiry second; the window is half-open.
	if !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || claims.ID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Fail closed: a token that cannot be checked is not trusted.
			s.logger.Error("denylist lookup failed", zap.Error(err))
			return nil, ErrInvalidToken
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	return &Session{
		Subject:   domain.Subject{ID: id, Email: claims.Email, Name: claims.Name},
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke denies the session's token until it would have expired.
func (s *TokenService) Revoke(ctx context.Context, session *Session) error {
	if s.denylist == nil {
		return errors.New("token revocation is not configured")
	}
	if err := s.denylist.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
