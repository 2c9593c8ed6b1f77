package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/limiter"
	"github.com/dom/jbf-storefront/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost puts a single verification in the tens of milliseconds.
const PasswordCost = 12

// RateLimitError is returned when login attempts are throttled.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error { return domain.ErrRateLimited }

type AuthService struct {
	adminRepo repository.AdminRepository
	tokens    *TokenService
	limiter   limiter.Limiter
	logger    *zap.Logger

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt verification.
	dummyHash []byte
}

func NewAuthService(adminRepo repository.AdminRepository, tokens *TokenService, lim limiter.Limiter, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), PasswordCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return &AuthService{
		adminRepo: adminRepo,
		tokens:    tokens,
		limiter:   lim,
		logger:    logger,
		dummyHash: dummy,
	}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientIP string `json:"-"`
}

type AuthResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Admin     domain.Subject `json:"admin"`
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		ok, retry, err := s.limiter.Allow(ctx, input.Email, input.ClientIP)
		if err != nil {
			return nil, fmt.Errorf("check login limit: %w", err)
		}
		if !ok {
			s.logger.Warn("login throttled", zap.String("email", input.Email), zap.String("ip", input.ClientIP))
			return nil, &RateLimitError{RetryAfter: retry}
		}
	}

	admin, err := s.adminRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash := s.dummyHash
	if admin != nil {
		hash = []byte(admin.PasswordHash)
	}
	match := bcrypt.CompareHashAndPassword(hash, []byte(input.Password)) == nil

	if admin == nil || !match {
		s.logger.Info("login rejected", zap.String("email", input.Email), zap.String("ip", input.ClientIP))
		if s.limiter != nil {
			if _, _, err := s.limiter.Failure(ctx, input.Email, input.ClientIP); err != nil {
				s.logger.Error("record login failure", zap.Error(err))
			}
		}
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Success(ctx, input.Email, input.ClientIP); err != nil {
			s.logger.Error("reset login failures", zap.Error(err))
		}
	}

	subject := admin.Subject()
	token, expiresAt, err := s.tokens.Issue(subject)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, Admin: subject}, nil
}

// Authenticate validates a bearer token for the authorization gate.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Session, error) {
	return s.tokens.Validate(ctx, token)
}

func (s *AuthService) Logout(ctx context.Context, session *Session) error {
	return s.tokens.Revoke(ctx, session)
}

func (s *AuthService) GetAdmin(ctx context.Context, session *Session) (*domain.AdminUser, error) {
	return s.adminRepo.GetByID(ctx, session.Subject.ID)
}

type EnsureAdminInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

// EnsureAdmin creates the admin or, if the email exists, resets its name and
// password. It reports whether a new record was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, input EnsureAdminInput) (*domain.AdminUser, bool, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), PasswordCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.adminRepo.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		existing.Name = input.Name
		existing.PasswordHash = string(hash)
		if err := s.adminRepo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, false, err
	}

	admin := &domain.AdminUser{
		Email:        input.Email,
		PasswordHash: string(hash),
		Name:         input.Name,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
