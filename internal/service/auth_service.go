package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/chirpy/internal/auth"
	"github.com/spec-kit/chirpy/internal/config"
	"github.com/spec-kit/chirpy/internal/domain"
	"github.com/spec-kit/chirpy/internal/events"
	"github.com/spec-kit/chirpy/internal/repository"
	apperrors "github.com/spec-kit/chirpy/pkg/errorutil"
)

// AuthService coordinates registration, login and account updates.
type AuthService struct {
	users          repository.UserRepository
	hasher         *auth.PasswordHasher
	tokens         *auth.TokenManager
	secret         string
	defaultSeconds int
	dispatcher     events.Dispatcher
	logger         *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Now overrides the token clock; nil means time.Now.
	Now func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users: deps.UserRepo,
		hasher: auth.NewPasswordHasher(auth.Argon2Params{
			Time:    uint32(cfg.Auth.ArgonTime),
			Memory:  uint32(cfg.Auth.ArgonMemoryKiB),
			Threads: uint8(cfg.Auth.ArgonThreads),
		}),
		tokens:         auth.NewTokenManager(auth.TokenConfig{Issuer: cfg.Auth.JWTIssuer, Now: deps.Now}),
		secret:         cfg.Auth.JWTSecret,
		defaultSeconds: cfg.Auth.DefaultTokenSeconds,
		dispatcher:     deps.Dispatcher,
		logger:         loggerOrNop(deps.Logger),
	}
}

// RegisterUser creates a new account with a hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Missing required fields", nil)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, auth.HTTPError(err)
	}

	user := &domain.User{Email: email, HashedPassword: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventUserCreated, user.ID, events.UserPayload{Email: user.Email}))
	return user, nil
}

// Login verifies credentials and issues an access token. expiresInSeconds is optional.
func (s *AuthService) Login(ctx context.Context, email, password string, expiresInSeconds *int) (*domain.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", apperrors.NewValidationError("Missing required fields", nil)
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", auth.HTTPError(auth.ErrInvalidCredentials)
		}
		return nil, "", err
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, "", auth.HTTPError(auth.ErrInvalidCredentials)
	}

	token, err := s.tokens.MakeJWT(user.ID.String(), s.TokenDuration(expiresInSeconds), s.secret)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// TokenDuration applies the login lifetime policy: an absent request, or one greater than the
// default, gets the default. Zero or negative requests give an already-expired token; they are
// floored at zero so the conversion to time.Duration cannot overflow.
func (s *AuthService) TokenDuration(expiresInSeconds *int) time.Duration {
	seconds := s.defaultSeconds
	if expiresInSeconds != nil && !(*expiresInSeconds > s.defaultSeconds) {
		seconds = *expiresInSeconds
	}
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds) * time.Second
}

// UpdateUser replaces the caller's email and password.
func (s *AuthService) UpdateUser(ctx context.Context, userID uuid.UUID, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Missing required fields", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, auth.HTTPError(err)
	}
	user.Email = email
	user.HashedPassword = hash

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventUserUpdated, user.ID, events.UserPayload{Email: user.Email}))
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
