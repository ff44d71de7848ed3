package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/chirpy/internal/domain"
	"github.com/spec-kit/chirpy/internal/repository"
	apperrors "github.com/spec-kit/chirpy/pkg/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	User   *domain.User
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	secret string
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, secret string, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, secret: secret, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := GetBearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return HTTPError(err)
	}

	subject, err := m.tokens.ValidateJWT(raw, m.secret)
	if err != nil {
		return HTTPError(err)
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return apperrors.Unauthorized("invalid token subject", ErrAuthenticationFailure)
	}

	user, err := m.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Unauthorized("user not found", ErrAuthenticationFailure)
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{UserID: user.ID, User: user})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// HTTPError maps auth errors onto domain errors carrying an HTTP status.
func HTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMissingHeader):
		return apperrors.Unauthorized("missing authorization header", err)
	case errors.Is(err, ErrMalformedHeader):
		return apperrors.Unauthorized("invalid authorization header", err)
	case IsExpired(err):
		return apperrors.Unauthorized("token expired", err)
	case errors.Is(err, ErrAuthenticationFailure):
		return apperrors.Unauthorized("invalid token", err)
	case errors.Is(err, ErrInvalidCredentials):
		return apperrors.Unauthorized("incorrect email or password", err)
	case errors.Is(err, ErrHashingFailure):
		return apperrors.NewInternalError(err)
	default:
		return apperrors.MapError(err)
	}
}
