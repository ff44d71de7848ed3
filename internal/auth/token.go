package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is used when TokenConfig.Issuer is empty.
const DefaultIssuer = "chirpy"

// TokenConfig configures a TokenManager.
type TokenConfig struct {
	Issuer string
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// TokenManager issues and validates HS256 access tokens. The signing secret is passed per
// call so it can rotate without rebuilding the manager.
type TokenManager struct {
	issuer string
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	tm := &TokenManager{issuer: cfg.Issuer, now: cfg.Now}
	if tm.issuer == "" {
		tm.issuer = DefaultIssuer
	}
	if tm.now == nil {
		tm.now = time.Now
	}
	return tm
}

// Issuer returns the iss claim written into and required of every token.
func (tm *TokenManager) Issuer() string {
	return tm.issuer
}

// MakeJWT signs {iss, sub, iat, exp} where exp = iat + expiresIn. Duration policy belongs to
// the caller; no clamping happens here.
func (tm *TokenManager) MakeJWT(subject string, expiresIn time.Duration, secret string) (string, error) {
	issuedAt := tm.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tm.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(expiresIn)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT verifies signature, algorithm, expiry and issuer and returns the subject.
// Every failure wraps ErrAuthenticationFailure.
func (tm *TokenManager) ValidateJWT(tokenString, secret string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)

	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthenticationFailure, err)
	}
	if !parsed.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrAuthenticationFailure)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: %w", ErrAuthenticationFailure, ErrTokenMissingSubject)
	}
	return claims.Subject, nil
}

// IsExpired reports whether a validation error was caused by the exp claim.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
