package auth

import "errors"

// Credential errors.
var (
	ErrHashingFailure     = errors.New("auth: failed to hash password")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// Token errors. Every token validation failure wraps ErrAuthenticationFailure.
var (
	ErrAuthenticationFailure = errors.New("auth: authentication failed")
	ErrTokenMissingSubject   = errors.New("token: missing subject")
)

// Authorization header errors.
var (
	ErrMissingHeader   = errors.New("auth: authorization header not present")
	ErrMalformedHeader = errors.New("auth: invalid authorization header format")
)
