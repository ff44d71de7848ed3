package auth

import "strings"

const bearerPrefix = "Bearer "

// GetBearerToken extracts the token from an Authorization header value. An empty value means
// the header was not sent. Only the first "Bearer " prefix is stripped, so
// "Bearer Bearer abc" yields "Bearer abc".
func GetBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}

	trimmed := strings.TrimSpace(header)
	if len(trimmed) <= len(bearerPrefix) || !strings.EqualFold(trimmed[:len(bearerPrefix)], bearerPrefix) {
		return "", ErrMalformedHeader
	}

	token := strings.TrimSpace(trimmed[len(bearerPrefix):])
	if token == "" {
		return "", ErrMalformedHeader
	}
	return token, nil
}
