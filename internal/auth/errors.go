package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrAlreadyExists      = errors.New("auth: already exists")
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUnauthorized       = errors.New("auth: unauthorized")
	ErrAlreadyVerified    = errors.New("auth: email already verified")

	// ErrInvalidToken indicates a signed token failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrSessionRevoked indicates a well-formed refresh token that no longer
	// matches the one recorded on the principal.
	ErrSessionRevoked = errors.New("auth: session expired or revoked")

	// ErrTokenInvalidOrExpired is the uniform outcome for single-use token
	// failures; digest mismatch and expiry are indistinguishable to callers.
	ErrTokenInvalidOrExpired = errors.New("auth: invalid or expired token")
)
