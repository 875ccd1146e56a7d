package auth

import "errors"

// Errors returned to callers of the resolver and the role gate. Token
// failure subtypes never cross this boundary.
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

// Errors produced by the token codec.
var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
	ErrEmptySubject      = errors.New("token subject is empty")
)

// Errors produced by the credential hasher.
var (
	ErrEmptySecret   = errors.New("secret is empty")
	ErrSecretTooLong = errors.New("secret exceeds 72 bytes")
)
