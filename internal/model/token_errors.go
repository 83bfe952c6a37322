package model

import "errors"

var (
	// ErrTokenInvalid covers tokens that were never issued or whose stored
	// record no longer matches the presented value. Callers outside the admin
	// surface must not distinguish it from revoked/expired.
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenExpired = errors.New("token expired")

	// ErrDuplicateToken signals a hash or jti collision on issuance. The
	// issuance attempt is dead; the caller re-mints with a fresh token.
	ErrDuplicateToken = errors.New("duplicate token")

	ErrPoolExhausted      = errors.New("credential pool exhausted")
	ErrAssignmentNotFound = errors.New("assignment not found")
)
