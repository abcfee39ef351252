package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification-code failures. ErrInvalidOrExpiredCode deliberately collapses
// "never issued", "already used" and "expired" into one outcome for the
// caller; the distinction is only logged.
var (
	ErrRateLimited          = errors.New("code requested too soon")
	ErrDeliveryFailed       = errors.New("code delivery failed")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrIncorrectCode        = errors.New("incorrect code")
)

// Token validation failures. All surface to the caller as unauthenticated.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)
