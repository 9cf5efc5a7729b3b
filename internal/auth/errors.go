package auth

import "errors"

// Domain errors
var (
	// ErrInvalidCredentials covers both unknown-email and wrong-password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a malformed or badly signed token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrUnauthorized is the collapsed form of the token errors above for
	// callers that must not distinguish them.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrWrongPurpose indicates a validly signed token presented to an
	// endpoint expecting a different purpose claim.
	ErrWrongPurpose = errors.New("invalid token purpose")

	// ErrInvalidOTP covers a mismatched reset code.
	ErrInvalidOTP = errors.New("the code you entered is incorrect")

	// ErrExpiredOTP covers a matched but stale reset code.
	ErrExpiredOTP = errors.New("the reset code has expired")

	// ErrProviderEmailMissing is returned when a federated provider does not
	// supply a public email. There is no fallback identifier.
	ErrProviderEmailMissing = errors.New("provider account must have a public email")

	// ErrMissingSecret is a configuration error: a realm's token secret is
	// absent. Fatal at startup, never handled per-request.
	ErrMissingSecret = errors.New("token secret is not configured")
)
