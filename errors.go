package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Wire codes carried on auth failures. The GraphQL layer returns them
// verbatim in the response error list.
const (
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeUserDeleted        = "USER_DELETED"
	TextCodeUserDeactivated    = "USER_DEACTIVATED"
	TextCodeUserLockedOut      = "USER_LOCKED_OUT"
	TextCodeInvalidCredentials = "USER_INVALID_CREDENTIALS"
	TextCodeEmailUnverified    = "USER_EMAIL_UNVERIFIED"
	TextCodeTokenSigning       = "TOKEN_SIGNING_FAILURE"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeInvalidInput       = "INVALID_INPUT"
	TextCodeInternal           = "INTERNAL_ERROR"
)

// ErrUserNotFound is returned when no account matches the login identifier
var ErrUserNotFound = goerrors.New("no account matches the provided email", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserDeleted is returned for soft deleted accounts
var ErrUserDeleted = goerrors.New("account has been deleted", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserDeleted).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserDeactivated is returned for accounts with activation revoked
var ErrUserDeactivated = goerrors.New("account has been deactivated", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserDeactivated).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserLockedOut is returned while a login lockout is in effect
var ErrUserLockedOut = goerrors.New("account is temporarily locked out", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserLockedOut).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials is returned on a password mismatch
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailUnverified is returned when the account email has not been
// confirmed. This is the one validator failure the orchestrator treats
// specially: it re-sends the verification email.
var ErrEmailUnverified = goerrors.New("email address has not been verified", goerrors.CategoryAuth).
	WithTextCode(TextCodeEmailUnverified).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingSigningKey is a startup misconfiguration, never a per-request
// condition.
var ErrMissingSigningKey = goerrors.New("token signing key is not configured", goerrors.CategoryInternal).
	WithTextCode(TextCodeTokenSigning)

// ErrTokenExpired is returned when validating an expired token
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token fails parsing or signature checks
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the low level bcrypt mismatch
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be an empty string")

// ErrUnableToDecodeSession unable to decode JWT claims into a session
var ErrUnableToDecodeSession = errors.New("unable to decode session")

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims")

// TextCode extracts the wire code from a rich error, or TextCodeInternal when
// the error has no code of its own.
func TextCode(err error) string {
	if err == nil {
		return ""
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		return rich.TextCode
	}

	return TextCodeInternal
}

// IsEmailUnverified checks for the unverified-email failure kind
func IsEmailUnverified(err error) bool {
	return TextCode(err) == TextCodeEmailUnverified
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return err != nil && TextCode(err) == TextCodeTokenExpired
}

// IsMalformedError will check for undecodable or tampered tokens
func IsMalformedError(err error) bool {
	return err != nil && TextCode(err) == TextCodeTokenMalformed
}
