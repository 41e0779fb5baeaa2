package portal

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Reason codes carried on structured errors. Failures that render as the
// same HTTP status stay distinguishable in logs through these.
const (
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeNoToken           = "NO_TOKEN"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeUnknownKind       = "UNKNOWN_PRINCIPAL_KIND"
	TextCodeIdentityNotFound  = "IDENTITY_NOT_FOUND"
	TextCodeDeactivated       = "ACCOUNT_DEACTIVATED"
	TextCodeWrongRole         = "WRONG_ROLE"
	TextCodeNotOwner          = "NOT_RESOURCE_OWNER"
	TextCodeDuplicateEmail    = "DUPLICATE_EMAIL"
	TextCodeJobNotFound       = "JOB_NOT_FOUND"
	TextCodeJobClosed         = "JOB_CLOSED"
	TextCodeResumeMissing     = "RESUME_MISSING"
	TextCodeAppNotFound       = "APPLICATION_NOT_FOUND"
	TextCodeInvalidStatus     = "INVALID_STATUS"
	TextCodeInvalidTransition = "INVALID_STATUS_TRANSITION"
)

// ErrInvalidCredentials is the generic login failure. It deliberately does
// not distinguish "email not registered" from "wrong password".
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoToken is returned when a protected route receives no bearer token.
var ErrNoToken = errors.New("no token", errors.CategoryAuth).
	WithTextCode(TextCodeNoToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token verifies but is past its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail signature or shape checks.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrUnknownPrincipalKind is returned when a token's principal-kind tag is
// absent or names no known collection. Resolution never falls back to
// probing collections.
var ErrUnknownPrincipalKind = errors.New("token has no valid principal kind", errors.CategoryAuth).
	WithTextCode(TextCodeUnknownKind).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is returned when the declared subject no longer
// exists in its collection (e.g. deleted after issuance).
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDeactivated is returned for a resolved but deactivated
// principal. Distinct from ErrIdentityNotFound for observability; both
// render as 401.
var ErrAccountDeactivated = errors.New("account is deactivated", errors.CategoryAuth).
	WithTextCode(TextCodeDeactivated).
	WithCode(errors.CodeUnauthorized)

// ErrWrongRole is returned when the caller's role is outside the allowed
// set for an operation.
var ErrWrongRole = errors.New("role not allowed for this operation", errors.CategoryAuthz).
	WithTextCode(TextCodeWrongRole).
	WithCode(errors.CodeForbidden)

// ErrNotResourceOwner is returned when a non-administrator mutates a
// resource it did not create. Logged under a different reason code than
// ErrWrongRole; both render as 403.
var ErrNotResourceOwner = errors.New("caller does not own this resource", errors.CategoryAuthz).
	WithTextCode(TextCodeNotOwner).
	WithCode(errors.CodeForbidden)

// ErrDuplicateEmail is returned when an email already exists in the same
// collection. The same address in a different collection is legal.
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeConflict)

// ErrJobNotFound is returned for an absent job posting.
var ErrJobNotFound = errors.New("job not found", errors.CategoryNotFound).
	WithTextCode(TextCodeJobNotFound).
	WithCode(errors.CodeNotFound)

// ErrJobClosed is returned when applying to a job whose deadline passed or
// whose status is closed.
var ErrJobClosed = errors.New("job is closed for applications", errors.CategoryValidation).
	WithTextCode(TextCodeJobClosed).
	WithCode(errors.CodeBadRequest)

// ErrResumeMissing is returned when a submission carries no well-formed
// resume artifact reference.
var ErrResumeMissing = errors.New("resume reference is missing or malformed", errors.CategoryValidation).
	WithTextCode(TextCodeResumeMissing).
	WithCode(errors.CodeBadRequest)

// ErrApplicationNotFound is returned for an absent application record.
var ErrApplicationNotFound = errors.New("application not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAppNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidStatus is returned when a caller supplies a status outside
// {approved, rejected}.
var ErrInvalidStatus = errors.New("invalid application status", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidStatus).
	WithCode(errors.CodeBadRequest)

// ErrInvalidTransition is returned for a disallowed status transition.
var ErrInvalidTransition = errors.New("invalid application status transition", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString guards against hashing empty passwords.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword wraps a bcrypt mismatch into the generic
// credentials failure.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens, including errors that
// only surface the jwt library's message.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed-token errors.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsDuplicateKeyError recognizes unique-constraint violations across the
// sqlite and postgres drivers we run on.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
