package dto

import (
	"net/http"
	"strings"
)

// Error codes sent to clients. Domain error codes are exposed with the
// ERR_ prefix, so INSUFFICIENT_STOCK becomes ERR_INSUFFICIENT_STOCK.
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeBodyTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"
	ErrCodeUnavailable  = "ERR_SERVICE_UNAVAILABLE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeTokenUsed          = "ERR_TOKEN_USED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeEmailNotConfirmed  = "ERR_EMAIL_NOT_CONFIRMED"
	ErrCodeAccountDeactivated = "ERR_ACCOUNT_DEACTIVATED"
)

// Resource error codes
const (
	ErrCodeNotFound             = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists        = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict  = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeRegistrationRejected = "ERR_REGISTRATION_REJECTED"
)

// Business rule error codes
const (
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock  = "ERR_INSUFFICIENT_STOCK"
	ErrCodeProductImmutable   = "ERR_PRODUCT_IMMUTABLE"
	ErrCodeUsageLimitExceeded = "ERR_USAGE_LIMIT_EXCEEDED"
)

const errPrefix = "ERR_"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes missing
// here fall back through GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeTokenUsed:          http.StatusBadRequest,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeEmailNotConfirmed:  http.StatusForbidden,
	ErrCodeAccountDeactivated: http.StatusForbidden,

	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	ErrCodeRegistrationRejected: http.StatusConflict,

	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeProductImmutable:   http.StatusUnprocessableEntity,
	ErrCodeUsageLimitExceeded: http.StatusForbidden,
}

// GetHTTPStatus returns the status for code. Unlisted ERR_INVALID_* codes
// are input errors; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, errPrefix+"INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode turns a domain error code into its API form
func NormalizeErrorCode(code string) string {
	switch code {
	case "", "INTERNAL_ERROR", "PASSWORD_HASH_ERROR":
		return ErrCodeInternal
	}
	if strings.HasPrefix(code, errPrefix) {
		return code
	}
	return errPrefix + code
}
