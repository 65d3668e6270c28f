package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors carry their own codes
// (for example RETURN_EXISTS or SCHEDULE_CONFLICT); these constants
// cover failures that originate in the HTTP layer itself.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodePayloadSize  = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes that do not follow the
// naming conventions below to their HTTP status.
var errorCodeHTTPStatus = map[string]int{
	// auth
	"UNAUTHORIZED":        http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"TOKEN_ERROR":         http.StatusUnauthorized,
	"FORBIDDEN":           http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,
	"ACCOUNT_SUSPENDED":   http.StatusForbidden,

	// state conflicts that don't carry a conflict-shaped name
	"LEAD_CLOSED":          http.StatusConflict,
	"TASK_CLOSED":          http.StatusConflict,
	"RETURN_RESOLVED":      http.StatusConflict,
	"UPLOAD_MISSING":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// unprocessable business rules
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,
	"NO_PREPARER":        http.StatusUnprocessableEntity,
	"NO_TIER":            http.StatusUnprocessableEntity,
	"UNKNOWN_PAPER":      http.StatusUnprocessableEntity,
	"UNKNOWN_TURNAROUND": http.StatusUnprocessableEntity,
	"UNKNOWN_ADDON":      http.StatusUnprocessableEntity,
	"PRODUCT_INACTIVE":   http.StatusUnprocessableEntity,
	"INVALID_FORMULA":    http.StatusUnprocessableEntity,
	"NOT_UPLOADED":       http.StatusUnprocessableEntity,
	"UNSUPPORTED_TYPE":   http.StatusUnprocessableEntity,

	// upstream dependencies
	"ALL_CARRIERS_FAILED": http.StatusBadGateway,
	"STORAGE_ERROR":       http.StatusBadGateway,
	"NO_CARRIERS":         http.StatusServiceUnavailable,

	"NOT_FOUND":         http.StatusNotFound,
	"VALIDATION_ERROR":  http.StatusBadRequest,
	"BAD_REQUEST":       http.StatusBadRequest,
	"RATE_LIMITED":      http.StatusTooManyRequests,
	"PAYLOAD_TOO_LARGE": http.StatusRequestEntityTooLarge,
	"INTERNAL_ERROR":    http.StatusInternalServerError,
}

// GetHTTPStatus resolves a domain error code to an HTTP status.
// Explicit mappings win; otherwise the code's naming convention
// decides, and unknown codes fall back to 500 so nothing leaks a
// misleading success-adjacent status.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}

	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "ALREADY_"),
		strings.HasSuffix(code, "_EXISTS"),
		strings.HasSuffix(code, "_TAKEN"),
		strings.HasSuffix(code, "_LOCKED"),
		strings.HasSuffix(code, "_CONFLICT"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"),
		strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
