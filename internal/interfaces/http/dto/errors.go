package dto

import "net/http"

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to 500.
var ErrorCodeHTTPStatus = map[string]int{
	// Input and validation errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_BATCH_NUMBER": http.StatusBadRequest,
	"INVALID_PRODUCT":      http.StatusBadRequest,
	"INVALID_SOURCE_KIND":  http.StatusBadRequest,
	"INVALID_SOURCE_REF":   http.StatusBadRequest,
	"INVALID_DIRECTION":    http.StatusBadRequest,
	"INVALID_AMOUNT":       http.StatusBadRequest,

	// Resource errors
	"NOT_FOUND":         http.StatusNotFound,
	"BATCH_NOT_FOUND":   http.StatusNotFound,
	"PRODUCT_NOT_FOUND": http.StatusNotFound,
	"ALREADY_EXISTS":    http.StatusConflict,

	// Concurrency and duplicate-commit errors -> 409 Conflict
	"CONCURRENT_MODIFICATION":  http.StatusConflict,
	"SOURCE_ALREADY_PROCESSED": http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_QUANTITY":        http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":      http.StatusUnprocessableEntity,
	"MISSING_UNIT_COST":       http.StatusUnprocessableEntity,
	"APPORTIONMENT_UNDEFINED": http.StatusUnprocessableEntity,
	"INVALID_COST":            http.StatusUnprocessableEntity,
	"INVALID_RELEASE":         http.StatusUnprocessableEntity,
	"PRODUCT_MISMATCH":        http.StatusUnprocessableEntity,
	"PRODUCT_DISCONTINUED":    http.StatusUnprocessableEntity,

	// General
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not mapped.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
