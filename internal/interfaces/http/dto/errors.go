package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeUnauthorized is used when the staff identity is missing or invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeBusinessRule is used for business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeTransactionFailed is used when a multi-step mutation rolled back
	ErrCodeTransactionFailed = "ERR_TRANSACTION_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:           http.StatusInternalServerError,
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeTransactionFailed: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps ledger domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                   ErrCodeNotFound,
	"INVALID_INPUT":               ErrCodeInvalidInput,
	"INVALID_AMOUNT":              ErrCodeInvalidInput,
	"INVALID_PAYMENT_METHOD":      ErrCodeInvalidInput,
	"INVALID_CATEGORY":            ErrCodeInvalidInput,
	"INVALID_DESCRIPTION":         ErrCodeInvalidInput,
	"INVALID_MONTH":               ErrCodeInvalidInput,
	"INVALID_YEAR":                ErrCodeInvalidInput,
	"INVALID_LIMIT":               ErrCodeInvalidInput,
	"INVALID_STUDENT":             ErrCodeInvalidInput,
	"INVALID_COURSE":              ErrCodeInvalidInput,
	"INVALID_ENROLLMENT":          ErrCodeInvalidInput,
	"INVALID_OPERATOR":            ErrCodeUnauthorized,
	"MIGRATION_NO_DEFAULT_COURSE": ErrCodeBusinessRule,
	"TRANSACTION_FAILED":          ErrCodeTransactionFailed,
}

// NormalizeErrorCode converts a domain error code to the API format
// Unknown codes are returned as-is
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
