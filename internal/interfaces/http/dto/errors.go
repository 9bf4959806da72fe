package dto

import (
	"net/http"
	"strings"
)

// API error codes. Domain errors are normalized into this ERR_ namespace
// before they reach clients.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	ErrCodeValidation = "ERR_VALIDATION"

	ErrCodeInvalidInput     = "ERR_INVALID_INPUT"
	ErrCodeUnauthorized     = "ERR_UNAUTHORIZED"
	ErrCodeForbidden        = "ERR_FORBIDDEN"
	ErrCodeTokenExpired     = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid     = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked     = "ERR_TOKEN_REVOKED"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists    = "ERR_ALREADY_EXISTS"
	ErrCodeConflict         = "ERR_CONFLICT"
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeInvalidOperation = "ERR_INVALID_OPERATION"
	ErrCodeInvalidStatus    = "ERR_INVALID_STATUS"
	ErrCodeEmptyOrder       = "ERR_EMPTY_ORDER"

	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInUse             = "ERR_IN_USE"

	ErrCodeCourierNotConfigured = "ERR_COURIER_NOT_CONFIGURED"
	ErrCodeCourierUnavailable   = "ERR_COURIER_UNAVAILABLE"
	ErrCodeCourierRejected      = "ERR_COURIER_REJECTED"

	ErrCodeInvalidPaperSize = "ERR_INVALID_PAPER_SIZE"
	ErrCodePDFNotReady      = "ERR_PDF_NOT_READY"
	ErrCodeRenderFailed     = "ERR_RENDER_FAILED"
	ErrCodeStorageFailed    = "ERR_STORAGE_FAILED"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

var codeStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,

	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodePDFNotReady:   http.StatusConflict,

	// order and user rules the request was well formed for but the target
	// cannot accept
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeInvalidOperation: http.StatusUnprocessableEntity,
	ErrCodeInvalidStatus:    http.StatusUnprocessableEntity,
	ErrCodeEmptyOrder:       http.StatusUnprocessableEntity,

	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInUse:             http.StatusConflict,

	ErrCodeCourierNotConfigured: http.StatusServiceUnavailable,
	ErrCodeCourierUnavailable:   http.StatusBadGateway,
	ErrCodeCourierRejected:      http.StatusUnprocessableEntity,

	ErrCodeInvalidPaperSize: http.StatusBadRequest,
	ErrCodeRenderFailed:     http.StatusInternalServerError,
	ErrCodeStorageFailed:    http.StatusInternalServerError,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// domainAliases folds domain codes that share an API code
var domainAliases = map[string]string{
	"USER_NOT_FOUND":       ErrCodeNotFound,
	"TOO_MANY_ATTEMPTS":    ErrCodeRateLimited,
	"CONCURRENCY_CONFLICT": ErrCodeConflict,
	"OUTPUT_FAILED":        ErrCodeRenderFailed,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"TOKEN_ERROR":          ErrCodeInternal,
	"PASSWORD_HASH_ERROR":  ErrCodeInternal,

	"PRODUCT_TYPE_IN_USE":  ErrCodeInUse,
	"SIZE_GROUP_IN_USE":    ErrCodeInUse,
	"PRODUCT_IN_USE":       ErrCodeInUse,
	"SIZE_ALREADY_GROUPED": ErrCodeConflict,
	"SIZE_GROUP_MISMATCH":  ErrCodeInvalidOperation,
	"EMPTY_SIZE_GROUP":     ErrCodeInvalidInput,

	"SHIPPING_ALREADY_REQUESTED": ErrCodeConflict,
	"INVALID_CONSIGNMENT":        ErrCodeCourierRejected,
}

// GetHTTPStatus returns the status for an API error code. Unlisted
// ERR_INVALID_* codes are field-level input failures and answer 400;
// anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode maps a domain error code into the ERR_ namespace:
// INVALID_DISCOUNT becomes ERR_INVALID_DISCOUNT and codes that already carry
// the prefix pass through.
func NormalizeErrorCode(code string) string {
	if alias, ok := domainAliases[code]; ok {
		return alias
	}
	if code == "" || strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
