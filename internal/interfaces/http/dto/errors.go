package dto

import (
	"errors"
	"net/http"

	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"
)

// Marketplace integration error codes
const (
	// ErrCodeProviderNotConfigured is used when a marketplace has no client credentials
	ErrCodeProviderNotConfigured = "ERR_PROVIDER_NOT_CONFIGURED"
	// ErrCodeAuthStateInvalid is used when a callback carries an unknown or consumed state
	ErrCodeAuthStateInvalid = "ERR_AUTH_STATE_INVALID"
	// ErrCodeProviderDenied is used when the provider reported an error on the callback
	ErrCodeProviderDenied = "ERR_PROVIDER_DENIED"
	// ErrCodeTokenExchange is used when the code-for-token exchange fails upstream
	ErrCodeTokenExchange = "ERR_TOKEN_EXCHANGE"
	// ErrCodeShopResolution is used when the shop lookup after authorization fails
	ErrCodeShopResolution = "ERR_SHOP_RESOLUTION"
	// ErrCodeMarketplaceUnauthenticated is used when no valid marketplace token exists
	ErrCodeMarketplaceUnauthenticated = "ERR_MARKETPLACE_UNAUTHENTICATED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	ErrCodeProviderNotConfigured:      http.StatusBadRequest,
	ErrCodeAuthStateInvalid:           http.StatusBadRequest,
	ErrCodeProviderDenied:             http.StatusBadGateway,
	ErrCodeTokenExchange:              http.StatusBadGateway,
	ErrCodeShopResolution:             http.StatusBadGateway,
	ErrCodeMarketplaceUnauthenticated: http.StatusUnauthorized,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to the standardized codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"INVALID_STATE":  ErrCodeInvalidState,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
}

// MapError resolves any service-layer error to an (ERR_* code, message) pair.
// Sentinel and typed integration errors come first; domain errors carry their
// own code which is normalized; anything else is internal.
func MapError(err error) (code, message string) {
	switch {
	case errors.Is(err, integration.ErrProviderNotConfigured):
		return ErrCodeProviderNotConfigured, err.Error()
	case errors.Is(err, integration.ErrMissingCode),
		errors.Is(err, integration.ErrMissingState):
		return ErrCodeValidation, err.Error()
	case errors.Is(err, integration.ErrInvalidOrExpiredState):
		return ErrCodeAuthStateInvalid, err.Error()
	case errors.Is(err, integration.ErrUnauthenticated):
		return ErrCodeMarketplaceUnauthenticated, err.Error()
	}

	var providerErr *integration.ProviderError
	if errors.As(err, &providerErr) {
		return ErrCodeProviderDenied, providerErr.Error()
	}
	var exchangeErr *integration.TokenExchangeError
	if errors.As(err, &exchangeErr) {
		return ErrCodeTokenExchange, exchangeErr.Error()
	}
	var shopErr *integration.ShopResolutionError
	if errors.As(err, &shopErr) {
		return ErrCodeShopResolution, shopErr.Error()
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if mapped, ok := domainErrorCodeMapping[domainErr.Code]; ok {
			return mapped, domainErr.Message
		}
		// Domain codes without a mapping are treated as invalid input
		return ErrCodeInvalidInput, domainErr.Message
	}

	return ErrCodeInternal, "Internal server error"
}
