package integration

import (
	"errors"
	"fmt"
)

// Errors for the OAuth authorization flow and marketplace access
var (
	// ErrProviderNotConfigured indicates the marketplace API credentials are unset
	ErrProviderNotConfigured = errors.New("integration: provider credentials not configured")
	// ErrMissingCode indicates the callback was hit without an authorization code
	ErrMissingCode = errors.New("integration: missing authorization code")
	// ErrMissingState indicates the callback was hit without a state parameter
	ErrMissingState = errors.New("integration: missing state parameter")
	// ErrInvalidOrExpiredState indicates the callback state matched no pending
	// authorization. This is the CSRF/replay defense: a state is single-use.
	ErrInvalidOrExpiredState = errors.New("integration: invalid or expired state")
	// ErrUnauthenticated indicates no usable access token exists for the source
	ErrUnauthenticated = errors.New("integration: not authenticated with marketplace")
)

// ProviderError wraps an error the provider reported on the callback redirect
type ProviderError struct {
	Code        string
	Description string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("integration: provider returned error: %s - %s", e.Code, e.Description)
	}
	return fmt.Sprintf("integration: provider returned error: %s", e.Code)
}

// TokenExchangeError indicates the code-for-token exchange failed
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("integration: token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// ShopResolutionError indicates the external shop identity could not be resolved
type ShopResolutionError struct {
	Cause error
}

// Error implements the error interface
func (e *ShopResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("integration: failed to resolve shop: %v", e.Cause)
	}
	return "integration: failed to resolve shop"
}

// Unwrap returns the underlying cause
func (e *ShopResolutionError) Unwrap() error {
	return e.Cause
}

// FetchError indicates the bulk fetch phase of a sync run could not proceed.
// It aborts the run; it is never raised for a single bad record.
type FetchError struct {
	Cause error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("integration: fetch failed: %v", e.Cause)
}

// Unwrap returns the underlying cause
func (e *FetchError) Unwrap() error {
	return e.Cause
}
