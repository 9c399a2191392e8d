package ecommerce

import (
	"errors"
	"net/url"
	"strings"
)

// EtsyConfig holds configuration for the Etsy API integration
type EtsyConfig struct {
	// ClientID is the Etsy app keystring, also sent as the x-api-key header
	ClientID string
	// ClientSecret is the Etsy app shared secret
	ClientSecret string
	// RedirectURI is the registered OAuth callback URL
	RedirectURI string
	// APIBaseURL is the base URL for the Etsy Open API v3
	APIBaseURL string
	// AuthBaseURL is the user-facing authorization page
	AuthBaseURL string
	// TokenURL is the OAuth token endpoint
	TokenURL string
	// PageSize is the receipts page size used when fetching orders
	PageSize int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// EtsyAPIBaseURL is the production API endpoint
	EtsyAPIBaseURL = "https://api.etsy.com/v3"
	// EtsyAuthBaseURL is the authorization page users are sent to
	EtsyAuthBaseURL = "https://www.etsy.com/oauth/connect"
	// EtsyTokenURL is the token endpoint for code exchange and refresh
	EtsyTokenURL = "https://api.etsy.com/v3/public/oauth/token"
)

// EtsyScopes are the OAuth scopes requested during authorization
var EtsyScopes = []string{"shops_r", "transactions_r", "listings_r", "listings_w"}

// Errors for Etsy configuration
var (
	ErrEtsyConfigMissingClientID     = errors.New("etsy: client ID is required")
	ErrEtsyConfigMissingClientSecret = errors.New("etsy: client secret is required")
	ErrEtsyConfigMissingRedirectURI  = errors.New("etsy: redirect URI is required")
)

// NewEtsyConfig creates a new Etsy configuration with defaults
func NewEtsyConfig(clientID, clientSecret, redirectURI string) *EtsyConfig {
	return &EtsyConfig{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		RedirectURI:    redirectURI,
		APIBaseURL:     EtsyAPIBaseURL,
		AuthBaseURL:    EtsyAuthBaseURL,
		TokenURL:       EtsyTokenURL,
		PageSize:       25,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Etsy configuration
func (c *EtsyConfig) Validate() error {
	if c.ClientID == "" {
		return ErrEtsyConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrEtsyConfigMissingClientSecret
	}
	if c.RedirectURI == "" {
		return ErrEtsyConfigMissingRedirectURI
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = EtsyAPIBaseURL
	}
	if c.AuthBaseURL == "" {
		c.AuthBaseURL = EtsyAuthBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = EtsyTokenURL
	}
	if c.PageSize <= 0 {
		c.PageSize = 25
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// AuthorizeURL builds the Etsy authorization URL for the given CSRF state and
// PKCE S256 code challenge
func (c *EtsyConfig) AuthorizeURL(state, codeChallenge string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("scope", strings.Join(EtsyScopes, " "))
	q.Set("client_id", c.ClientID)
	q.Set("state", state)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "S256")
	return c.AuthBaseURL + "?" + q.Encode()
}
