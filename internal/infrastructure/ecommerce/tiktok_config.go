package ecommerce

import (
	"errors"
	"net/url"
)

// TikTokConfig holds configuration for the TikTok Shop API integration
type TikTokConfig struct {
	// ClientID is the app key from the TikTok Shop partner center
	ClientID string
	// ClientSecret is the app secret from the TikTok Shop partner center
	ClientSecret string
	// RedirectURI is the registered OAuth callback URL
	RedirectURI string
	// APIBaseURL is the base URL for the TikTok Shop open API
	APIBaseURL string
	// AuthBaseURL is the user-facing authorization page
	AuthBaseURL string
	// TokenURL is the OAuth token endpoint
	TokenURL string
	// PageSize is the orders page size used when fetching
	PageSize int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// TikTokAPIBaseURL is the production API endpoint
	TikTokAPIBaseURL = "https://open-api.tiktokglobalshop.com"
	// TikTokAuthBaseURL is the authorization page sellers are sent to
	TikTokAuthBaseURL = "https://services.tiktokshop.com/open/authorize"
	// TikTokTokenURL is the token endpoint for code exchange and refresh
	TikTokTokenURL = "https://auth.tiktok-shops.com/api/v2/token/get"
)

// Errors for TikTok Shop configuration
var (
	ErrTikTokConfigMissingClientID     = errors.New("tiktok: client ID is required")
	ErrTikTokConfigMissingClientSecret = errors.New("tiktok: client secret is required")
	ErrTikTokConfigMissingRedirectURI  = errors.New("tiktok: redirect URI is required")
)

// NewTikTokConfig creates a new TikTok Shop configuration with defaults
func NewTikTokConfig(clientID, clientSecret, redirectURI string) *TikTokConfig {
	return &TikTokConfig{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		RedirectURI:    redirectURI,
		APIBaseURL:     TikTokAPIBaseURL,
		AuthBaseURL:    TikTokAuthBaseURL,
		TokenURL:       TikTokTokenURL,
		PageSize:       50,
		TimeoutSeconds: 30,
	}
}

// Validate validates the TikTok Shop configuration
func (c *TikTokConfig) Validate() error {
	if c.ClientID == "" {
		return ErrTikTokConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrTikTokConfigMissingClientSecret
	}
	if c.RedirectURI == "" {
		return ErrTikTokConfigMissingRedirectURI
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = TikTokAPIBaseURL
	}
	if c.AuthBaseURL == "" {
		c.AuthBaseURL = TikTokAuthBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = TikTokTokenURL
	}
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// AuthorizeURL builds the TikTok Shop authorization URL for the given CSRF
// state and PKCE S256 code challenge
func (c *TikTokConfig) AuthorizeURL(state, codeChallenge string) string {
	q := url.Values{}
	q.Set("app_key", c.ClientID)
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("state", state)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "S256")
	return c.AuthBaseURL + "?" + q.Encode()
}
