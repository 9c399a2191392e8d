package integration

import (
	"context"
	"encoding/json"
	"time"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
)

// Marketplace is the port for authenticated access to one external
// marketplace. Implementations own the translation of provider-native
// records into the canonical order model but never persist anything.
type Marketplace interface {
	// Source returns the marketplace this client handles
	Source() order.Source

	// AccessToken returns a usable access token, refreshing the stored
	// credential if it has expired. Absence of a credential is not an
	// error: it is signaled as an empty token so callers can produce an
	// actionable "please authenticate" message.
	AccessToken(ctx context.Context) (string, error)

	// FetchOrders retrieves all order records created since the given time
	// (or all orders when since is nil), following pagination until the
	// provider returns a short or empty page. Records are returned in fetch
	// order as raw provider payloads so that a malformed record only fails
	// its own transformation, never the whole fetch.
	FetchOrders(ctx context.Context, since *time.Time) ([]json.RawMessage, error)

	// TransformOrder maps one raw provider record to a canonical order.
	// It is a pure function of the record: identical input always yields
	// identical output.
	TransformOrder(raw json.RawMessage) (*order.Order, error)

	// ExportProduct creates or updates the marketplace listing for a product
	ExportProduct(ctx context.Context, p *catalog.Product) error
}

// TokenGrant is the result of exchanging an authorization code or a refresh
// token at the provider's token endpoint
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
}

// ShopInfo identifies the shop a credential grants access to
type ShopInfo struct {
	ShopID   string
	ShopName string
}

// OAuthProvider is the provider side of the authorization code flow. Each
// marketplace client implements it alongside Marketplace.
type OAuthProvider interface {
	// Source returns the marketplace this provider handles
	Source() order.Source

	// Configured reports whether client credentials are set
	Configured() bool

	// AuthorizeURL builds the provider authorization URL for the given
	// CSRF state and PKCE S256 code challenge
	AuthorizeURL(state, codeChallenge string) string

	// ExchangeCode exchanges an authorization code for tokens using the
	// stored PKCE verifier
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenGrant, error)

	// ResolveShop resolves the shop identity behind an access token
	ResolveShop(ctx context.Context, accessToken string) (*ShopInfo, error)
}
