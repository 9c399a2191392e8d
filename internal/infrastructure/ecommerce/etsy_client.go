package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// Constants for the Etsy API
const (
	// maxEtsyResponseSize limits the response body size to prevent memory exhaustion
	maxEtsyResponseSize = 10 * 1024 * 1024 // 10MB max response
	// minorUnitsPerUnit converts integer minor units (cents) to currency amounts
	minorUnitsPerUnit = 100
	// defaultTokenTTLSeconds is assumed when the token response omits expires_in
	defaultTokenTTLSeconds = 3600
)

// EtsyClient implements the Marketplace and OAuthProvider ports for Etsy
type EtsyClient struct {
	config      *EtsyConfig
	credentials integration.CredentialRepository
	httpClient  *http.Client
	now         func() time.Time
}

// NewEtsyClient creates a new Etsy client with the given configuration
func NewEtsyClient(config *EtsyConfig, credentials integration.CredentialRepository) (*EtsyClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &EtsyClient{
		config:      config,
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		now: time.Now,
	}, nil
}

// Source returns the marketplace this client handles
func (c *EtsyClient) Source() order.Source {
	return order.SourceEtsy
}

// Configured reports whether client credentials are set
func (c *EtsyClient) Configured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// ---------------------------------------------------------------------------
// OAuth Operations
// ---------------------------------------------------------------------------

// AuthorizeURL builds the Etsy authorization URL
func (c *EtsyClient) AuthorizeURL(state, codeChallenge string) string {
	return c.config.AuthorizeURL(state, codeChallenge)
}

// ExchangeCode exchanges an authorization code for tokens using the PKCE verifier
func (c *EtsyClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*integration.TokenGrant, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.config.ClientID)
	form.Set("redirect_uri", c.config.RedirectURI)
	form.Set("code", code)
	form.Set("code_verifier", codeVerifier)

	return c.requestToken(ctx, form)
}

// refreshToken exchanges a refresh token for a fresh token pair
func (c *EtsyClient) refreshToken(ctx context.Context, refreshToken string) (*integration.TokenGrant, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.config.ClientID)
	form.Set("refresh_token", refreshToken)

	return c.requestToken(ctx, form)
}

// requestToken posts a form-encoded grant to the token endpoint
func (c *EtsyClient) requestToken(ctx context.Context, form url.Values) (*integration.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("etsy: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("etsy: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEtsyResponseSize))
	if err != nil {
		return nil, fmt.Errorf("etsy: failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &integration.TokenExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp EtsyTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("etsy: failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, &integration.TokenExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	expiresIn := tokenResp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultTokenTTLSeconds
	}
	tokenType := tokenResp.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &integration.TokenGrant{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		TokenType:    tokenType,
		ExpiresIn:    expiresIn,
	}, nil
}

// ResolveShop resolves the shop behind an access token: the token's user
// first, then the user's first shop
func (c *EtsyClient) ResolveShop(ctx context.Context, accessToken string) (*integration.ShopInfo, error) {
	userBody, err := c.doRequest(ctx, accessToken, http.MethodGet, "/application/users/me", nil)
	if err != nil {
		return nil, &integration.ShopResolutionError{Cause: err}
	}

	var user EtsyUserResponse
	if err := json.Unmarshal(userBody, &user); err != nil {
		return nil, &integration.ShopResolutionError{Cause: fmt.Errorf("etsy: failed to parse user response: %w", err)}
	}

	path := fmt.Sprintf("/application/users/%d/shops", user.UserID)
	shopsBody, err := c.doRequest(ctx, accessToken, http.MethodGet, path, nil)
	if err != nil {
		return nil, &integration.ShopResolutionError{Cause: err}
	}

	var shops EtsyShopsResponse
	if err := json.Unmarshal(shopsBody, &shops); err != nil {
		return nil, &integration.ShopResolutionError{Cause: fmt.Errorf("etsy: failed to parse shops response: %w", err)}
	}
	if len(shops.Results) == 0 {
		// some responses are a single shop object rather than a list
		var shop EtsyShop
		if err := json.Unmarshal(shopsBody, &shop); err == nil && shop.ShopID != 0 {
			return &integration.ShopInfo{
				ShopID:   strconv.FormatInt(shop.ShopID, 10),
				ShopName: shop.ShopName,
			}, nil
		}
		return nil, &integration.ShopResolutionError{Cause: fmt.Errorf("etsy: user %d has no shops", user.UserID)}
	}

	shop := shops.Results[0]
	return &integration.ShopInfo{
		ShopID:   strconv.FormatInt(shop.ShopID, 10),
		ShopName: shop.ShopName,
	}, nil
}

// ---------------------------------------------------------------------------
// Token Lifecycle
// ---------------------------------------------------------------------------

// AccessToken returns a usable access token, refreshing the stored credential
// if it has expired. Absence of a credential yields an empty token, not an error.
func (c *EtsyClient) AccessToken(ctx context.Context) (string, error) {
	cred, err := c.credentials.FindBySource(ctx, order.SourceEtsy)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("etsy: loading credential: %w", err)
	}

	if !cred.IsExpired(c.now()) {
		return cred.AccessToken, nil
	}
	if cred.RefreshToken == "" {
		return "", nil
	}

	grant, err := c.refreshToken(ctx, cred.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("etsy: token refresh failed: %w", err)
	}

	expiresAt := c.now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	cred.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		cred.RefreshToken = grant.RefreshToken
	}
	cred.TokenType = grant.TokenType
	cred.ExpiresAt = &expiresAt
	cred.UpdatedAt = c.now()

	if err := c.credentials.Upsert(ctx, cred); err != nil {
		return "", fmt.Errorf("etsy: failed to store refreshed token: %w", err)
	}

	return grant.AccessToken, nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// FetchOrders retrieves all shop receipts created since the given time,
// following offset pagination until a short or empty page
func (c *EtsyClient) FetchOrders(ctx context.Context, since *time.Time) ([]json.RawMessage, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, integration.ErrUnauthenticated
	}

	shopID, err := c.shopID(ctx, token)
	if err != nil {
		return nil, err
	}

	receipts := make([]json.RawMessage, 0)
	offset := 0
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(c.config.PageSize))
		q.Set("offset", strconv.Itoa(offset))
		if since != nil {
			q.Set("min_created", strconv.FormatInt(since.Unix(), 10))
		}

		path := fmt.Sprintf("/application/shops/%s/receipts?%s", shopID, q.Encode())
		body, err := c.doRequest(ctx, token, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var page EtsyReceiptsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("etsy: failed to parse receipts response: %w", err)
		}

		receipts = append(receipts, page.Results...)
		if len(page.Results) < c.config.PageSize {
			break
		}
		offset += c.config.PageSize
	}

	return receipts, nil
}

// shopID returns the shop id to fetch against: the stored credential's cached
// id first, then a live lookup
func (c *EtsyClient) shopID(ctx context.Context, token string) (string, error) {
	if cred, err := c.credentials.FindBySource(ctx, order.SourceEtsy); err == nil && cred.ShopID != "" {
		return cred.ShopID, nil
	}

	info, err := c.ResolveShop(ctx, token)
	if err != nil {
		return "", err
	}
	return info.ShopID, nil
}

// TransformOrder maps one raw receipt to a canonical order. Pure: identical
// input always yields identical output, except that a receipt without a
// creation timestamp is stamped with the clock's current time.
func (c *EtsyClient) TransformOrder(raw json.RawMessage) (*order.Order, error) {
	var receipt EtsyReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("etsy: failed to parse receipt: %w", err)
	}
	if receipt.ReceiptID == 0 {
		return nil, fmt.Errorf("etsy: receipt has no receipt_id")
	}

	total := decimal.Zero
	currency := "USD"
	if receipt.Grandtotal != nil {
		total = decimal.NewFromInt(receipt.Grandtotal.Amount).Div(decimal.NewFromInt(minorUnitsPerUnit))
		if receipt.Grandtotal.CurrencyCode != "" {
			currency = receipt.Grandtotal.CurrencyCode
		}
	}

	orderDate := c.now()
	if receipt.CreatedTimestamp > 0 {
		orderDate = time.Unix(receipt.CreatedTimestamp, 0).UTC()
	}

	o := &order.Order{
		ExternalID:    strconv.FormatInt(receipt.ReceiptID, 10),
		Source:        order.SourceEtsy,
		Status:        mapEtsyReceiptStatus(&receipt),
		CustomerName:  receipt.Name,
		CustomerEmail: receipt.BuyerEmail,
		TotalAmount:   total,
		Currency:      currency,
		OrderDate:     orderDate,
	}

	if receipt.FirstLine != "" || receipt.City != "" || receipt.CountryISO != "" {
		o.ShippingAddress = &order.Address{
			Name:       receipt.Name,
			Line1:      receipt.FirstLine,
			Line2:      receipt.SecondLine,
			City:       receipt.City,
			State:      receipt.State,
			PostalCode: receipt.Zip,
			Country:    receipt.CountryISO,
		}
	}

	for _, tx := range receipt.Transactions {
		item := order.LineItem{
			ExternalListingID: strconv.FormatInt(tx.ListingID, 10),
			Title:             tx.Title,
			Quantity:          tx.Quantity,
			Currency:          currency,
		}
		if tx.Price != nil {
			item.UnitPrice = decimal.NewFromInt(tx.Price.Amount).Div(decimal.NewFromInt(minorUnitsPerUnit))
			if tx.Price.CurrencyCode != "" {
				item.Currency = tx.Price.CurrencyCode
			}
		}
		o.LineItems = append(o.LineItems, item)
	}

	return o, nil
}

// mapEtsyReceiptStatus derives the canonical status by priority:
// cancelled, then delivered, then shipped, then paid, then pending
func mapEtsyReceiptStatus(r *EtsyReceipt) order.Status {
	status := strings.ToLower(r.Status)
	switch {
	case r.IsCanceled || status == "canceled" || status == "cancelled":
		return order.StatusCancelled
	case r.IsDelivered || status == "completed":
		return order.StatusDelivered
	case r.IsShipped:
		return order.StatusShipped
	case r.IsPaid || status == "paid":
		return order.StatusProcessing
	default:
		return order.StatusPending
	}
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// ExportProduct creates an Etsy listing for the product, or updates the
// listing it is already mapped to
func (c *EtsyClient) ExportProduct(ctx context.Context, p *catalog.Product) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return integration.ErrUnauthenticated
	}

	shopID, err := c.shopID(ctx, token)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("title", p.Name)
	form.Set("description", p.Description)
	form.Set("price", p.Price.StringFixed(2))
	form.Set("quantity", strconv.Itoa(p.Quantity))
	form.Set("sku", p.SKU)

	var path string
	if p.EtsyListingID == "" {
		path = fmt.Sprintf("/application/shops/%s/listings", shopID)
	} else {
		path = fmt.Sprintf("/application/shops/%s/listings/%s", shopID, p.EtsyListingID)
	}

	body, err := c.doRequest(ctx, token, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}

	var listing EtsyListingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return fmt.Errorf("etsy: failed to parse listing response: %w", err)
	}
	if listing.ListingID != 0 {
		p.EtsyListingID = strconv.FormatInt(listing.ListingID, 10)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated HTTP request against the Etsy API
func (c *EtsyClient) doRequest(ctx context.Context, token, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.APIBaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("etsy: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-api-key", c.config.ClientID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &integration.FetchError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxEtsyResponseSize))
	if err != nil {
		return nil, fmt.Errorf("etsy: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, integration.ErrUnauthenticated
	}
	if resp.StatusCode >= 400 {
		return nil, &integration.FetchError{Cause: fmt.Errorf("etsy: HTTP %d: %s", resp.StatusCode, string(respBody))}
	}

	return respBody, nil
}

// Ensure EtsyClient implements the domain ports
var (
	_ integration.Marketplace   = (*EtsyClient)(nil)
	_ integration.OAuthProvider = (*EtsyClient)(nil)
)
