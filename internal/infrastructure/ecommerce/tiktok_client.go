package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// maxTikTokResponseSize limits the response body size to prevent memory exhaustion
const maxTikTokResponseSize = 10 * 1024 * 1024 // 10MB max response

// TikTokClient implements the Marketplace and OAuthProvider ports for TikTok Shop
type TikTokClient struct {
	config      *TikTokConfig
	credentials integration.CredentialRepository
	httpClient  *http.Client
	now         func() time.Time
}

// NewTikTokClient creates a new TikTok Shop client with the given configuration
func NewTikTokClient(config *TikTokConfig, credentials integration.CredentialRepository) (*TikTokClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &TikTokClient{
		config:      config,
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		now: time.Now,
	}, nil
}

// Source returns the marketplace this client handles
func (c *TikTokClient) Source() order.Source {
	return order.SourceTikTokShop
}

// Configured reports whether client credentials are set
func (c *TikTokClient) Configured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// ---------------------------------------------------------------------------
// OAuth Operations
// ---------------------------------------------------------------------------

// AuthorizeURL builds the TikTok Shop authorization URL
func (c *TikTokClient) AuthorizeURL(state, codeChallenge string) string {
	return c.config.AuthorizeURL(state, codeChallenge)
}

// ExchangeCode exchanges an authorization code for tokens
func (c *TikTokClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*integration.TokenGrant, error) {
	q := url.Values{}
	q.Set("app_key", c.config.ClientID)
	q.Set("app_secret", c.config.ClientSecret)
	q.Set("auth_code", code)
	q.Set("grant_type", "authorized_code")
	q.Set("code_verifier", codeVerifier)

	return c.requestToken(ctx, q)
}

// refreshToken exchanges a refresh token for a fresh token pair
func (c *TikTokClient) refreshToken(ctx context.Context, refreshToken string) (*integration.TokenGrant, error) {
	q := url.Values{}
	q.Set("app_key", c.config.ClientID)
	q.Set("app_secret", c.config.ClientSecret)
	q.Set("refresh_token", refreshToken)
	q.Set("grant_type", "refresh_token")

	return c.requestToken(ctx, q)
}

// requestToken calls the token endpoint with the given grant parameters
func (c *TikTokClient) requestToken(ctx context.Context, q url.Values) (*integration.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.TokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tiktok: failed to create token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTikTokResponseSize))
	if err != nil {
		return nil, fmt.Errorf("tiktok: failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &integration.TokenExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope TikTokAPIResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("tiktok: failed to parse token response: %w", err)
	}
	if !envelope.IsSuccess() {
		return nil, &integration.TokenExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var data TikTokTokenData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("tiktok: failed to parse token data: %w", err)
	}
	if data.AccessToken == "" {
		return nil, &integration.TokenExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	expiresIn := data.ExpireIn
	if expiresIn <= 0 {
		expiresIn = defaultTokenTTLSeconds
	}

	return &integration.TokenGrant{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}, nil
}

// ResolveShop resolves the first authorized shop behind an access token
func (c *TikTokClient) ResolveShop(ctx context.Context, accessToken string) (*integration.ShopInfo, error) {
	body, err := c.doRequest(ctx, accessToken, http.MethodGet, "/authorization/202309/shops", nil)
	if err != nil {
		return nil, &integration.ShopResolutionError{Cause: err}
	}

	var data TikTokShopsData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &integration.ShopResolutionError{Cause: fmt.Errorf("tiktok: failed to parse shops data: %w", err)}
	}
	if len(data.Shops) == 0 {
		return nil, &integration.ShopResolutionError{Cause: fmt.Errorf("tiktok: token has no authorized shops")}
	}

	return &integration.ShopInfo{
		ShopID:   data.Shops[0].ID,
		ShopName: data.Shops[0].Name,
	}, nil
}

// ---------------------------------------------------------------------------
// Token Lifecycle
// ---------------------------------------------------------------------------

// AccessToken returns a usable access token, refreshing the stored credential
// if it has expired. Absence of a credential yields an empty token, not an error.
func (c *TikTokClient) AccessToken(ctx context.Context) (string, error) {
	cred, err := c.credentials.FindBySource(ctx, order.SourceTikTokShop)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("tiktok: loading credential: %w", err)
	}

	if !cred.IsExpired(c.now()) {
		return cred.AccessToken, nil
	}
	if cred.RefreshToken == "" {
		return "", nil
	}

	grant, err := c.refreshToken(ctx, cred.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("tiktok: token refresh failed: %w", err)
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
		return "", fmt.Errorf("tiktok: failed to store refreshed token: %w", err)
	}

	return grant.AccessToken, nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// FetchOrders retrieves orders created since the given time, following cursor
// pagination until the provider stops returning a next page token
func (c *TikTokClient) FetchOrders(ctx context.Context, since *time.Time) ([]json.RawMessage, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, integration.ErrUnauthenticated
	}

	orders := make([]json.RawMessage, 0)
	pageToken := ""
	for {
		params := map[string]any{
			"page_size": c.config.PageSize,
		}
		if pageToken != "" {
			params["page_token"] = pageToken
		}
		if since != nil {
			params["create_time_ge"] = since.Unix()
		}

		body, err := c.doRequestJSON(ctx, token, http.MethodPost, "/order/202309/orders/search", params)
		if err != nil {
			return nil, err
		}

		var page TikTokOrdersData
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("tiktok: failed to parse orders data: %w", err)
		}

		orders = append(orders, page.Orders...)
		if page.NextPageToken == "" || len(page.Orders) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}

	return orders, nil
}

// TransformOrder maps one raw order record to a canonical order
func (c *TikTokClient) TransformOrder(raw json.RawMessage) (*order.Order, error) {
	var src TikTokOrder
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("tiktok: failed to parse order: %w", err)
	}
	if src.ID == "" {
		return nil, fmt.Errorf("tiktok: order has no id")
	}

	total := decimal.Zero
	currency := "USD"
	if src.Payment != nil {
		total = decimal.NewFromInt(src.Payment.TotalAmount).Div(decimal.NewFromInt(minorUnitsPerUnit))
		if src.Payment.Currency != "" {
			currency = src.Payment.Currency
		}
	}

	orderDate := c.now()
	if src.CreateTime > 0 {
		orderDate = time.Unix(src.CreateTime, 0).UTC()
	}

	o := &order.Order{
		ExternalID:    src.ID,
		Source:        order.SourceTikTokShop,
		Status:        mapTikTokOrderStatus(src.Status),
		CustomerEmail: src.BuyerEmail,
		TotalAmount:   total,
		Currency:      currency,
		OrderDate:     orderDate,
	}

	if src.RecipientAddress != nil {
		addr := src.RecipientAddress
		o.CustomerName = addr.Name
		o.ShippingAddress = &order.Address{
			Name:       addr.Name,
			Line1:      addr.AddressLine1,
			Line2:      addr.AddressLine2,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.RegionCode,
		}
	}

	for _, item := range src.LineItems {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		itemCurrency := item.Currency
		if itemCurrency == "" {
			itemCurrency = currency
		}
		o.LineItems = append(o.LineItems, order.LineItem{
			ExternalListingID: item.ProductID,
			Title:             item.ProductName,
			Quantity:          quantity,
			UnitPrice:         decimal.NewFromInt(item.SalePrice).Div(decimal.NewFromInt(minorUnitsPerUnit)),
			Currency:          itemCurrency,
		})
	}

	return o, nil
}

// mapTikTokOrderStatus derives the canonical status by priority:
// cancelled, then delivered, then shipped, then paid, then pending
func mapTikTokOrderStatus(status string) order.Status {
	switch strings.ToUpper(status) {
	case "CANCELLED", "CANCEL":
		return order.StatusCancelled
	case "DELIVERED", "COMPLETED":
		return order.StatusDelivered
	case "IN_TRANSIT", "AWAITING_COLLECTION", "SHIPPED":
		return order.StatusShipped
	case "AWAITING_SHIPMENT", "PARTIALLY_SHIPPING", "ON_HOLD":
		return order.StatusProcessing
	default:
		return order.StatusPending
	}
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// ExportProduct creates a TikTok Shop product, or updates the product it is
// already mapped to
func (c *TikTokClient) ExportProduct(ctx context.Context, p *catalog.Product) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return integration.ErrUnauthenticated
	}

	payload := map[string]any{
		"title":       p.Name,
		"description": p.Description,
		"skus": []map[string]any{
			{
				"seller_sku": p.SKU,
				"price": map[string]any{
					"amount":   p.Price.StringFixed(2),
					"currency": p.Currency,
				},
				"inventory": []map[string]any{
					{"quantity": p.Quantity},
				},
			},
		},
	}

	var path string
	var method string
	if p.TikTokShopProductID == "" {
		method = http.MethodPost
		path = "/product/202309/products"
	} else {
		method = http.MethodPut
		path = "/product/202309/products/" + p.TikTokShopProductID
	}

	body, err := c.doRequestJSON(ctx, token, method, path, payload)
	if err != nil {
		return err
	}

	var data TikTokProductData
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("tiktok: failed to parse product data: %w", err)
	}
	if data.ProductID != "" {
		p.TikTokShopProductID = data.ProductID
	}

	return nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequestJSON performs an authenticated request with a JSON body and
// unwraps the response envelope
func (c *TikTokClient) doRequestJSON(ctx context.Context, token, method, path string, payload map[string]any) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tiktok: failed to marshal request: %w", err)
	}
	return c.doRequest(ctx, token, method, path, bytes.NewReader(bodyBytes))
}

// doRequest performs an authenticated HTTP request against the TikTok Shop
// API and unwraps the response envelope
func (c *TikTokClient) doRequest(ctx context.Context, token, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.APIBaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("tiktok: failed to create request: %w", err)
	}

	req.Header.Set("x-tts-access-token", token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &integration.FetchError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxTikTokResponseSize))
	if err != nil {
		return nil, fmt.Errorf("tiktok: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, integration.ErrUnauthenticated
	}
	if resp.StatusCode >= 400 {
		return nil, &integration.FetchError{Cause: fmt.Errorf("tiktok: HTTP %d: %s", resp.StatusCode, string(respBody))}
	}

	var envelope TikTokAPIResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("tiktok: failed to parse response: %w", err)
	}
	if !envelope.IsSuccess() {
		return nil, &integration.FetchError{Cause: fmt.Errorf("tiktok: %d - %s", envelope.Code, envelope.Message)}
	}

	return envelope.Data, nil
}

// Ensure TikTokClient implements the domain ports
var (
	_ integration.Marketplace   = (*TikTokClient)(nil)
	_ integration.OAuthProvider = (*TikTokClient)(nil)
)
