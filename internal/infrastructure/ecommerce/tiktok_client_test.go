package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
)

func newTestTikTokClient(t *testing.T, serverURL string, repo integration.CredentialRepository) *TikTokClient {
	cfg := NewTikTokConfig("test_app_key", "test_app_secret", "http://localhost:8080/callback")
	if serverURL != "" {
		cfg.APIBaseURL = serverURL
		cfg.TokenURL = serverURL + "/api/v2/token/get"
	}
	cfg.PageSize = 2

	client, err := NewTikTokClient(cfg, repo)
	require.NoError(t, err)
	return client
}

func tiktokEnvelope(t *testing.T, data any) []byte {
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	body, err := json.Marshal(TikTokAPIResponse{Code: 0, Message: "success", Data: raw})
	require.NoError(t, err)
	return body
}

func TestTikTokConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *TikTokConfig
		wantErr error
	}{
		{
			name: "valid config",
			config: &TikTokConfig{
				ClientID:     "key",
				ClientSecret: "secret",
				RedirectURI:  "http://localhost/callback",
			},
			wantErr: nil,
		},
		{
			name:    "missing client ID",
			config:  &TikTokConfig{ClientSecret: "secret", RedirectURI: "http://localhost/callback"},
			wantErr: ErrTikTokConfigMissingClientID,
		},
		{
			name:    "missing client secret",
			config:  &TikTokConfig{ClientID: "key", RedirectURI: "http://localhost/callback"},
			wantErr: ErrTikTokConfigMissingClientSecret,
		},
		{
			name:    "missing redirect URI",
			config:  &TikTokConfig{ClientID: "key", ClientSecret: "secret"},
			wantErr: ErrTikTokConfigMissingRedirectURI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, tt.config.APIBaseURL)
				assert.True(t, tt.config.PageSize > 0)
			}
		})
	}
}

func TestTikTokConfig_AuthorizeURL(t *testing.T) {
	cfg := NewTikTokConfig("the-key", "the-secret", "http://localhost:8080/api/v1/auth/tiktok_shop/callback")

	parsed, err := url.Parse(cfg.AuthorizeURL("the-state", "the-challenge"))
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "the-key", q.Get("app_key"))
	assert.Equal(t, "the-state", q.Get("state"))
	assert.Equal(t, "the-challenge", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
}

func TestTikTokClient_ExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "authorized_code", q.Get("grant_type"))
		assert.Equal(t, "test_app_key", q.Get("app_key"))
		assert.Equal(t, "the-code", q.Get("auth_code"))

		w.Write(tiktokEnvelope(t, TikTokTokenData{
			AccessToken:  "tt-access",
			RefreshToken: "tt-refresh",
			ExpireIn:     86400,
			SellerName:   "TikTok Seller",
		}))
	}))
	defer server.Close()

	client := newTestTikTokClient(t, server.URL, newFakeCredentialRepo())

	grant, err := client.ExchangeCode(context.Background(), "the-code", "the-verifier")
	require.NoError(t, err)
	assert.Equal(t, "tt-access", grant.AccessToken)
	assert.Equal(t, "tt-refresh", grant.RefreshToken)
	assert.Equal(t, 86400, grant.ExpiresIn)
}

func TestTikTokClient_ExchangeCode_EnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":36004004,"message":"auth_code expired","data":null}`)
	}))
	defer server.Close()

	client := newTestTikTokClient(t, server.URL, newFakeCredentialRepo())

	_, err := client.ExchangeCode(context.Background(), "stale-code", "verifier")
	var exchangeErr *integration.TokenExchangeError
	assert.ErrorAs(t, err, &exchangeErr)
}

func TestTikTokClient_ResolveShop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authorization/202309/shops", r.URL.Path)
		assert.Equal(t, "shop-token", r.Header.Get("x-tts-access-token"))

		w.Write(tiktokEnvelope(t, TikTokShopsData{
			Shops: []TikTokShop{{ID: "shop-1", Name: "Viral Goods"}},
		}))
	}))
	defer server.Close()

	client := newTestTikTokClient(t, server.URL, newFakeCredentialRepo())

	info, err := client.ResolveShop(context.Background(), "shop-token")
	require.NoError(t, err)
	assert.Equal(t, "shop-1", info.ShopID)
	assert.Equal(t, "Viral Goods", info.ShopName)
}

func TestTikTokClient_FetchOrders_CursorPagination(t *testing.T) {
	repo := newFakeCredentialRepo()
	future := time.Now().Add(time.Hour)
	require.NoError(t, repo.Upsert(context.Background(),
		storedCredential(order.SourceTikTokShop, "fetch-token", "", &future)))

	orderJSON := func(id string) json.RawMessage {
		return json.RawMessage(fmt.Sprintf(`{"id":%q,"status":"AWAITING_SHIPMENT"}`, id))
	}

	var pageTokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/202309/orders/search", r.URL.Path)

		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		token, _ := params["page_token"].(string)
		pageTokens = append(pageTokens, token)

		if token == "" {
			w.Write(tiktokEnvelope(t, TikTokOrdersData{
				Orders:        []json.RawMessage{orderJSON("o-1"), orderJSON("o-2")},
				NextPageToken: "cursor-2",
			}))
		} else {
			w.Write(tiktokEnvelope(t, TikTokOrdersData{
				Orders: []json.RawMessage{orderJSON("o-3")},
			}))
		}
	}))
	defer server.Close()

	client := newTestTikTokClient(t, server.URL, repo)

	orders, err := client.FetchOrders(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, orders, 3)
	assert.Equal(t, []string{"", "cursor-2"}, pageTokens)
}

func TestTikTokClient_FetchOrders_Unauthenticated(t *testing.T) {
	client := newTestTikTokClient(t, "", newFakeCredentialRepo())

	_, err := client.FetchOrders(context.Background(), nil)
	assert.ErrorIs(t, err, integration.ErrUnauthenticated)
}

func TestTikTokClient_AccessToken_RepositoryError(t *testing.T) {
	repoErr := errors.New("connection reset")
	client := newTestTikTokClient(t, "", &failingCredentialRepo{err: repoErr})

	token, err := client.AccessToken(context.Background())
	assert.ErrorIs(t, err, repoErr)
	assert.Empty(t, token)
}

func TestTikTokClient_TransformOrder(t *testing.T) {
	client := newTestTikTokClient(t, "", newFakeCredentialRepo())

	raw := json.RawMessage(`{
		"id": "576461413038785752",
		"status": "IN_TRANSIT",
		"buyer_email": "buyer@example.com",
		"create_time": 1700000000,
		"payment": {"currency": "GBP", "total_amount": 3450},
		"recipient_address": {"name": "Sam Smith", "address_line1": "2 High St", "city": "Leeds", "postal_code": "LS1", "region_code": "GB"},
		"line_items": [
			{"id": "li-1", "product_id": "p-9", "product_name": "Phone Case", "quantity": 3, "sale_price": 1150, "currency": "GBP"}
		]
	}`)

	o, err := client.TransformOrder(raw)
	require.NoError(t, err)

	assert.Equal(t, "576461413038785752", o.ExternalID)
	assert.Equal(t, order.SourceTikTokShop, o.Source)
	assert.Equal(t, order.StatusShipped, o.Status)
	assert.Equal(t, "Sam Smith", o.CustomerName)
	assert.Equal(t, "34.5", o.TotalAmount.String())
	assert.Equal(t, "GBP", o.Currency)

	require.Len(t, o.LineItems, 1)
	assert.Equal(t, "p-9", o.LineItems[0].ExternalListingID)
	assert.Equal(t, 3, o.LineItems[0].Quantity)
	assert.Equal(t, "11.5", o.LineItems[0].UnitPrice.String())
}

func TestTikTokClient_TransformOrder_StatusMapping(t *testing.T) {
	client := newTestTikTokClient(t, "", newFakeCredentialRepo())

	tests := []struct {
		status string
		want   order.Status
	}{
		{"CANCELLED", order.StatusCancelled},
		{"COMPLETED", order.StatusDelivered},
		{"DELIVERED", order.StatusDelivered},
		{"IN_TRANSIT", order.StatusShipped},
		{"AWAITING_COLLECTION", order.StatusShipped},
		{"AWAITING_SHIPMENT", order.StatusProcessing},
		{"UNPAID", order.StatusPending},
		{"", order.StatusPending},
	}

	for _, tt := range tests {
		raw := json.RawMessage(fmt.Sprintf(`{"id":"x","status":%q}`, tt.status))
		o, err := client.TransformOrder(raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, o.Status, "status %q", tt.status)
	}
}

func TestTikTokClient_ExportProduct_CreatesAndMaps(t *testing.T) {
	repo := newFakeCredentialRepo()
	future := time.Now().Add(time.Hour)
	require.NoError(t, repo.Upsert(context.Background(),
		storedCredential(order.SourceTikTokShop, "export-token", "", &future)))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/product/202309/products", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Linen Tote", payload["title"])

		w.Write(tiktokEnvelope(t, TikTokProductData{ProductID: "prod-55"}))
	}))
	defer server.Close()

	client := newTestTikTokClient(t, server.URL, repo)

	p, err := catalog.New(uuid.New(), "Linen Tote", "LT-001", decimal.NewFromFloat(18.00))
	require.NoError(t, err)

	require.NoError(t, client.ExportProduct(context.Background(), p))
	assert.Equal(t, "prod-55", p.TikTokShopProductID)
}
