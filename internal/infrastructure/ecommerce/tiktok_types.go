package ecommerce

import "encoding/json"

// TikTokAPIResponse is the envelope every TikTok Shop API call returns
type TikTokAPIResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// IsSuccess returns true if the API call succeeded
func (r *TikTokAPIResponse) IsSuccess() bool {
	return r.Code == 0
}

// TikTokTokenData is the token payload for both the authorization code and
// refresh token grants
type TikTokTokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int    `json:"access_token_expire_in"`
	SellerName   string `json:"seller_name"`
	OpenID       string `json:"open_id"`
}

// TikTokShop is one authorized shop record
type TikTokShop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TikTokShopsData is the payload from the authorized shops listing
type TikTokShopsData struct {
	Shops []TikTokShop `json:"shops"`
}

// TikTokOrdersData is the paginated payload from the order search endpoint.
// Orders are kept raw so one malformed order cannot fail the whole page.
type TikTokOrdersData struct {
	Orders        []json.RawMessage `json:"orders"`
	NextPageToken string            `json:"next_page_token"`
	TotalCount    int               `json:"total_count"`
}

// TikTokPayment holds order money fields as integer minor units
type TikTokPayment struct {
	Currency    string `json:"currency"`
	TotalAmount int64  `json:"total_amount"`
}

// TikTokAddress is the recipient address on an order
type TikTokAddress struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	RegionCode   string `json:"region_code"`
}

// TikTokLineItem is one purchased product within an order
type TikTokLineItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	SalePrice   int64  `json:"sale_price"`
	Currency    string `json:"currency"`
}

// TikTokOrder is one order record from the order search
type TikTokOrder struct {
	ID               string           `json:"id"`
	Status           string           `json:"status"`
	BuyerEmail       string           `json:"buyer_email"`
	CreateTime       int64            `json:"create_time"`
	Payment          *TikTokPayment   `json:"payment"`
	RecipientAddress *TikTokAddress   `json:"recipient_address"`
	LineItems        []TikTokLineItem `json:"line_items"`
}

// TikTokProductData is the payload from product create and update calls
type TikTokProductData struct {
	ProductID string `json:"product_id"`
}
