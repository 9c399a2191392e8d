package ecommerce

import "encoding/json"

// EtsyTokenResponse is the response from the Etsy OAuth token endpoint for
// both the authorization_code and refresh_token grants
type EtsyTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// EtsyUserResponse is the response from /application/users/me
type EtsyUserResponse struct {
	UserID int64 `json:"user_id"`
	ShopID int64 `json:"shop_id"`
}

// EtsyShop is one shop record from the shops listing
type EtsyShop struct {
	ShopID   int64  `json:"shop_id"`
	ShopName string `json:"shop_name"`
}

// EtsyShopsResponse is the response from /application/users/{id}/shops
type EtsyShopsResponse struct {
	Count   int        `json:"count"`
	Results []EtsyShop `json:"results"`
}

// EtsyMoney is Etsy's money representation: integer minor units
type EtsyMoney struct {
	Amount       int64  `json:"amount"`
	Divisor      int    `json:"divisor"`
	CurrencyCode string `json:"currency_code"`
}

// EtsyTransaction is one purchased listing within a receipt
type EtsyTransaction struct {
	TransactionID int64      `json:"transaction_id"`
	ListingID     int64      `json:"listing_id"`
	Title         string     `json:"title"`
	Quantity      int        `json:"quantity"`
	Price         *EtsyMoney `json:"price"`
}

// EtsyReceipt is one order record from the receipts listing
type EtsyReceipt struct {
	ReceiptID        int64             `json:"receipt_id"`
	Status           string            `json:"status"`
	Name             string            `json:"name"`
	BuyerEmail       string            `json:"buyer_email"`
	IsPaid           bool              `json:"is_paid"`
	IsShipped        bool              `json:"is_shipped"`
	IsDelivered      bool              `json:"is_delivered"`
	IsCanceled       bool              `json:"is_canceled"`
	FirstLine        string            `json:"first_line"`
	SecondLine       string            `json:"second_line"`
	City             string            `json:"city"`
	State            string            `json:"state"`
	Zip              string            `json:"zip"`
	CountryISO       string            `json:"country_iso"`
	CreatedTimestamp int64             `json:"created_timestamp"`
	Grandtotal       *EtsyMoney        `json:"grandtotal"`
	Transactions     []EtsyTransaction `json:"transactions"`
}

// EtsyReceiptsResponse is the paginated response from the receipts listing.
// Results are kept raw so one malformed receipt cannot fail the whole page.
type EtsyReceiptsResponse struct {
	Count   int               `json:"count"`
	Results []json.RawMessage `json:"results"`
}

// EtsyListingResponse is the response from creating or updating a listing
type EtsyListingResponse struct {
	ListingID int64  `json:"listing_id"`
	State     string `json:"state"`
}
