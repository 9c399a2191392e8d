package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// Source identifies the marketplace an order originated from
type Source string

const (
	SourceEtsy       Source = "etsy"
	SourceTikTokShop Source = "tiktok_shop"
)

// IsValid checks if the source is a known marketplace
func (s Source) IsValid() bool {
	switch s {
	case SourceEtsy, SourceTikTokShop:
		return true
	}
	return false
}

// String returns the string representation of Source
func (s Source) String() string {
	return string(s)
}

// Status represents the fulfillment status of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Address holds a structured shipping address
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// LineItem represents one purchased listing within an order
type LineItem struct {
	ExternalListingID string          `json:"external_listing_id"`
	Title             string          `json:"title"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Currency          string          `json:"currency"`
}

// Order is the canonical order representation, independent of which
// marketplace it originated from. Orders imported from a marketplace are
// uniquely identified by (ExternalID, Source).
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_user_external_source,priority:1"`
	ExternalID      string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_user_external_source,priority:2"`
	Source          Source          `gorm:"type:varchar(20);not null;uniqueIndex:idx_order_user_external_source,priority:3"`
	Status          Status          `gorm:"type:varchar(20);not null;index"`
	CustomerName    string          `gorm:"type:varchar(200);not null"`
	CustomerEmail   string          `gorm:"type:varchar(200)"`
	ShippingAddress *Address        `gorm:"type:jsonb;serializer:json"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'USD'"`
	LineItems       []LineItem      `gorm:"type:jsonb;serializer:json"`
	OrderDate       time.Time       `gorm:"not null;index"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// New creates a new Order, validating required fields
func New(userID uuid.UUID, externalID string, source Source, customerName string, totalAmount decimal.Decimal, orderDate time.Time) (*Order, error) {
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown order source")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount cannot be negative")
	}

	now := time.Now()
	return &Order{
		ID:           uuid.New(),
		UserID:       userID,
		ExternalID:   externalID,
		Source:       source,
		Status:       StatusPending,
		CustomerName: customerName,
		TotalAmount:  totalAmount,
		Currency:     "USD",
		OrderDate:    orderDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Merge copies every canonical field from incoming onto existing, except the
// identity fields (ID, UserID, ExternalID, Source) and CreatedAt. This is the
// reconciliation rule applied when an import sees an order it already stored.
func Merge(existing, incoming *Order) *Order {
	existing.Status = incoming.Status
	existing.CustomerName = incoming.CustomerName
	existing.CustomerEmail = incoming.CustomerEmail
	existing.ShippingAddress = incoming.ShippingAddress
	existing.TotalAmount = incoming.TotalAmount
	existing.Currency = incoming.Currency
	existing.LineItems = incoming.LineItems
	existing.OrderDate = incoming.OrderDate
	existing.UpdatedAt = time.Now()
	return existing
}
