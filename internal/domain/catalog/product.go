package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusArchived ProductStatus = "archived"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusInactive, ProductStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// Product is a locally managed product that can be exported to marketplaces.
// The external listing IDs record where the product has been pushed.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_user_sku,priority:1"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	SKU         string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_user_sku,priority:2"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Quantity    int             `gorm:"not null;default:0"`
	Images      []string        `gorm:"type:jsonb;serializer:json"`
	Tags        []string        `gorm:"type:jsonb;serializer:json"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;index"`

	// External sync mappings
	EtsyListingID       string `gorm:"type:varchar(100)"`
	TikTokShopProductID string `gorm:"type:varchar(100)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Product) TableName() string {
	return "products"
}

// New creates a new Product, validating required fields
func New(userID uuid.UUID, name, sku string, price decimal.Decimal) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	now := time.Now()
	return &Product{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		SKU:       sku,
		Price:     price,
		Currency:  "USD",
		Status:    ProductStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
