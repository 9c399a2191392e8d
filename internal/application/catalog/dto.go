package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" binding:"required,min=1,max=100"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
	Quantity    int             `json:"quantity" binding:"omitempty,min=0"`
	Images      []string        `json:"images"`
	Tags        []string        `json:"tags"`
	Status      string          `json:"status"`
}

// UpdateProductRequest represents a partial update; nil fields are left unchanged
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Currency    *string          `json:"currency"`
	Quantity    *int             `json:"quantity"`
	Images      *[]string        `json:"images"`
	Tags        *[]string        `json:"tags"`
	Status      *string          `json:"status"`
}

// ProductListFilter represents filter options for listing products
type ProductListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
	Status   string `form:"status"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	SKU                 string          `json:"sku"`
	Price               decimal.Decimal `json:"price"`
	Currency            string          `json:"currency"`
	Quantity            int             `json:"quantity"`
	Images              []string        `json:"images,omitempty"`
	Tags                []string        `json:"tags,omitempty"`
	Status              string          `json:"status"`
	EtsyListingID       string          `json:"etsy_listing_id,omitempty"`
	TikTokShopProductID string          `json:"tiktok_shop_product_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		SKU:                 p.SKU,
		Price:               p.Price,
		Currency:            p.Currency,
		Quantity:            p.Quantity,
		Images:              p.Images,
		Tags:                p.Tags,
		Status:              p.Status.String(),
		EtsyListingID:       p.EtsyListingID,
		TikTokShopProductID: p.TikTokShopProductID,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
