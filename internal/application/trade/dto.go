package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/morganchorlton3/order-tracker/internal/domain/order"
)

// CreateOrderRequest represents a request to create an order manually
type CreateOrderRequest struct {
	ExternalID      string           `json:"external_id"`
	Source          string           `json:"source" binding:"required"`
	Status          string           `json:"status"`
	CustomerName    string           `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerEmail   string           `json:"customer_email" binding:"omitempty,email"`
	ShippingAddress *order.Address   `json:"shipping_address"`
	TotalAmount     decimal.Decimal  `json:"total_amount" binding:"required"`
	Currency        string           `json:"currency" binding:"omitempty,len=3"`
	LineItems       []order.LineItem `json:"line_items"`
	OrderDate       *time.Time       `json:"order_date"`
}

// UpdateOrderRequest represents a partial update; nil fields are left unchanged
type UpdateOrderRequest struct {
	Status          *string           `json:"status"`
	CustomerName    *string           `json:"customer_name"`
	CustomerEmail   *string           `json:"customer_email"`
	ShippingAddress *order.Address    `json:"shipping_address"`
	TotalAmount     *decimal.Decimal  `json:"total_amount"`
	Currency        *string           `json:"currency"`
	LineItems       *[]order.LineItem `json:"line_items"`
	OrderDate       *time.Time        `json:"order_date"`
}

// OrderListFilter represents filter options for listing orders
type OrderListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
	Source   string `form:"source"`
	Status   string `form:"status"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID        `json:"id"`
	ExternalID      string           `json:"external_id"`
	Source          string           `json:"source"`
	Status          string           `json:"status"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email,omitempty"`
	ShippingAddress *order.Address   `json:"shipping_address,omitempty"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Currency        string           `json:"currency"`
	LineItems       []order.LineItem `json:"line_items,omitempty"`
	OrderDate       time.Time        `json:"order_date"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CountResponse carries a bare row count
type CountResponse struct {
	Count int64 `json:"count"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		ExternalID:      o.ExternalID,
		Source:          o.Source.String(),
		Status:          o.Status.String(),
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		TotalAmount:     o.TotalAmount,
		Currency:        o.Currency,
		LineItems:       o.LineItems,
		OrderDate:       o.OrderDate,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
