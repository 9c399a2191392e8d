package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// OrderService handles order business operations, all scoped to one user
type OrderService struct {
	orderRepo order.Repository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.Repository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// Create creates an order by hand, outside the import pipeline. A missing
// external id gets a generated one so the (external_id, source) key stays
// unique.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	source := order.Source(req.Source)
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown order source")
	}

	externalID := req.ExternalID
	if externalID == "" {
		externalID = fmt.Sprintf("manual-%s", uuid.New().String()[:8])
	}

	if existing, err := s.orderRepo.FindByExternalID(ctx, userID, externalID, source); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	o, err := order.New(userID, externalID, source, req.CustomerName, req.TotalAmount, orderDate)
	if err != nil {
		return nil, err
	}

	if req.Status != "" {
		status := order.Status(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
		}
		o.Status = status
	}
	if req.Currency != "" {
		o.Currency = req.Currency
	}
	o.CustomerEmail = req.CustomerEmail
	o.ShippingAddress = req.ShippingAddress
	o.LineItems = req.LineItems

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByID retrieves an order owned by the user
func (s *OrderService) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List retrieves the user's orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, userID uuid.UUID, filter OrderListFilter) ([]OrderResponse, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Source != "" {
		domainFilter.Filters["source"] = filter.Source
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	orders, err := s.orderRepo.FindAll(ctx, userID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, nil
}

// Count returns how many orders the user has
func (s *OrderService) Count(ctx context.Context, userID uuid.UUID) (*CountResponse, error) {
	count, err := s.orderRepo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CountResponse{Count: count}, nil
}

// Update applies a partial update to an order owned by the user
func (s *OrderService) Update(ctx context.Context, userID, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := order.Status(*req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
		}
		o.Status = status
	}
	if req.CustomerName != nil {
		if *req.CustomerName == "" {
			return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
		}
		o.CustomerName = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		o.CustomerEmail = *req.CustomerEmail
	}
	if req.ShippingAddress != nil {
		o.ShippingAddress = req.ShippingAddress
	}
	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount cannot be negative")
		}
		o.TotalAmount = *req.TotalAmount
	}
	if req.Currency != nil {
		o.Currency = *req.Currency
	}
	if req.LineItems != nil {
		o.LineItems = *req.LineItems
	}
	if req.OrderDate != nil {
		o.OrderDate = *req.OrderDate
	}
	o.UpdatedAt = time.Now()

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// Delete removes an order owned by the user
func (s *OrderService) Delete(ctx context.Context, userID, orderID uuid.UUID) error {
	return s.orderRepo.Delete(ctx, userID, orderID)
}
