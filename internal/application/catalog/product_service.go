package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// ProductService handles product business operations, all scoped to one user
type ProductService struct {
	productRepo catalog.Repository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.Repository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create creates a product. The SKU must be unique within the user's catalog.
func (s *ProductService) Create(ctx context.Context, userID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	_, err := s.productRepo.FindBySKU(ctx, userID, req.SKU)
	if err == nil {
		return nil, shared.ErrAlreadyExists
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	p, err := catalog.New(userID, req.Name, req.SKU, req.Price)
	if err != nil {
		return nil, err
	}

	if req.Status != "" {
		status := catalog.ProductStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown product status")
		}
		p.Status = status
	}
	if req.Currency != "" {
		p.Currency = req.Currency
	}
	p.Description = req.Description
	p.Quantity = req.Quantity
	p.Images = req.Images
	p.Tags = req.Tags

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToProductResponse(p)
	return &resp, nil
}

// GetByID retrieves a product owned by the user
func (s *ProductService) GetByID(ctx context.Context, userID, productID uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// List retrieves the user's products with filtering and pagination
func (s *ProductService) List(ctx context.Context, userID uuid.UUID, filter ProductListFilter) ([]ProductResponse, error) {
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	products, err := s.productRepo.FindAll(ctx, userID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, nil
}

// Update applies a partial update to a product owned by the user
func (s *ProductService) Update(ctx context.Context, userID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
		}
		p.Price = *req.Price
	}
	if req.Currency != nil {
		p.Currency = *req.Currency
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
		}
		p.Quantity = *req.Quantity
	}
	if req.Images != nil {
		p.Images = *req.Images
	}
	if req.Tags != nil {
		p.Tags = *req.Tags
	}
	if req.Status != nil {
		status := catalog.ProductStatus(*req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown product status")
		}
		p.Status = status
	}
	p.UpdatedAt = time.Now()

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToProductResponse(p)
	return &resp, nil
}

// Delete removes a product owned by the user
func (s *ProductService) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	return s.productRepo.Delete(ctx, userID, productID)
}
