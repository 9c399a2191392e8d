package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// Repository defines the interface for persisting products
type Repository interface {
	// FindByID finds a product by ID scoped to a user
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by SKU scoped to a user
	FindBySKU(ctx context.Context, userID uuid.UUID, sku string) (*Product, error)

	// FindAll finds all products for a user with optional status filter
	FindAll(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// Delete deletes a product scoped to a user
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
