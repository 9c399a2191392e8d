package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// Repository defines the interface for persisting orders
type Repository interface {
	// FindByID finds an order by ID scoped to a user
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Order, error)

	// FindByExternalID finds an order by its reconciliation key (externalID, source)
	FindByExternalID(ctx context.Context, userID uuid.UUID, externalID string, source Source) (*Order, error)

	// FindAll finds all orders for a user with optional source/status filters
	FindAll(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// Count counts all orders for a user
	Count(ctx context.Context, userID uuid.UUID) (int64, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// Delete deletes an order scoped to a user
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
