package integration

import (
	"context"

	"github.com/google/uuid"

	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// AuthorizationStateRepository persists transient authorization state
type AuthorizationStateRepository interface {
	// Save stores a pending authorization state
	Save(ctx context.Context, s *AuthorizationState) error

	// FindByState finds a pending state by its CSRF token and source
	FindByState(ctx context.Context, state string, source order.Source) (*AuthorizationState, error)

	// Delete removes a consumed state
	Delete(ctx context.Context, id uuid.UUID) error
}

// CredentialRepository persists OAuth credentials, one per source
type CredentialRepository interface {
	// FindBySource finds the live credential for a source
	FindBySource(ctx context.Context, source order.Source) (*OAuthCredential, error)

	// Upsert replaces the credential for the source, creating it if absent
	Upsert(ctx context.Context, c *OAuthCredential) error
}

// SyncRunRepository persists the sync run ledger
type SyncRunRepository interface {
	// Create stores a new sync run
	Create(ctx context.Context, r *SyncRun) error

	// FindByID finds a sync run by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SyncRun, error)

	// FindAll lists sync runs newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]SyncRun, error)

	// Update persists changes to an existing sync run
	Update(ctx context.Context, r *SyncRun) error
}
