package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// GormAuthStateRepository implements integration.AuthorizationStateRepository using GORM
type GormAuthStateRepository struct {
	db *gorm.DB
}

// NewGormAuthStateRepository creates a new GormAuthStateRepository
func NewGormAuthStateRepository(db *gorm.DB) *GormAuthStateRepository {
	return &GormAuthStateRepository{db: db}
}

var _ integration.AuthorizationStateRepository = (*GormAuthStateRepository)(nil)

// Save stores a pending authorization state
func (r *GormAuthStateRepository) Save(ctx context.Context, s *integration.AuthorizationState) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindByState finds a pending state by its CSRF token and source
func (r *GormAuthStateRepository) FindByState(ctx context.Context, state string, source order.Source) (*integration.AuthorizationState, error) {
	var s integration.AuthorizationState
	if err := r.db.WithContext(ctx).
		Where("state = ? AND source = ?", state, source).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes a consumed state
func (r *GormAuthStateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&integration.AuthorizationState{}, "id = ?", id).Error
}
