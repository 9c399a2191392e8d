package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// GormCredentialRepository implements integration.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

var _ integration.CredentialRepository = (*GormCredentialRepository)(nil)

// FindBySource finds the live credential for a source
func (r *GormCredentialRepository) FindBySource(ctx context.Context, source order.Source) (*integration.OAuthCredential, error) {
	var c integration.OAuthCredential
	if err := r.db.WithContext(ctx).
		Where("source = ?", source).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Upsert replaces the credential for the source, creating it if absent.
// The unique index on source makes this a single-row replace.
func (r *GormCredentialRepository) Upsert(ctx context.Context, c *integration.OAuthCredential) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "token_type",
				"expires_at", "shop_id", "shop_name", "updated_at",
			}),
		}).
		Create(c).Error
}
