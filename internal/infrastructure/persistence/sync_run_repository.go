package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// GormSyncRunRepository implements integration.SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

var _ integration.SyncRunRepository = (*GormSyncRunRepository)(nil)

// Create stores a new sync run
func (r *GormSyncRunRepository) Create(ctx context.Context, run *integration.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// FindByID finds a sync run by ID
func (r *GormSyncRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.SyncRun, error) {
	var run integration.SyncRun
	if err := r.db.WithContext(ctx).
		First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindAll lists sync runs with filtering, newest first by default
func (r *GormSyncRunRepository) FindAll(ctx context.Context, filter shared.Filter) ([]integration.SyncRun, error) {
	var runs []integration.SyncRun
	query := r.applyFilter(r.db.WithContext(ctx).Model(&integration.SyncRun{}), filter)

	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Update persists changes to an existing sync run
func (r *GormSyncRunRepository) Update(ctx context.Context, run *integration.SyncRun) error {
	result := r.db.WithContext(ctx).Save(run)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormSyncRunRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		}
	}

	if filter.PageSize > 0 {
		offset := filter.Offset
		if offset <= 0 && filter.Page > 0 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, SyncRunSortFields, "started_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}
