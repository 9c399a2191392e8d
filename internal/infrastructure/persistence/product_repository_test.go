package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{})
	require.NoError(t, err)

	return db
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	p, err := catalog.New(userID, "Walnut Coaster Set", "WCS-001", decimal.NewFromFloat(24.99))
	require.NoError(t, err)
	p.Images = []string{"https://img.example/coasters.jpg"}
	p.Tags = []string{"handmade", "walnut"}

	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "WCS-001", found.SKU)
	assert.Equal(t, catalog.ProductStatusDraft, found.Status)
	assert.Equal(t, []string{"handmade", "walnut"}, found.Tags)

	bySKU, err := repo.FindBySKU(ctx, userID, "WCS-001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySKU.ID)

	_, err = repo.FindBySKU(ctx, uuid.New(), "WCS-001")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindAll_StatusFilter(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	for i, status := range []catalog.ProductStatus{
		catalog.ProductStatusDraft, catalog.ProductStatusActive, catalog.ProductStatusActive,
	} {
		p, err := catalog.New(userID, "Product", uuid.NewString(), decimal.NewFromInt(int64(i+1)))
		require.NoError(t, err)
		p.Status = status
		require.NoError(t, repo.Save(ctx, p))
	}

	filter := shared.DefaultFilter()
	filter.Filters["status"] = catalog.ProductStatusActive

	active, err := repo.FindAll(ctx, userID, filter)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestGormProductRepository_Delete(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	p, err := catalog.New(userID, "Linen Tote", "LT-001", decimal.NewFromFloat(18.00))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	require.NoError(t, repo.Delete(ctx, userID, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, userID, p.ID), shared.ErrNotFound)
}
