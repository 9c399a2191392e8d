package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByExternalID(ctx context.Context, userID uuid.UUID, externalID string, source order.Source) (*order.Order, error) {
	args := m.Called(ctx, userID, externalID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func TestOrderService_Create(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()

	repo.On("FindByExternalID", mock.Anything, userID, "etsy-100", order.SourceEtsy).
		Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	resp, err := service.Create(context.Background(), userID, CreateOrderRequest{
		ExternalID:   "etsy-100",
		Source:       "etsy",
		Status:       "shipped",
		CustomerName: "Jane Doe",
		TotalAmount:  decimal.RequireFromString("19.99"),
		Currency:     "GBP",
	})

	require.NoError(t, err)
	assert.Equal(t, "etsy-100", resp.ExternalID)
	assert.Equal(t, "shipped", resp.Status)
	assert.Equal(t, "GBP", resp.Currency)
	repo.AssertExpectations(t)
}

func TestOrderService_Create_GeneratesExternalID(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()

	repo.On("FindByExternalID", mock.Anything, userID, mock.AnythingOfType("string"), order.SourceEtsy).
		Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	resp, err := service.Create(context.Background(), userID, CreateOrderRequest{
		Source:       "etsy",
		CustomerName: "Jane Doe",
		TotalAmount:  decimal.NewFromInt(5),
	})

	require.NoError(t, err)
	assert.Contains(t, resp.ExternalID, "manual-")
	assert.Equal(t, "pending", resp.Status)
}

func TestOrderService_Create_InvalidSource(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)

	_, err := service.Create(context.Background(), uuid.New(), CreateOrderRequest{
		Source:       "amazon",
		CustomerName: "Jane Doe",
		TotalAmount:  decimal.NewFromInt(5),
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Save")
}

func TestOrderService_Create_DuplicateExternalID(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()

	existing, err := order.New(userID, "etsy-100", order.SourceEtsy, "Jane Doe", decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)
	repo.On("FindByExternalID", mock.Anything, userID, "etsy-100", order.SourceEtsy).
		Return(existing, nil)

	_, err = service.Create(context.Background(), userID, CreateOrderRequest{
		ExternalID:   "etsy-100",
		Source:       "etsy",
		CustomerName: "Jane Doe",
		TotalAmount:  decimal.NewFromInt(5),
	})

	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	repo.AssertNotCalled(t, "Save")
}

func TestOrderService_GetByID(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()

	existing, err := order.New(userID, "etsy-100", order.SourceEtsy, "Jane Doe", decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, userID, existing.ID).Return(existing, nil)

	resp, err := service.GetByID(context.Background(), userID, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)

	repo.On("FindByID", mock.Anything, userID, mock.AnythingOfType("uuid.UUID")).
		Return(nil, shared.ErrNotFound)
	_, err = service.GetByID(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderService_List(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()

	o1, err := order.New(userID, "etsy-1", order.SourceEtsy, "Jane Doe", decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)
	o2, err := order.New(userID, "tt-1", order.SourceTikTokShop, "John Doe", decimal.NewFromInt(8), time.Now())
	require.NoError(t, err)

	repo.On("FindAll", mock.Anything, userID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10 && f.Filters["source"] == "etsy" && f.Filters["status"] == "pending"
	})).Return([]order.Order{*o1, *o2}, nil)

	resp, err := service.List(context.Background(), userID, OrderListFilter{
		Page: 2, PageSize: 10, Source: "etsy", Status: "pending",
	})
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, "etsy-1", resp[0].ExternalID)
	repo.AssertExpectations(t)
}

func TestOrderService_Count(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()

	repo.On("Count", mock.Anything, userID).Return(int64(42), nil)

	resp, err := service.Count(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.Count)
}

func TestOrderService_Update(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()

	existing, err := order.New(userID, "etsy-100", order.SourceEtsy, "Jane Doe", decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, userID, existing.ID).Return(existing, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	newStatus := "delivered"
	newAmount := decimal.RequireFromString("25.50")
	resp, err := service.Update(context.Background(), userID, existing.ID, UpdateOrderRequest{
		Status:      &newStatus,
		TotalAmount: &newAmount,
	})

	require.NoError(t, err)
	assert.Equal(t, "delivered", resp.Status)
	assert.True(t, resp.TotalAmount.Equal(newAmount))
	// Untouched fields survive a partial update
	assert.Equal(t, "Jane Doe", resp.CustomerName)
	repo.AssertExpectations(t)
}

func TestOrderService_Update_InvalidStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()

	existing, err := order.New(userID, "etsy-100", order.SourceEtsy, "Jane Doe", decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, userID, existing.ID).Return(existing, nil)

	bad := "teleported"
	_, err = service.Update(context.Background(), userID, existing.ID, UpdateOrderRequest{Status: &bad})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Save")
}

func TestOrderService_Delete(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewOrderService(repo)
	userID := uuid.New()
	orderID := uuid.New()

	repo.On("Delete", mock.Anything, userID, orderID).Return(nil)
	assert.NoError(t, service.Delete(context.Background(), userID, orderID))

	repo2 := new(MockOrderRepository)
	service2 := NewOrderService(repo2)
	repo2.On("Delete", mock.Anything, userID, orderID).Return(shared.ErrNotFound)
	assert.ErrorIs(t, service2.Delete(context.Background(), userID, orderID), shared.ErrNotFound)
}
