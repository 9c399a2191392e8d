package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	integrationapp "github.com/morganchorlton3/order-tracker/internal/application/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
	"github.com/morganchorlton3/order-tracker/internal/interfaces/http/middleware"
)

type stubRunRepo struct {
	mu         sync.Mutex
	runs       map[uuid.UUID]integration.SyncRun
	lastFilter shared.Filter
}

func newStubRunRepo() *stubRunRepo {
	return &stubRunRepo{runs: make(map[uuid.UUID]integration.SyncRun)}
}

func (r *stubRunRepo) Create(_ context.Context, run *integration.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *stubRunRepo) FindByID(_ context.Context, id uuid.UUID) (*integration.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok {
		copied := run
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubRunRepo) FindAll(_ context.Context, filter shared.Filter) ([]integration.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	out := make([]integration.SyncRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
	}
	return out, nil
}

func (r *stubRunRepo) Update(_ context.Context, run *integration.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]order.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]order.Order)}
}

func (r *stubOrderRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok && o.UserID == userID {
		copied := o
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepo) FindByExternalID(_ context.Context, userID uuid.UUID, externalID string, source order.Source) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID == userID && o.ExternalID == externalID && o.Source == source {
			copied := o
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubOrderRepo) FindAll(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) Count(_ context.Context, userID uuid.UUID) (int64, error) {
	orders, _ := r.FindAll(context.Background(), userID, shared.DefaultFilter())
	return int64(len(orders)), nil
}

func (r *stubOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok && o.UserID == userID {
		delete(r.orders, id)
		return nil
	}
	return shared.ErrNotFound
}

type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *stubProductRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok && p.UserID == userID {
		copied := p
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubProductRepo) FindBySKU(_ context.Context, userID uuid.UUID, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.UserID == userID && p.SKU == sku {
			copied := p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubProductRepo) FindAll(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, p := range r.products {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok && p.UserID == userID {
		delete(r.products, id)
		return nil
	}
	return shared.ErrNotFound
}

type stubMarketplace struct {
	source order.Source
	raws   []json.RawMessage
}

func (m *stubMarketplace) Source() order.Source { return m.source }

func (m *stubMarketplace) AccessToken(context.Context) (string, error) {
	return "stub-token", nil
}

func (m *stubMarketplace) FetchOrders(context.Context, *time.Time) ([]json.RawMessage, error) {
	return m.raws, nil
}

func (m *stubMarketplace) TransformOrder(raw json.RawMessage) (*order.Order, error) {
	var rec struct {
		ExternalID string `json:"external_id"`
		Total      string `json:"total"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(rec.Total)
	if err != nil {
		return nil, err
	}
	return order.New(uuid.Nil, rec.ExternalID, m.source, "Buyer", amount, time.Unix(1700000000, 0).UTC())
}

func (m *stubMarketplace) ExportProduct(context.Context, *catalog.Product) error {
	return nil
}

type syncTestEnv struct {
	engine *gin.Engine
	runs   *stubRunRepo
	orders *stubOrderRepo
	userID uuid.UUID
}

func newSyncTestRouter(marketplace integration.Marketplace) *syncTestEnv {
	runs := newStubRunRepo()
	orders := newStubOrderRepo()
	products := newStubProductRepo()
	svc := integrationapp.NewSyncService(
		[]integration.Marketplace{marketplace}, runs, orders, products, zap.NewNop())
	h := NewSyncHandler(svc, zap.NewNop())

	userID := uuid.New()
	engine := gin.New()
	group := engine.Group("/api/v1/sync")
	group.Use(func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID.String())
	})
	group.POST("/orders/import", h.ImportOrders)
	group.POST("/products/export", h.ExportProducts)
	group.GET("/logs", h.ListLogs)
	group.GET("/logs/:id", h.GetLog)
	return &syncTestEnv{engine: engine, runs: runs, orders: orders, userID: userID}
}

func scheduleBody(t *testing.T, source string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{"source": source})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestSyncHandler_ImportOrders(t *testing.T) {
	env := newSyncTestRouter(&stubMarketplace{
		source: order.SourceEtsy,
		raws: []json.RawMessage{
			json.RawMessage(`{"external_id": "etsy-1", "total": "19.99"}`),
			json.RawMessage(`{"external_id": "etsy-2", "total": "5.00"}`),
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders/import", scheduleBody(t, "etsy"))
	req.Header.Set("Content-Type", "application/json")
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID       uuid.UUID `json:"id"`
			SyncType string    `json:"sync_type"`
			Status   string    `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "order_import", resp.Data.SyncType)
	assert.Equal(t, "pending", resp.Data.Status)

	// The import runs on a goroutine after the response is written
	require.Eventually(t, func() bool {
		run, err := env.runs.FindByID(context.Background(), resp.Data.ID)
		return err == nil && run.Status.IsTerminal()
	}, 2*time.Second, 10*time.Millisecond)

	run, err := env.runs.FindByID(context.Background(), resp.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStatusSuccess, run.Status)
	assert.Equal(t, 2, run.RecordsProcessed)
	assert.Equal(t, 2, run.RecordsSucceeded)

	imported, err := env.orders.FindAll(context.Background(), env.userID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, imported, 2)
}

func TestSyncHandler_ImportOrders_UnknownSource(t *testing.T) {
	env := newSyncTestRouter(&stubMarketplace{source: order.SourceEtsy})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders/import", scheduleBody(t, "amazon"))
	req.Header.Set("Content-Type", "application/json")
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown marketplace source")
}

func TestSyncHandler_ImportOrders_Unauthenticated(t *testing.T) {
	runs := newStubRunRepo()
	svc := integrationapp.NewSyncService(nil, runs, newStubOrderRepo(), newStubProductRepo(), zap.NewNop())
	h := NewSyncHandler(svc, zap.NewNop())

	engine := gin.New()
	engine.POST("/api/v1/sync/orders/import", h.ImportOrders)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders/import", scheduleBody(t, "etsy"))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncHandler_ExportProducts(t *testing.T) {
	env := newSyncTestRouter(&stubMarketplace{source: order.SourceEtsy})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/products/export", scheduleBody(t, "etsy"))
	req.Header.Set("Content-Type", "application/json")
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		Data struct {
			ID       uuid.UUID `json:"id"`
			SyncType string    `json:"sync_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "product_export", resp.Data.SyncType)

	require.Eventually(t, func() bool {
		run, err := env.runs.FindByID(context.Background(), resp.Data.ID)
		return err == nil && run.Status.IsTerminal()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSyncHandler_ListLogs(t *testing.T) {
	env := newSyncTestRouter(&stubMarketplace{source: order.SourceEtsy})
	svcRun, err := integration.NewSyncRun(integration.SyncKindOrderImport, order.SourceEtsy)
	require.NoError(t, err)
	require.NoError(t, env.runs.Create(context.Background(), svcRun))

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs?limit=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "pending", resp.Data[0].Status)
}

func TestSyncHandler_ListLogs_SkipIsRawOffset(t *testing.T) {
	env := newSyncTestRouter(&stubMarketplace{source: order.SourceEtsy})

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs?skip=1&limit=2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.runs.lastFilter.Offset)
	assert.Equal(t, 2, env.runs.lastFilter.PageSize)
}

func TestSyncHandler_GetLog(t *testing.T) {
	env := newSyncTestRouter(&stubMarketplace{source: order.SourceEtsy})
	run, err := integration.NewSyncRun(integration.SyncKindProductExport, order.SourceTikTokShop)
	require.NoError(t, err)
	require.NoError(t, env.runs.Create(context.Background(), run))

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs/"+run.ID.String(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "product_export")
}

func TestSyncHandler_GetLog_NotFound(t *testing.T) {
	env := newSyncTestRouter(&stubMarketplace{source: order.SourceEtsy})

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}
