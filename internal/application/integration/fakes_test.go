package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type memStateRepo struct {
	mu     sync.Mutex
	states map[uuid.UUID]integration.AuthorizationState
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[uuid.UUID]integration.AuthorizationState)}
}

func (r *memStateRepo) Save(_ context.Context, s *integration.AuthorizationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[s.ID] = *s
	return nil
}

func (r *memStateRepo) FindByState(_ context.Context, state string, source order.Source) (*integration.AuthorizationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s.State == state && s.Source == source {
			copied := s
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStateRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, id)
	return nil
}

type memCredRepo struct {
	mu    sync.Mutex
	creds map[order.Source]integration.OAuthCredential
}

func newMemCredRepo() *memCredRepo {
	return &memCredRepo{creds: make(map[order.Source]integration.OAuthCredential)}
}

func (r *memCredRepo) FindBySource(_ context.Context, source order.Source) (*integration.OAuthCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.creds[source]; ok {
		copied := c
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCredRepo) Upsert(_ context.Context, c *integration.OAuthCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[c.Source] = *c
	return nil
}

// memRunRepo stores sync runs and can be told to fail terminal writes
type memRunRepo struct {
	mu                  sync.Mutex
	runs                map[uuid.UUID]integration.SyncRun
	failTerminalUpdates int
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{runs: make(map[uuid.UUID]integration.SyncRun)}
}

func (r *memRunRepo) Create(_ context.Context, run *integration.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *memRunRepo) FindByID(_ context.Context, id uuid.UUID) (*integration.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok {
		copied := run
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memRunRepo) FindAll(_ context.Context, _ shared.Filter) ([]integration.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]integration.SyncRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
	}
	return out, nil
}

func (r *memRunRepo) Update(_ context.Context, run *integration.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run.Status.IsTerminal() && r.failTerminalUpdates > 0 {
		r.failTerminalUpdates--
		return fmt.Errorf("simulated ledger write failure")
	}
	if _, ok := r.runs[run.ID]; !ok {
		return shared.ErrNotFound
	}
	r.runs[run.ID] = *run
	return nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]order.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]order.Order)}
}

func (r *memOrderRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok && o.UserID == userID {
		copied := o
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByExternalID(_ context.Context, userID uuid.UUID, externalID string, source order.Source) (*order.Order, error) {
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

func (r *memOrderRepo) FindAll(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]order.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) Count(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *memOrderRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok && o.UserID == userID {
		delete(r.orders, id)
		return nil
	}
	return shared.ErrNotFound
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *memProductRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok && p.UserID == userID {
		copied := p
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindBySKU(_ context.Context, userID uuid.UUID, sku string) (*catalog.Product, error) {
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

func (r *memProductRepo) FindAll(_ context.Context, userID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, filterStatus := filter.Filters["status"].(catalog.ProductStatus)
	out := make([]catalog.Product, 0)
	for _, p := range r.products {
		if p.UserID != userID {
			continue
		}
		if filterStatus && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok && p.UserID == userID {
		delete(r.products, id)
		return nil
	}
	return shared.ErrNotFound
}

// ---------------------------------------------------------------------------
// Fake provider and marketplace
// ---------------------------------------------------------------------------

// fakeProvider implements integration.OAuthProvider with scripted behavior
type fakeProvider struct {
	source       order.Source
	configured   bool
	grant        *integration.TokenGrant
	exchangeErr  error
	shop         *integration.ShopInfo
	shopErr      error
	lastVerifier string
}

func (p *fakeProvider) Source() order.Source { return p.source }
func (p *fakeProvider) Configured() bool     { return p.configured }

func (p *fakeProvider) AuthorizeURL(state, codeChallenge string) string {
	return fmt.Sprintf("https://provider.example/authorize?state=%s&code_challenge=%s", state, codeChallenge)
}

func (p *fakeProvider) ExchangeCode(_ context.Context, _, codeVerifier string) (*integration.TokenGrant, error) {
	p.lastVerifier = codeVerifier
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.grant, nil
}

func (p *fakeProvider) ResolveShop(_ context.Context, _ string) (*integration.ShopInfo, error) {
	if p.shopErr != nil {
		return nil, p.shopErr
	}
	return p.shop, nil
}

// fakeRecord is the wire shape fakeMarketplace transforms
type fakeRecord struct {
	ExternalID string `json:"external_id"`
	TotalCents int64  `json:"total_cents"`
	Bad        bool   `json:"bad"`
}

func fakeRaw(externalID string, totalCents int64, bad bool) json.RawMessage {
	raw, _ := json.Marshal(fakeRecord{ExternalID: externalID, TotalCents: totalCents, Bad: bad})
	return raw
}

// fakeMarketplace implements integration.Marketplace with scripted behavior
type fakeMarketplace struct {
	source    order.Source
	raws      []json.RawMessage
	fetchErr  error
	exportErr map[string]error
	exported  []string
}

func (m *fakeMarketplace) Source() order.Source { return m.source }

func (m *fakeMarketplace) AccessToken(context.Context) (string, error) { return "token", nil }

func (m *fakeMarketplace) FetchOrders(context.Context, *time.Time) ([]json.RawMessage, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.raws, nil
}

func (m *fakeMarketplace) TransformOrder(raw json.RawMessage) (*order.Order, error) {
	var rec fakeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Bad || rec.ExternalID == "" {
		return nil, fmt.Errorf("malformed record")
	}
	return &order.Order{
		ExternalID:   rec.ExternalID,
		Source:       m.source,
		Status:       order.StatusPending,
		CustomerName: "Buyer",
		TotalAmount:  decimal.NewFromInt(rec.TotalCents).Div(decimal.NewFromInt(100)),
		Currency:     "USD",
		OrderDate:    time.Unix(1700000000, 0).UTC(),
	}, nil
}

func (m *fakeMarketplace) ExportProduct(_ context.Context, p *catalog.Product) error {
	if err, ok := m.exportErr[p.SKU]; ok {
		return err
	}
	m.exported = append(m.exported, p.SKU)
	if p.EtsyListingID == "" {
		p.EtsyListingID = "listing-" + p.SKU
	}
	return nil
}
