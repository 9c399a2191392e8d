package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/morganchorlton3/order-tracker/internal/domain/catalog"
	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// exportPageSize bounds how many products one export run will push
const exportPageSize = 500

// SyncService runs import and export jobs against the marketplaces and keeps
// the sync run ledger truthful about what happened
type SyncService struct {
	marketplaces map[order.Source]integration.Marketplace
	runs         integration.SyncRunRepository
	orders       order.Repository
	products     catalog.Repository
	logger       *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	marketplaces []integration.Marketplace,
	runs integration.SyncRunRepository,
	orders order.Repository,
	products catalog.Repository,
	logger *zap.Logger,
) *SyncService {
	bySource := make(map[order.Source]integration.Marketplace, len(marketplaces))
	for _, m := range marketplaces {
		bySource[m.Source()] = m
	}
	return &SyncService{
		marketplaces: bySource,
		runs:         runs,
		orders:       orders,
		products:     products,
		logger:       logger,
	}
}

// ScheduleImport records a pending order-import run. The caller launches the
// actual run on a goroutine and returns the pending run immediately.
func (s *SyncService) ScheduleImport(ctx context.Context, source order.Source) (*SyncRunResponse, error) {
	return s.schedule(ctx, integration.SyncKindOrderImport, source)
}

// ScheduleExport records a pending product-export run
func (s *SyncService) ScheduleExport(ctx context.Context, source order.Source) (*SyncRunResponse, error) {
	return s.schedule(ctx, integration.SyncKindProductExport, source)
}

func (s *SyncService) schedule(ctx context.Context, kind integration.SyncKind, source order.Source) (*SyncRunResponse, error) {
	run, err := integration.NewSyncRun(kind, source)
	if err != nil {
		return nil, err
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	resp := ToSyncRunResponse(run)
	return &resp, nil
}

// GetRun returns one sync run by id
func (s *SyncService) GetRun(ctx context.Context, id uuid.UUID) (*SyncRunResponse, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSyncRunResponse(run)
	return &resp, nil
}

// ListRuns returns sync runs, newest first
func (s *SyncService) ListRuns(ctx context.Context, filter shared.Filter) ([]SyncRunResponse, error) {
	runs, err := s.runs.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]SyncRunResponse, len(runs))
	for i := range runs {
		responses[i] = ToSyncRunResponse(&runs[i])
	}
	return responses, nil
}

// syncStats tracks record counts outside the run so a failed ledger write
// cannot lose them
type syncStats struct {
	processed int
	succeeded int
	failed    int
	errMsg    string
}

// RunImport executes an order import run end to end. It never returns an
// error: every outcome, including its own inability to write the ledger, is
// either recorded in the run or logged and swallowed.
func (s *SyncService) RunImport(ctx context.Context, runID, userID uuid.UUID, source order.Source) {
	if !s.markInProgress(ctx, runID) {
		return
	}

	stats := s.importOrders(ctx, userID, source)
	s.writeTerminal(ctx, runID, stats)
}

// importOrders performs the fetch-transform-reconcile loop and returns the
// final counts. A batch-level failure sets errMsg; a record-level failure
// only increments the counters.
func (s *SyncService) importOrders(ctx context.Context, userID uuid.UUID, source order.Source) syncStats {
	var stats syncStats

	m, ok := s.marketplaces[source]
	if !ok {
		stats.errMsg = fmt.Sprintf("unknown source: %s", source)
		stats.failed = 1
		return stats
	}

	raws, err := m.FetchOrders(ctx, nil)
	if err != nil {
		stats.errMsg = err.Error()
		if stats.processed == 0 {
			stats.failed = 1
		}
		return stats
	}

	for _, raw := range raws {
		if err := s.importOne(ctx, m, userID, source, raw); err != nil {
			stats.failed++
			stats.processed++
			s.logger.Warn("failed to import order record",
				zap.String("source", source.String()), zap.Error(err))
			continue
		}
		stats.succeeded++
		stats.processed++
	}

	return stats
}

// importOne transforms one raw record and upserts it by (external_id, source)
func (s *SyncService) importOne(ctx context.Context, m integration.Marketplace, userID uuid.UUID, source order.Source, raw []byte) error {
	incoming, err := m.TransformOrder(raw)
	if err != nil {
		return err
	}
	incoming.UserID = userID

	existing, err := s.orders.FindByExternalID(ctx, userID, incoming.ExternalID, source)
	switch {
	case err == nil:
		return s.orders.Save(ctx, order.Merge(existing, incoming))
	case errors.Is(err, shared.ErrNotFound):
		incoming.ID = uuid.New()
		if incoming.CreatedAt.IsZero() {
			incoming.CreatedAt = incoming.OrderDate
		}
		incoming.UpdatedAt = incoming.CreatedAt
		return s.orders.Save(ctx, incoming)
	default:
		return err
	}
}

// RunExport executes a product export run end to end, mirroring RunImport
func (s *SyncService) RunExport(ctx context.Context, runID, userID uuid.UUID, source order.Source) {
	if !s.markInProgress(ctx, runID) {
		return
	}

	stats := s.exportProducts(ctx, userID, source)
	s.writeTerminal(ctx, runID, stats)
}

// exportProducts pushes the user's active products to the marketplace
func (s *SyncService) exportProducts(ctx context.Context, userID uuid.UUID, source order.Source) syncStats {
	var stats syncStats

	m, ok := s.marketplaces[source]
	if !ok {
		stats.errMsg = fmt.Sprintf("unknown source: %s", source)
		stats.failed = 1
		return stats
	}

	filter := shared.DefaultFilter()
	filter.PageSize = exportPageSize
	filter.Filters["status"] = catalog.ProductStatusActive

	products, err := s.products.FindAll(ctx, userID, filter)
	if err != nil {
		stats.errMsg = err.Error()
		stats.failed = 1
		return stats
	}

	for i := range products {
		p := &products[i]
		if err := m.ExportProduct(ctx, p); err != nil {
			stats.failed++
			stats.processed++
			s.logger.Warn("failed to export product",
				zap.String("source", source.String()),
				zap.String("sku", p.SKU), zap.Error(err))
			continue
		}
		// persist the external listing mapping the export may have set
		if err := s.products.Save(ctx, p); err != nil {
			stats.failed++
			stats.processed++
			continue
		}
		stats.succeeded++
		stats.processed++
	}

	return stats
}

// markInProgress transitions the run to in_progress and commits that before
// any external work starts. If the transition cannot be recorded the run is
// abandoned, matching the rule that the ledger never lies about a run state.
func (s *SyncService) markInProgress(ctx context.Context, runID uuid.UUID) bool {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		s.logger.Warn("sync run not found", zap.String("run_id", runID.String()), zap.Error(err))
		return false
	}
	if err := run.Start(); err != nil {
		s.logger.Warn("sync run not in a startable state",
			zap.String("run_id", runID.String()), zap.String("status", run.Status.String()))
		return false
	}
	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.Warn("failed to mark sync run in progress",
			zap.String("run_id", runID.String()), zap.Error(err))
		return false
	}
	return true
}

// writeTerminal records the final state of the run. It re-reads the run,
// applies the terminal transition with the counts, and writes. If that write
// fails it retries once with a minimal failure record; if the retry fails too
// the error is logged and swallowed.
func (s *SyncService) writeTerminal(ctx context.Context, runID uuid.UUID, stats syncStats) {
	run, err := s.runs.FindByID(ctx, runID)
	if err == nil {
		if stats.errMsg != "" {
			run.Fail(stats.processed, stats.succeeded, stats.failed, stats.errMsg)
		} else {
			run.Complete(stats.processed, stats.succeeded, stats.failed)
		}
		err = s.runs.Update(ctx, run)
		if err == nil {
			return
		}
	}

	// fallback: one more attempt with a minimal failure record
	s.logger.Warn("failed to write sync run result, retrying with failure record",
		zap.String("run_id", runID.String()), zap.Error(err))

	run, ferr := s.runs.FindByID(ctx, runID)
	if ferr != nil {
		s.logger.Error("giving up on sync run ledger write",
			zap.String("run_id", runID.String()), zap.Error(ferr))
		return
	}
	msg := stats.errMsg
	if msg == "" {
		msg = err.Error()
	}
	run.Fail(run.RecordsProcessed, run.RecordsSucceeded, run.RecordsFailed, msg)
	if ferr := s.runs.Update(ctx, run); ferr != nil {
		s.logger.Error("giving up on sync run ledger write",
			zap.String("run_id", runID.String()), zap.Error(ferr))
	}
}
