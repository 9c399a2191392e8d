package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	integrationapp "github.com/morganchorlton3/order-tracker/internal/application/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// SyncHandler handles sync scheduling and the sync run ledger endpoints
type SyncHandler struct {
	BaseHandler
	syncService *integrationapp.SyncService
	logger      *zap.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *integrationapp.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{syncService: syncService, logger: logger}
}

// ScheduleSyncRequest selects the marketplace a sync run targets
type ScheduleSyncRequest struct {
	Source string `json:"source" binding:"required"`
}

// ImportOrders schedules an order import and runs it in the background
func (h *SyncHandler) ImportOrders(c *gin.Context) {
	userID, source, ok := h.parseScheduleRequest(c)
	if !ok {
		return
	}

	run, err := h.syncService.ScheduleImport(c.Request.Context(), source)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// The request context dies with this response; the run gets its own
	go h.syncService.RunImport(context.Background(), run.ID, userID, source)

	h.Accepted(c, run)
}

// ExportProducts schedules a product export and runs it in the background
func (h *SyncHandler) ExportProducts(c *gin.Context) {
	userID, source, ok := h.parseScheduleRequest(c)
	if !ok {
		return
	}

	run, err := h.syncService.ScheduleExport(c.Request.Context(), source)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	go h.syncService.RunExport(context.Background(), run.ID, userID, source)

	h.Accepted(c, run)
}

// ListLogs lists sync runs, newest first
func (h *SyncHandler) ListLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		h.BadRequest(c, "limit must be between 1 and 100")
		return
	}
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		h.BadRequest(c, "skip cannot be negative")
		return
	}

	filter := shared.DefaultFilter()
	filter.PageSize = limit
	filter.Offset = skip
	filter.OrderBy = "started_at"
	if kind := c.Query("sync_type"); kind != "" {
		filter.Filters["kind"] = kind
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if source := c.Query("source"); source != "" {
		filter.Filters["source"] = source
	}

	runs, err := h.syncService.ListRuns(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, runs)
}

// GetLog returns one sync run by id
func (h *SyncHandler) GetLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sync run ID")
		return
	}

	run, err := h.syncService.GetRun(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, run)
}

func (h *SyncHandler) parseScheduleRequest(c *gin.Context) (uuid.UUID, order.Source, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, "", false
	}

	var req ScheduleSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return uuid.Nil, "", false
	}

	source := order.Source(req.Source)
	if !source.IsValid() {
		h.BadRequest(c, "Unknown marketplace source")
		return uuid.Nil, "", false
	}
	return userID, source, true
}
