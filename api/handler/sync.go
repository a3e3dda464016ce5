package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/pkg/httpcontext"
	syncUC "github.com/taskboard/backend/usecase/sync"
)

// SyncHandler exposes the tracker import and sync operations. All of them
// are unavailable when no tracker is configured.
type SyncHandler struct {
	baseHandler
	engine           *syncUC.Engine
	defaultProjectID int
}

func NewSyncHandler(engine *syncUC.Engine, defaultProjectID int, adapter *httpcontext.Adapter, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		baseHandler:      newBaseHandler(adapter, logger),
		engine:           engine,
		defaultProjectID: defaultProjectID,
	}
}

func (h *SyncHandler) configured(ctx *fasthttp.RequestCtx) bool {
	if h.engine != nil {
		return true
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable,
		transport.NewError("TRACKER_DISABLED", "no tracker configured", nil))
	return false
}

// @Summary Import a tracker project
// @Tags sync
// @Router /api/v1/sync/import [post]
func (h *SyncHandler) ImportProject(ctx *fasthttp.RequestCtx) {
	if !h.configured(ctx) {
		return
	}

	var req transport.ImportProjectRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			h.respondInvalid(ctx, "invalid payload")
			return
		}
	}
	projectID := req.ProjectID
	if projectID == 0 {
		projectID = h.defaultProjectID
	}
	if projectID == 0 {
		h.respondInvalid(ctx, "missing project id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	report, err := h.engine.ImportProject(stdCtx, projectID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}

// @Summary Sync a single tracker task
// @Tags sync
// @Router /api/v1/sync/tasks/{id} [post]
func (h *SyncHandler) SyncTask(ctx *fasthttp.RequestCtx) {
	if !h.configured(ctx) {
		return
	}

	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.SyncTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Sync every tracker task
// @Tags sync
// @Router /api/v1/sync [post]
func (h *SyncHandler) SyncAll(ctx *fasthttp.RequestCtx) {
	if !h.configured(ctx) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	report, err := h.engine.SyncAll(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}
