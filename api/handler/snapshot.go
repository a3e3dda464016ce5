package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/pkg/httpcontext"
	boardUC "github.com/taskboard/backend/usecase/board"
)

// SnapshotHandler serves the backup file: a whole-board export and the
// matching destructive import.
type SnapshotHandler struct {
	baseHandler
	uc *boardUC.UseCase
}

func NewSnapshotHandler(uc *boardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Export the board as a backup file
// @Tags snapshot
// @Router /api/v1/snapshot [get]
func (h *SnapshotHandler) Export(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.uc.Export(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"tasks":   state.Tasks,
		"labels":  state.Labels,
		"columns": state.Columns,
	})
}

// @Summary Replace the board with a backup file
// @Tags snapshot
// @Router /api/v1/snapshot [post]
func (h *SnapshotHandler) Import(ctx *fasthttp.RequestCtx) {
	var payload transport.SnapshotPayload
	if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	tasks, missingOrders := payload.TaskList()
	if missingOrders {
		// Backup written before explicit ordering: derive orders from the
		// file's task sequence.
		tasks = domain.NormalizeOrders(tasks)
		h.logger.Info("migrated snapshot without explicit orders", zap.Int("tasks", len(tasks)))
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.uc.Import(stdCtx, boardUC.State{
		Tasks:   tasks,
		Labels:  payload.Labels,
		Columns: payload.Columns,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
