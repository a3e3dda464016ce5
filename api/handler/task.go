package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/pkg/httpcontext"
	boardUC "github.com/taskboard/backend/usecase/board"
)

type TaskHandler struct {
	baseHandler
	uc *boardUC.UseCase
}

func NewTaskHandler(uc *boardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List the whole board
// @Tags board
// @Router /api/v1/board [get]
func (h *TaskHandler) GetBoard(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.uc.Snapshot(stdCtx)
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

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	params, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, params)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}
	params, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, id, params)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Move task to another column
// @Tags tasks
// @Router /api/v1/tasks/{id}/move [post]
func (h *TaskHandler) MoveTask(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	var req transport.MoveTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || id == "" || req.ColumnID == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	moved, err := h.uc.MoveTask(stdCtx, id, req.ColumnID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, moved)
}

// @Summary Reorder task within its column
// @Tags tasks
// @Router /api/v1/tasks/{id}/reorder [post]
func (h *TaskHandler) ReorderTask(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	var req transport.ReorderTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || id == "" || req.TargetID == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ReorderTask(stdCtx, id, req.TargetID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Preview a cascading delete
// @Tags tasks
// @Router /api/v1/tasks/{id}/delete-preview [get]
func (h *TaskHandler) DeletePreview(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	descendants, err := h.uc.DeletePreview(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"descendants": descendants})
}

// @Summary Delete task and its subtree
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	removed, err := h.uc.DeleteTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"removed": removed})
}

// @Summary List cycle-safe parent candidates
// @Tags tasks
// @Router /api/v1/tasks/{id}/parents [get]
func (h *TaskHandler) CandidateParents(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	candidates, err := h.uc.CandidateParents(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, candidates)
}

// @Summary Aggregate logged time over the subtree
// @Tags tasks
// @Router /api/v1/tasks/{id}/time-spent [get]
func (h *TaskHandler) TotalTimeSpent(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	total, err := h.uc.TotalTimeSpent(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int64{"total_time_spent": total})
}

func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx) (boardUC.CreateTaskParams, bool) {
	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Title == "" {
		h.respondInvalid(ctx, "invalid payload")
		return boardUC.CreateTaskParams{}, false
	}

	return boardUC.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Labels:      req.Labels,
		ParentID:    req.ParentID,
		StartDate:   req.ParsedStartDate(),
		Duration:    req.Duration,
	}, true
}
