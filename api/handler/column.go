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

type ColumnHandler struct {
	baseHandler
	uc *boardUC.UseCase
}

func NewColumnHandler(uc *boardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ColumnHandler {
	return &ColumnHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Add column
// @Tags columns
// @Router /api/v1/columns [post]
func (h *ColumnHandler) AddColumn(ctx *fasthttp.RequestCtx) {
	var req transport.ColumnRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.AddColumn(stdCtx, req.Title)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Rename column
// @Tags columns
// @Router /api/v1/columns/{id} [put]
func (h *ColumnHandler) RenameColumn(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	var req transport.ColumnRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || id == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	renamed, err := h.uc.RenameColumn(stdCtx, id, req.Title)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, renamed)
}

// @Summary Delete column
// @Tags columns
// @Router /api/v1/columns/{id} [delete]
func (h *ColumnHandler) DeleteColumn(ctx *fasthttp.RequestCtx) {
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing column id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteColumn(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Reorder columns
// @Tags columns
// @Router /api/v1/columns/reorder [post]
func (h *ColumnHandler) ReorderColumns(ctx *fasthttp.RequestCtx) {
	var req transport.ReorderColumnsRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.IDs) == 0 {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reordered, err := h.uc.ReorderColumns(stdCtx, req.IDs)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reordered)
}
