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

type LabelHandler struct {
	baseHandler
	uc *boardUC.UseCase
}

func NewLabelHandler(uc *boardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LabelHandler {
	return &LabelHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Add label
// @Tags labels
// @Router /api/v1/labels [post]
func (h *LabelHandler) AddLabel(ctx *fasthttp.RequestCtx) {
	var req transport.LabelRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.AddLabel(stdCtx, req.ID, req.Color)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}
