package run

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"ankifield/internal/domain/history"
)

type Handler struct {
	service    history.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service history.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	runs, err := h.service.List(ctx, history.Filter{Rule: input.Rule, Limit: input.Limit})
	if err != nil {
		h.log.Error("failed to list runs", "error", err)
		return nil, huma.Error500InternalServerError("failed to list runs")
	}

	return &listOutput{
		Body: runsListResponse{Runs: runs},
	}, nil
}
