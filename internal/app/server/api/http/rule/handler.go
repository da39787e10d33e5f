package rule

import (
	"context"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"ankifield/internal/domain/note"
	"ankifield/internal/domain/updater"
)

type Handler struct {
	rules      []note.Rule
	runner     updater.Runner
	log        *slog.Logger
	middleware huma.Middlewares
	// mu держит запуски последовательными, как и в CLI
	mu sync.Mutex
}

func NewHandler(rules []note.Rule, runner updater.Runner, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		rules:      rules,
		runner:     runner,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.runOp(), h.run)
}

func (h *Handler) list(_ context.Context, _ *struct{}) (*listOutput, error) {
	return &listOutput{
		Body: rulesListResponse{Rules: h.rules},
	}, nil
}

func (h *Handler) find(name string) (note.Rule, bool) {
	for _, r := range h.rules {
		if r.Name == name {
			return r, true
		}
	}
	return note.Rule{}, false
}

func (h *Handler) run(ctx context.Context, input *runInput) (*runOutput, error) {
	rule, ok := h.find(input.Name)
	if !ok {
		return nil, huma.Error404NotFound("rule not found: " + input.Name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	report, err := h.runner.Run(ctx, rule, updater.Options{DryRun: input.DryRun})
	if err != nil {
		h.log.Error("rule run failed", "rule", rule.Name, "error", err)
		return &runOutput{
			Status: http.StatusBadGateway,
			Body: runResponse{
				Status: "Error",
				Report: report,
				Error:  err.Error(),
			},
		}, nil
	}

	return &runOutput{
		Status: http.StatusOK,
		Body: runResponse{
			Status: "Ok",
			Report: report,
		},
	}, nil
}
