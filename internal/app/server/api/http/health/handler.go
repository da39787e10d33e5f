package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const (
	ankiReachable   = "reachable"
	ankiUnreachable = "unreachable"
)

// Pinger reports the AnkiConnect API version.
type Pinger interface {
	Version(ctx context.Context) (int, error)
}

type Handler struct {
	anki       Pinger
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(anki Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		anki:       anki,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

// healthCheck всегда отвечает 200: недоступность Anki отражается в теле ответа
func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	version, err := h.anki.Version(ctx)
	if err != nil {
		h.log.Warn("AnkiConnect is not available", "error", err)
		return &Output{
			Body: Response{
				Status: "OK",
				Anki:   ankiUnreachable,
				Error:  err.Error(),
			},
		}, nil
	}

	return &Output{
		Body: Response{
			Status:      "OK",
			Anki:        ankiReachable,
			AnkiVersion: version,
		},
	}, nil
}
