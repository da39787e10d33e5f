package run

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "runs-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs",
		Summary:     "История запусков правил",
		Description: "Возвращает запуски, начиная с последнего",
		Tags:        []string{"runs"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
