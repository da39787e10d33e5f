package rule

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "rules-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules",
		Summary:     "Список правил",
		Tags:        []string{"rules"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) runOp() huma.Operation {
	return huma.Operation{
		OperationID: "rules-run",
		Method:      http.MethodPost,
		Path:        "/api/v1/rules/{name}/run",
		Summary:     "Запустить правило",
		Description: "Выполняет правило один раз. Запуски выполняются по очереди; ошибка AnkiConnect возвращается со статусом 502 и отчетом.",
		Tags:        []string{"rules"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
