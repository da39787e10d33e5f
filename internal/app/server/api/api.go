//GET  /api/v1/health             # Состояние сервиса и AnkiConnect (публичный)
//GET  /api/v1/rules              # Список правил (auth)
//POST /api/v1/rules/{name}/run   # Запустить правило (auth)
//GET  /api/v1/runs               # История запусков (auth)

package api

import (
	healthAPI "ankifield/internal/app/server/api/http/health"
	"ankifield/internal/app/server/api/http/middleware/auth"
	"ankifield/internal/app/server/api/http/middleware/logger"
	ruleAPI "ankifield/internal/app/server/api/http/rule"
	runAPI "ankifield/internal/app/server/api/http/run"
	"ankifield/internal/domain/history"
	"ankifield/internal/domain/note"
	"ankifield/internal/domain/updater"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

// Deps - зависимости HTTP API
type Deps struct {
	Anki    healthAPI.Pinger
	Rules   []note.Rule
	Runner  updater.Runner
	History history.Servicer
	Token   string
}

type Handlers struct {
	Health *healthAPI.Handler
	Rule   *ruleAPI.Handler
	Run    *runAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("ankifield API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(deps, log)
	h.Health.SetupRoutes(API)
	h.Rule.SetupRoutes(API)
	h.Run.SetupRoutes(API)

	return mux
}

func handlers(deps Deps, log *slog.Logger) *Handlers {
	authMW := auth.New(deps.Token, log)
	loggerMW := logger.New(log)

	public := huma.Middlewares{loggerMW.Middleware()}
	private := huma.Middlewares{loggerMW.Middleware(), authMW.Middleware()}

	return &Handlers{
		Health: healthAPI.NewHandler(deps.Anki, log, public),
		Rule:   ruleAPI.NewHandler(deps.Rules, deps.Runner, log, private),
		Run:    runAPI.NewHandler(deps.History, log, private),
	}
}
