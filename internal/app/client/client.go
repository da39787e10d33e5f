package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"ankifield/internal/ankiconnect"
	"ankifield/internal/app/server/api"
	"ankifield/internal/config"
	"ankifield/internal/domain/history"
	"ankifield/internal/domain/note"
	"ankifield/internal/domain/updater"
	"ankifield/internal/infrastructure/storage/sqlite"
)

var ErrHistoryDisabled = errors.New("history is disabled")

type Options struct {
	// NoHistory отключает запись истории запусков
	NoHistory bool
}

type App struct {
	config  *config.Config
	log     *slog.Logger
	anki    *ankiconnect.Client
	runner  updater.Runner
	history history.Servicer
	storage *sqlite.Storage
}

// RuleResult - итог запуска одного правила
type RuleResult struct {
	Report *updater.Report
	Err    error
}

func New(cfg *config.Config, log *slog.Logger, opts Options) (*App, error) {
	anki, err := ankiconnect.NewClient(ankiconnect.Config{
		Address: cfg.AnkiConnectAddress,
		APIKey:  cfg.AnkiConnectAPIKey,
		Timeout: cfg.AnkiConnectTimeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента AnkiConnect: %w", err)
	}

	app := &App{
		config: cfg,
		log:    log,
		anki:   anki,
		runner: updater.NewService(anki, log),
	}

	if opts.NoHistory {
		return app, nil
	}

	// История не обязательна: без нее правила продолжают работать
	storage, err := sqlite.New(cfg.DataPath)
	if err != nil {
		log.Warn("Не удалось открыть историю запусков, история отключена", "path", cfg.DataPath, "error", err)
		return app, nil
	}

	app.storage = storage
	app.history = history.NewService(sqlite.NewRunRepository(storage.DB(), log), log)
	app.runner = history.NewRecorder(app.runner, app.history, log)

	return app, nil
}

func (a *App) Close() error {
	if a.storage != nil {
		return a.storage.Close()
	}
	return nil
}

// Rules returns the configured rules.
func (a *App) Rules() []note.Rule {
	return a.config.Rules
}

// Rule looks up a configured rule by name.
func (a *App) Rule(name string) (note.Rule, bool) {
	return a.config.Rule(name)
}

// CheckConnection возвращает версию API AnkiConnect
func (a *App) CheckConnection(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return a.anki.Version(ctx)
}

// RunRules запускает правила по порядку. Ошибка одного правила не
// останавливает остальные.
func (a *App) RunRules(ctx context.Context, rules []note.Rule, opts updater.Options) []RuleResult {
	results := make([]RuleResult, 0, len(rules))

	for _, rule := range rules {
		if ctx.Err() != nil {
			results = append(results, RuleResult{Err: fmt.Errorf("run rule %q: %w", rule.Name, ctx.Err())})
			continue
		}

		report, err := a.runner.Run(ctx, rule, opts)
		results = append(results, RuleResult{Report: report, Err: err})
	}

	return results
}

// History возвращает историю запусков
func (a *App) History(ctx context.Context, filter history.Filter) ([]history.Run, error) {
	if a.history == nil {
		return nil, ErrHistoryDisabled
	}
	return a.history.List(ctx, filter)
}

// Serve запускает HTTP API и блокируется до сигнала завершения
func (a *App) Serve(ctx context.Context, token string) error {
	if a.history == nil {
		return fmt.Errorf("serve: %w", ErrHistoryDisabled)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	mux := api.New(api.Deps{
		Anki:    a.anki,
		Rules:   a.config.Rules,
		Runner:  a.runner,
		History: a.history,
		Token:   token,
	}, a.log)

	srv := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Сервер запущен",
			"address", a.config.ServerAddress,
			"anki_connect", a.anki.Address(),
			"env", a.config.Env,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	case <-ctx.Done():
		a.log.Info("Получен сигнал завершения")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}

	a.log.Info("Сервер остановлен")
	return nil
}
