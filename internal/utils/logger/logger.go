package logger

import (
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slog"
	"golang.org/x/term"

	"ankifield/internal/config"
	"ankifield/internal/utils/logger/handlers/slogpretty"
)

// New создает логгер для окружения: local - цветной вывод (если stderr это
// терминал), dev - JSON с DEBUG, prod - JSON с INFO. Непустой level
// (debug, info, warn, error) переопределяет уровень окружения.
func New(env, level string) *slog.Logger {
	return newLogger(os.Stderr, env, level, term.IsTerminal(int(os.Stderr.Fd())))
}

func newLogger(out io.Writer, env, level string, tty bool) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvProd:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(level, slog.LevelInfo)}))
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(level, slog.LevelDebug)}))
	default:
		lvl := parseLevel(level, slog.LevelDebug)
		if tty {
			log = setupPrettySlog(out, lvl)
		} else {
			log = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))
		}
	}

	return log
}

func setupPrettySlog(out io.Writer, level slog.Level) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}

	handler := opts.NewPrettyHandler(out)

	return slog.New(handler)
}

func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}
