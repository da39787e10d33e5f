package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"ankifield/internal/domain/history"
)

// Фиксированная ширина, чтобы ORDER BY по тексту совпадал с порядком времени
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type RunRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewRunRepository(db *sql.DB, log *slog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With("component", "run_repository"),
	}
}

func (r *RunRepository) Save(ctx context.Context, run *history.Run) (int64, error) {
	const query = `
		INSERT INTO runs (rule, outcome, dry_run, selected, updated, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		run.Rule, run.Outcome, run.DryRun, run.Selected, run.Updated, run.Error,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		r.log.Error("failed to save run", "rule", run.Rule, "error", err)
		return 0, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	run.ID = id

	return id, nil
}

func (r *RunRepository) List(ctx context.Context, filter history.Filter) ([]history.Run, error) {
	query := `
		SELECT id, rule, outcome, dry_run, selected, updated, error, started_at, finished_at
		FROM runs
		WHERE 1=1`
	args := []interface{}{}

	if filter.Rule != "" {
		query += " AND rule = ?"
		args = append(args, filter.Rule)
	}

	query += " ORDER BY started_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list runs", "error", err)
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]history.Run, 0)
	for rows.Next() {
		var run history.Run
		var startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &run.Rule, &run.Outcome, &run.DryRun,
			&run.Selected, &run.Updated, &run.Error, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at of run %d: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at of run %d: %w", run.ID, err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}
