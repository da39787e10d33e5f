package history

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"ankifield/internal/domain/note"
	"ankifield/internal/domain/updater"
)

const DefaultLimit = 20

type Servicer interface {
	Record(ctx context.Context, report *updater.Report, dryRun bool) (int64, error)
	List(ctx context.Context, filter Filter) ([]Run, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "history"),
	}
}

// Record saves a report as a history entry.
func (s *Service) Record(ctx context.Context, report *updater.Report, dryRun bool) (int64, error) {
	run := &Run{
		Rule:       report.Rule,
		Outcome:    string(report.Outcome),
		DryRun:     dryRun,
		Selected:   report.Selected,
		Updated:    report.Updated,
		Error:      report.Error,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}

	id, err := s.repo.Save(ctx, run)
	if err != nil {
		return 0, fmt.Errorf("save run of rule %q: %w", report.Rule, err)
	}

	s.log.Debug("run recorded", "id", id, "rule", report.Rule, "outcome", report.Outcome)
	return id, nil
}

// List returns runs newest first. A zero limit means DefaultLimit.
func (s *Service) List(ctx context.Context, filter Filter) ([]Run, error) {
	if filter.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultLimit
	}

	runs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Recorder wraps a runner and records every run it performs. Recording
// failures are logged and never change the result of the run.
type Recorder struct {
	next    updater.Runner
	history Servicer
	log     *slog.Logger
}

func NewRecorder(next updater.Runner, history Servicer, log *slog.Logger) *Recorder {
	return &Recorder{
		next:    next,
		history: history,
		log:     log.With("component", "history_recorder"),
	}
}

func (r *Recorder) Run(ctx context.Context, rule note.Rule, opts updater.Options) (*updater.Report, error) {
	report, err := r.next.Run(ctx, rule, opts)
	if report == nil {
		return report, err
	}

	// Запись истории не должна зависеть от отмены запроса
	if _, recErr := r.history.Record(context.WithoutCancel(ctx), report, opts.DryRun); recErr != nil {
		r.log.Warn("failed to record run", "rule", rule.Name, "error", recErr)
	}

	return report, err
}
