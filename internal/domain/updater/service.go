package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"ankifield/internal/domain/note"
)

// AnkiAPI is the subset of AnkiConnect the updater needs.
type AnkiAPI interface {
	ModelTemplates(ctx context.Context, model string) (note.TemplateSet, error)
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, ids []int64) ([]note.Note, error)
	CardsInfo(ctx context.Context, ids []int64) ([]note.Card, error)
	UpdateNoteFields(ctx context.Context, ids []int64, field, value string) (int, error)
}

type Options struct {
	// DryRun stops after selection; no note is written.
	DryRun bool
}

type Runner interface {
	Run(ctx context.Context, rule note.Rule, opts Options) (*Report, error)
}

// Service runs the find, filter and update pipeline for a rule.
type Service struct {
	api AnkiAPI
	log *slog.Logger
	now func() time.Time
}

func NewService(api AnkiAPI, log *slog.Logger) *Service {
	return &Service{
		api: api,
		log: log.With("component", "updater"),
		now: time.Now,
	}
}

// Run applies rule once. The returned report is never nil. When an AnkiConnect
// call fails the report has OutcomeFailed, Updated holds the notes written
// before the failure and the error is returned alongside it.
func (s *Service) Run(ctx context.Context, rule note.Rule, opts Options) (*Report, error) {
	report := &Report{
		Rule:              rule.Name,
		QualifyingOrdinal: -1,
		StartedAt:         s.now(),
	}

	err := s.run(ctx, rule, opts, report)
	report.FinishedAt = s.now()
	if err != nil {
		report.Outcome = OutcomeFailed
		report.Error = err.Error()
		s.log.Error("rule run failed", "rule", rule.Name, "updated", report.Updated, "error", err)
		return report, fmt.Errorf("run rule %q: %w", rule.Name, err)
	}

	s.log.Info("rule run completed",
		"rule", rule.Name,
		"outcome", report.Outcome,
		"selected", report.Selected,
		"updated", report.Updated,
		"duration", report.Duration(),
	)
	return report, nil
}

func (s *Service) run(ctx context.Context, rule note.Rule, opts Options, report *Report) error {
	log := s.log.With("rule", rule.Name)

	if err := rule.Validate(); err != nil {
		return err
	}

	log.Info("starting rule", "deck", rule.Deck, "model", rule.Model, "field", rule.Field)

	templates, err := s.api.ModelTemplates(ctx, rule.Model)
	if err != nil {
		if errors.Is(err, note.ErrModelNotFound) {
			log.Warn("model not found", "model", rule.Model)
			report.Outcome = OutcomeModelNotFound
			return nil
		}
		return fmt.Errorf("get templates of model %q: %w", rule.Model, err)
	}
	log.Debug("found templates", "templates", templates.Names())

	ord, ok := templates.Ordinal(rule.Template)
	if !ok {
		log.Warn("template not found in model", "template", rule.Template, "model", rule.Model)
		report.Outcome = OutcomeTemplateMissing
		return nil
	}
	report.QualifyingOrdinal = ord
	log.Debug("qualifying template ordinal", "template", rule.Template, "ord", ord)

	noteIDs, err := s.api.FindNotes(ctx, rule.DeckQuery())
	if err != nil {
		return fmt.Errorf("find notes in deck %q: %w", rule.Deck, err)
	}
	report.NotesFound = len(noteIDs)
	if len(noteIDs) == 0 {
		log.Warn("no notes found in deck", "deck", rule.Deck)
		report.Outcome = OutcomeDeckEmpty
		return nil
	}
	log.Info("found notes in deck", "deck", rule.Deck, "count", len(noteIDs))

	notes, err := s.api.NotesInfo(ctx, noteIDs)
	if err != nil {
		return fmt.Errorf("get notes info: %w", err)
	}

	notes = filterByModel(notes, rule.Model)
	report.NotesOfModel = len(notes)
	if len(notes) == 0 {
		log.Warn("no notes of model in deck", "deck", rule.Deck, "model", rule.Model)
		report.Outcome = OutcomeNoModelNotes
		return nil
	}
	log.Info("found notes of model", "model", rule.Model, "count", len(notes))

	cardIDs := make([]int64, 0, len(notes))
	for _, n := range notes {
		cardIDs = append(cardIDs, n.Cards...)
	}
	log.Debug("collected cards", "count", len(cardIDs))

	cards, err := s.api.CardsInfo(ctx, cardIDs)
	if err != nil {
		return fmt.Errorf("get cards info: %w", err)
	}

	byID := make(map[int64]note.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	report.CardsChecked = len(byID)

	eligible := make(map[int64]struct{})
	for id, c := range byID {
		if rule.Eligible(c, ord) {
			eligible[id] = struct{}{}
		}
	}
	report.EligibleCards = len(eligible)
	log.Info("found eligible cards", "count", len(eligible))

	selected := note.SelectNotes(notes, eligible)
	report.Selected = len(selected)
	if len(selected) == 0 {
		log.Info("no notes meet the criteria")
		report.Outcome = OutcomeNoEligibleCards
		return nil
	}

	ids := make([]int64, 0, len(selected))
	for _, n := range selected {
		ids = append(ids, n.ID)
	}
	report.SelectedNoteIDs = ids

	if opts.DryRun {
		log.Info("dry run, skipping update", "selected", len(ids))
		report.Outcome = OutcomeDryRun
		return nil
	}

	log.Info("updating notes", "count", len(ids), "field", rule.Field, "value", rule.Value)
	updated, err := s.api.UpdateNoteFields(ctx, ids, rule.Field, rule.Value)
	report.Updated = updated
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}

	report.Outcome = OutcomeUpdated
	log.Info("notes updated", "count", updated)
	return nil
}

func filterByModel(notes []note.Note, model string) []note.Note {
	filtered := make([]note.Note, 0, len(notes))
	for _, n := range notes {
		if n.ModelName == model {
			filtered = append(filtered, n)
		}
	}
	return filtered
}
