package updater

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
)

type Outcome string

const (
	OutcomeUpdated         Outcome = "updated"
	OutcomeDryRun          Outcome = "dry_run"
	OutcomeModelNotFound   Outcome = "model_not_found"
	OutcomeTemplateMissing Outcome = "template_missing"
	OutcomeDeckEmpty       Outcome = "deck_empty"
	OutcomeNoModelNotes    Outcome = "no_model_notes"
	OutcomeNoEligibleCards Outcome = "no_eligible_cards"
	OutcomeFailed          Outcome = "failed"
)

func (Outcome) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(OutcomeUpdated),
			string(OutcomeDryRun),
			string(OutcomeModelNotFound),
			string(OutcomeTemplateMissing),
			string(OutcomeDeckEmpty),
			string(OutcomeNoModelNotes),
			string(OutcomeNoEligibleCards),
			string(OutcomeFailed),
		},
		Description: "Result of a rule run",
	}
}

// NoOp reports whether the run ended before any note could be selected.
func (o Outcome) NoOp() bool {
	switch o {
	case OutcomeModelNotFound, OutcomeTemplateMissing, OutcomeDeckEmpty,
		OutcomeNoModelNotes, OutcomeNoEligibleCards:
		return true
	}
	return false
}

// Report describes a single rule run.
type Report struct {
	Rule              string    `json:"rule"`
	Outcome           Outcome   `json:"outcome"`
	QualifyingOrdinal int       `json:"qualifying_ordinal"`
	NotesFound        int       `json:"notes_found"`
	NotesOfModel      int       `json:"notes_of_model"`
	CardsChecked      int       `json:"cards_checked"`
	EligibleCards     int       `json:"eligible_cards"`
	Selected          int       `json:"selected"`
	Updated           int       `json:"updated"`
	SelectedNoteIDs   []int64   `json:"selected_note_ids,omitempty"`
	Error             string    `json:"error,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
