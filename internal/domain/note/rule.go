package note

import (
	"fmt"
	"strings"
)

// Rule describes one selective field update: every note of Model in Deck
// whose Template card has an interval above IntervalThreshold days gets Field
// set to Value.
type Rule struct {
	Name              string `json:"name" mapstructure:"name"`
	Deck              string `json:"deck" mapstructure:"deck"`
	Model             string `json:"model" mapstructure:"model"`
	Template          string `json:"template" mapstructure:"template"`
	IntervalThreshold int    `json:"interval_threshold" mapstructure:"interval_threshold"`
	Field             string `json:"field" mapstructure:"field"`
	Value             string `json:"value" mapstructure:"value"`
}

// Validate проверяет, что все параметры правила заданы.
func (r Rule) Validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidRule)
	case r.Deck == "":
		return fmt.Errorf("%w %q: deck is empty", ErrInvalidRule, r.Name)
	case r.Model == "":
		return fmt.Errorf("%w %q: model is empty", ErrInvalidRule, r.Name)
	case r.Template == "":
		return fmt.Errorf("%w %q: template is empty", ErrInvalidRule, r.Name)
	case r.Field == "":
		return fmt.Errorf("%w %q: field is empty", ErrInvalidRule, r.Name)
	case r.Value == "":
		return fmt.Errorf("%w %q: value is empty", ErrInvalidRule, r.Name)
	case r.IntervalThreshold < 0:
		return fmt.Errorf("%w %q: interval_threshold must be >= 0", ErrInvalidRule, r.Name)
	}
	return nil
}

// DeckQuery returns the search query selecting every note of the rule's deck.
func (r Rule) DeckQuery() string {
	return DeckQuery(r.Deck)
}

var deckEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// DeckQuery builds a deck-scoped search query. Only backslashes and double
// quotes are escaped; Anki search takes every other rune literally.
func DeckQuery(deck string) string {
	return `deck:"` + deckEscaper.Replace(deck) + `"`
}

// Eligible reports whether the card still needs the rule applied: it is
// rendered by the qualifying template, its interval exceeds the threshold and
// the target field does not hold the target value yet.
func (r Rule) Eligible(c Card, qualifyingOrd int) bool {
	return c.Ord == qualifyingOrd &&
		c.Interval > r.IntervalThreshold &&
		c.FieldValue(r.Field) != r.Value
}

// SelectNotes returns the notes owning at least one card from eligible,
// preserving the order of notes.
func SelectNotes(notes []Note, eligible map[int64]struct{}) []Note {
	selected := make([]Note, 0)
	for _, n := range notes {
		for _, id := range n.Cards {
			if _, ok := eligible[id]; ok {
				selected = append(selected, n)
				break
			}
		}
	}
	return selected
}

// BuiltinRules are used when the configuration does not define any rules.
func BuiltinRules() []Rule {
	return []Rule{
		{
			Name:              "polish-audio",
			Deck:              "Polish",
			Model:             "Words",
			Template:          "Word",
			IntervalThreshold: 14,
			Field:             "Audio Enabled",
			Value:             "Yes",
		},
		{
			Name:              "other-border-map",
			Deck:              "Other",
			Model:             "Regions",
			Template:          "Neighbours",
			IntervalThreshold: 45,
			Field:             "No Border Map",
			Value:             "Yes",
		},
	}
}
