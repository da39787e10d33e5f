package ankiconnect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"

	"ankifield/internal/domain/note"
)

const (
	actionVersion          = "version"
	actionFindNotes        = "findNotes"
	actionNotesInfo        = "notesInfo"
	actionCardsInfo        = "cardsInfo"
	actionModelTemplates   = "modelTemplates"
	actionUpdateNoteFields = "updateNoteFields"
)

// Version returns the API version reported by AnkiConnect.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.Invoke(ctx, actionVersion, nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// FindNotes returns the ids of notes matching an Anki search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	c.log.Debug("searching notes", "query", query)

	var ids []int64
	if err := c.Invoke(ctx, actionFindNotes, map[string]any{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NotesInfo fetches the notes with the given ids.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]note.Note, error) {
	c.log.Debug("retrieving note info", "count", len(ids))

	var notes []note.Note
	if err := c.Invoke(ctx, actionNotesInfo, map[string]any{"notes": ids}, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CardsInfo fetches the cards with the given ids.
func (c *Client) CardsInfo(ctx context.Context, ids []int64) ([]note.Card, error) {
	c.log.Debug("retrieving card info", "count", len(ids))

	var cards []note.Card
	if err := c.Invoke(ctx, actionCardsInfo, map[string]any{"cards": ids}, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// ModelTemplates returns the templates of a model in model order.
// An unknown model is reported as note.ErrModelNotFound.
func (c *Client) ModelTemplates(ctx context.Context, model string) (note.TemplateSet, error) {
	c.log.Debug("retrieving templates", "model", model)

	var raw json.RawMessage
	if err := c.Invoke(ctx, actionModelTemplates, map[string]any{"modelName": model}, &raw); err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && strings.Contains(strings.ToLower(reqErr.Message), "model was not found") {
			return nil, fmt.Errorf("%w: %s: %w", note.ErrModelNotFound, model, err)
		}
		return nil, err
	}

	set, err := decodeTemplateSet(raw)
	if err != nil {
		return nil, &RequestError{Action: actionModelTemplates, Err: err}
	}
	return set, nil
}

// decodeTemplateSet keeps object member order, which encoding/json loses
// when decoding into a map.
func decodeTemplateSet(raw json.RawMessage) (note.TemplateSet, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return note.TemplateSet{}, nil
	}

	v, err := hujson.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	obj, ok := v.Value.(*hujson.Object)
	if !ok {
		return nil, fmt.Errorf("%w: templates are not an object", ErrMalformedResult)
	}

	set := make(note.TemplateSet, 0, len(obj.Members))
	for _, m := range obj.Members {
		var name string
		if err := json.Unmarshal(m.Name.Pack(), &name); err != nil {
			return nil, fmt.Errorf("%w: template name: %v", ErrMalformedResult, err)
		}

		var body struct {
			Front string `json:"Front"`
			Back  string `json:"Back"`
		}
		if err := json.Unmarshal(m.Value.Pack(), &body); err != nil {
			return nil, fmt.Errorf("%w: template %q: %v", ErrMalformedResult, name, err)
		}

		set = append(set, note.Template{Name: name, Front: body.Front, Back: body.Back})
	}

	return set, nil
}

// UpdateNoteField sets one field of one note.
func (c *Client) UpdateNoteField(ctx context.Context, id int64, field, value string) error {
	params := map[string]any{
		"note": map[string]any{
			"id":     id,
			"fields": map[string]string{field: value},
		},
	}
	return c.Invoke(ctx, actionUpdateNoteFields, params, nil)
}

// UpdateNoteFields sets field to value on every note, one call per note.
// It stops at the first failure and returns how many notes were written.
func (c *Client) UpdateNoteFields(ctx context.Context, ids []int64, field, value string) (int, error) {
	c.log.Info("updating notes", "count", len(ids), "field", field, "value", value)
	if len(ids) == 0 {
		c.log.Warn("no note ids provided for update")
		return 0, nil
	}

	for i, id := range ids {
		if err := c.UpdateNoteField(ctx, id, field, value); err != nil {
			return i, fmt.Errorf("update note %d: %w", id, err)
		}
		c.log.Debug("note updated", "note_id", id, "progress", fmt.Sprintf("%d/%d", i+1, len(ids)))
	}

	return len(ids), nil
}
