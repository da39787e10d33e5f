package note

// Field - значение поля заметки вместе с его позицией в модели.
type Field struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// Note - снимок заметки, полученный через notesInfo.
type Note struct {
	ID        int64            `json:"noteId"`
	ModelName string           `json:"modelName"`
	Tags      []string         `json:"tags,omitempty"`
	Fields    map[string]Field `json:"fields"`
	Cards     []int64          `json:"cards"`
}

// Card - снимок карточки, полученный через cardsInfo.
// Interval у карточек в обучении отрицательный (секунды), у остальных - дни.
type Card struct {
	ID        int64            `json:"cardId"`
	NoteID    int64            `json:"note"`
	DeckName  string           `json:"deckName,omitempty"`
	ModelName string           `json:"modelName,omitempty"`
	Ord       int              `json:"ord"`
	Interval  int              `json:"interval"`
	Fields    map[string]Field `json:"fields"`
}

// FieldValue returns the current value of the named field, or "" when the
// card carries no such field.
func (c Card) FieldValue(name string) string {
	f, ok := c.Fields[name]
	if !ok {
		return ""
	}
	return f.Value
}

// Template - шаблон карточки модели.
type Template struct {
	Name  string `json:"name"`
	Front string `json:"front,omitempty"`
	Back  string `json:"back,omitempty"`
}

// TemplateSet keeps the templates of one model in model order, so that the
// index of a template is the ordinal of the cards it renders.
type TemplateSet []Template

// Ordinal returns the position of the named template.
func (s TemplateSet) Ordinal(name string) (int, bool) {
	for i, t := range s {
		if t.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Names returns the template names in order.
func (s TemplateSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, t := range s {
		names = append(names, t.Name)
	}
	return names
}
