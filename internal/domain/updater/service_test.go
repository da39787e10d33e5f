package updater

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"ankifield/internal/domain/note"
)

// MockAnkiAPI is a mock implementation of the AnkiAPI interface for testing
type MockAnkiAPI struct {
	mock.Mock
}

func (m *MockAnkiAPI) ModelTemplates(ctx context.Context, model string) (note.TemplateSet, error) {
	args := m.Called(ctx, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(note.TemplateSet), args.Error(1)
}

func (m *MockAnkiAPI) FindNotes(ctx context.Context, query string) ([]int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockAnkiAPI) NotesInfo(ctx context.Context, ids []int64) ([]note.Note, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]note.Note), args.Error(1)
}

func (m *MockAnkiAPI) CardsInfo(ctx context.Context, ids []int64) ([]note.Card, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]note.Card), args.Error(1)
}

func (m *MockAnkiAPI) UpdateNoteFields(ctx context.Context, ids []int64, field, value string) (int, error) {
	args := m.Called(ctx, ids, field, value)
	return args.Int(0), args.Error(1)
}

var borderRule = note.Rule{
	Name:              "other-border-map",
	Deck:              "Other",
	Model:             "Regions",
	Template:          "Neighbours",
	IntervalThreshold: 45,
	Field:             "No Border Map",
	Value:             "Yes",
}

var regionTemplates = note.TemplateSet{{Name: "Capital"}, {Name: "Neighbours"}, {Name: "Flag"}}

func card(id, noteID int64, ord, interval int, fieldValue string) note.Card {
	return note.Card{
		ID:       id,
		NoteID:   noteID,
		Ord:      ord,
		Interval: interval,
		Fields: map[string]note.Field{
			"No Border Map": {Value: fieldValue, Order: 2},
		},
	}
}

func newTestService(api AnkiAPI) *Service {
	s := NewService(api, slog.Default())
	clock := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

// threeNotes: note 1 has a Neighbours card (ord 1) with the given interval
// and field value, notes 2 and 3 only have immature or non-qualifying cards.
func expectThreeNotes(api *MockAnkiAPI, interval int, fieldValue string) {
	api.On("ModelTemplates", mock.Anything, "Regions").Return(regionTemplates, nil)
	api.On("FindNotes", mock.Anything, `deck:"Other"`).Return([]int64{1, 2, 3}, nil)
	api.On("NotesInfo", mock.Anything, []int64{1, 2, 3}).Return([]note.Note{
		{ID: 1, ModelName: "Regions", Cards: []int64{10, 11}},
		{ID: 2, ModelName: "Regions", Cards: []int64{20, 21}},
		{ID: 3, ModelName: "Regions", Cards: []int64{30, 31}},
	}, nil)
	api.On("CardsInfo", mock.Anything, []int64{10, 11, 20, 21, 30, 31}).Return([]note.Card{
		card(10, 1, 0, 300, "No"),
		card(11, 1, 1, interval, fieldValue),
		card(20, 2, 0, 100, "No"),
		card(21, 2, 1, 10, "No"),
		card(30, 3, 2, 90, "No"),
		card(31, 3, 1, 45, "No"),
	}, nil)
}

func TestService_Run_UpdatesQualifyingNote(t *testing.T) {
	api := new(MockAnkiAPI)
	expectThreeNotes(api, 50, "No")
	api.On("UpdateNoteFields", mock.Anything, []int64{1}, "No Border Map", "Yes").Return(1, nil)

	report, err := newTestService(api).Run(context.Background(), borderRule, Options{})
	require.NoError(t, err)

	want := &Report{
		Rule:              "other-border-map",
		Outcome:           OutcomeUpdated,
		QualifyingOrdinal: 1,
		NotesFound:        3,
		NotesOfModel:      3,
		CardsChecked:      6,
		EligibleCards:     1,
		Selected:          1,
		Updated:           1,
		SelectedNoteIDs:   []int64{1},
	}
	if diff := cmp.Diff(want, report, cmpopts.IgnoreFields(Report{}, "StartedAt", "FinishedAt")); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, report.FinishedAt.After(report.StartedAt))

	api.AssertNumberOfCalls(t, "UpdateNoteFields", 1)
	api.AssertExpectations(t)
}

func TestService_Run_NoUpdates(t *testing.T) {
	tests := []struct {
		name       string
		interval   int
		fieldValue string
	}{
		{name: "interval below threshold", interval: 40, fieldValue: "No"},
		{name: "interval equal to threshold", interval: 45, fieldValue: "No"},
		{name: "field already set", interval: 50, fieldValue: "Yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAnkiAPI)
			expectThreeNotes(api, tt.interval, tt.fieldValue)

			report, err := newTestService(api).Run(context.Background(), borderRule, Options{})
			require.NoError(t, err)

			assert.Equal(t, OutcomeNoEligibleCards, report.Outcome)
			assert.True(t, report.Outcome.NoOp())
			assert.Equal(t, 0, report.EligibleCards)
			assert.Equal(t, 0, report.Updated)
			api.AssertNotCalled(t, "UpdateNoteFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Run_SecondRunIsNoOp(t *testing.T) {
	api := new(MockAnkiAPI)
	expectThreeNotes(api, 50, "No")
	api.On("UpdateNoteFields", mock.Anything, []int64{1}, "No Border Map", "Yes").Return(1, nil).Once()

	service := newTestService(api)
	first, err := service.Run(context.Background(), borderRule, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, first.Updated)

	// После обновления Anki возвращает карточку уже с "Yes"
	api.ExpectedCalls = nil
	expectThreeNotes(api, 50, "Yes")

	second, err := service.Run(context.Background(), borderRule, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoEligibleCards, second.Outcome)
	assert.Equal(t, 0, second.Updated)
}

func TestService_Run_Guards(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(api *MockAnkiAPI)
		outcome Outcome
	}{
		{
			name: "model not found",
			setup: func(api *MockAnkiAPI) {
				api.On("ModelTemplates", mock.Anything, "Regions").
					Return(nil, fmt.Errorf("%w: Regions", note.ErrModelNotFound))
			},
			outcome: OutcomeModelNotFound,
		},
		{
			name: "template missing",
			setup: func(api *MockAnkiAPI) {
				api.On("ModelTemplates", mock.Anything, "Regions").
					Return(note.TemplateSet{{Name: "Capital"}, {Name: "Flag"}}, nil)
			},
			outcome: OutcomeTemplateMissing,
		},
		{
			name: "deck empty",
			setup: func(api *MockAnkiAPI) {
				api.On("ModelTemplates", mock.Anything, "Regions").Return(regionTemplates, nil)
				api.On("FindNotes", mock.Anything, `deck:"Other"`).Return([]int64{}, nil)
			},
			outcome: OutcomeDeckEmpty,
		},
		{
			name: "no notes of model",
			setup: func(api *MockAnkiAPI) {
				api.On("ModelTemplates", mock.Anything, "Regions").Return(regionTemplates, nil)
				api.On("FindNotes", mock.Anything, `deck:"Other"`).Return([]int64{7}, nil)
				api.On("NotesInfo", mock.Anything, []int64{7}).
					Return([]note.Note{{ID: 7, ModelName: "Regions (old)", Cards: []int64{70}}}, nil)
			},
			outcome: OutcomeNoModelNotes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAnkiAPI)
			tt.setup(api)

			report, err := newTestService(api).Run(context.Background(), borderRule, Options{})

			require.NoError(t, err)
			assert.Equal(t, tt.outcome, report.Outcome)
			assert.True(t, report.Outcome.NoOp())
			api.AssertNotCalled(t, "UpdateNoteFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			api.AssertExpectations(t)
		})
	}
}

func TestService_Run_DryRun(t *testing.T) {
	api := new(MockAnkiAPI)
	expectThreeNotes(api, 50, "No")

	report, err := newTestService(api).Run(context.Background(), borderRule, Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, OutcomeDryRun, report.Outcome)
	assert.Equal(t, 1, report.Selected)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, []int64{1}, report.SelectedNoteIDs)
	api.AssertNotCalled(t, "UpdateNoteFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_Failures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("api failure aborts", func(t *testing.T) {
		api := new(MockAnkiAPI)
		api.On("ModelTemplates", mock.Anything, "Regions").Return(regionTemplates, nil)
		api.On("FindNotes", mock.Anything, `deck:"Other"`).Return(nil, boom)

		report, err := newTestService(api).Run(context.Background(), borderRule, Options{})

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, report)
		assert.Equal(t, OutcomeFailed, report.Outcome)
		assert.Contains(t, report.Error, "boom")
		api.AssertNotCalled(t, "NotesInfo", mock.Anything, mock.Anything)
	})

	t.Run("partial update is reported", func(t *testing.T) {
		api := new(MockAnkiAPI)
		api.On("ModelTemplates", mock.Anything, "Regions").Return(regionTemplates, nil)
		api.On("FindNotes", mock.Anything, `deck:"Other"`).Return([]int64{1, 2}, nil)
		api.On("NotesInfo", mock.Anything, []int64{1, 2}).Return([]note.Note{
			{ID: 1, ModelName: "Regions", Cards: []int64{10}},
			{ID: 2, ModelName: "Regions", Cards: []int64{20}},
		}, nil)
		api.On("CardsInfo", mock.Anything, []int64{10, 20}).Return([]note.Card{
			card(10, 1, 1, 60, "No"),
			card(20, 2, 1, 70, ""),
		}, nil)
		api.On("UpdateNoteFields", mock.Anything, []int64{1, 2}, "No Border Map", "Yes").Return(1, boom)

		report, err := newTestService(api).Run(context.Background(), borderRule, Options{})

		require.Error(t, err)
		assert.Equal(t, OutcomeFailed, report.Outcome)
		assert.Equal(t, 2, report.Selected)
		assert.Equal(t, 1, report.Updated)
	})

	t.Run("invalid rule", func(t *testing.T) {
		api := new(MockAnkiAPI)
		rule := borderRule
		rule.Field = ""

		report, err := newTestService(api).Run(context.Background(), rule, Options{})

		assert.ErrorIs(t, err, note.ErrInvalidRule)
		assert.Equal(t, OutcomeFailed, report.Outcome)
		api.AssertNotCalled(t, "ModelTemplates", mock.Anything, mock.Anything)
	})
}

func TestService_Run_SelectsEveryNoteWithEligibleCard(t *testing.T) {
	api := new(MockAnkiAPI)
	api.On("ModelTemplates", mock.Anything, "Regions").Return(regionTemplates, nil)
	api.On("FindNotes", mock.Anything, `deck:"Other"`).Return([]int64{5, 4, 3}, nil)
	api.On("NotesInfo", mock.Anything, []int64{5, 4, 3}).Return([]note.Note{
		{ID: 5, ModelName: "Regions", Cards: []int64{50}},
		{ID: 4, ModelName: "Countries", Cards: []int64{40}},
		{ID: 3, ModelName: "Regions", Cards: []int64{30, 31}},
	}, nil)
	api.On("CardsInfo", mock.Anything, []int64{50, 30, 31}).Return([]note.Card{
		card(50, 5, 1, 46, "No"),
		card(30, 3, 0, 10, "No"),
		// поле отсутствует у карточки - считается не установленным
		{ID: 31, NoteID: 3, Ord: 1, Interval: 365},
	}, nil)
	api.On("UpdateNoteFields", mock.Anything, []int64{5, 3}, "No Border Map", "Yes").Return(2, nil)

	report, err := newTestService(api).Run(context.Background(), borderRule, Options{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeUpdated, report.Outcome)
	assert.Equal(t, 2, report.NotesOfModel)
	assert.Equal(t, 2, report.EligibleCards)
	assert.Equal(t, 2, report.Updated)
	api.AssertExpectations(t)
}
