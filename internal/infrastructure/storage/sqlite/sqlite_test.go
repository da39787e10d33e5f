package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"ankifield/internal/domain/history"
)

func TestNew_PathWithSpace(t *testing.T) {
	// Arrange: домашняя директория с пробелом в имени
	path := filepath.Join(t.TempDir(), "John Smith", ".ankifield", "history.db")

	// Act
	storage, err := New(path)
	require.NoError(t, err)
	defer storage.Close()

	// Assert: миграции применены к тому же файлу, который открыт
	repo := NewRunRepository(storage.DB(), slog.Default())
	now := time.Now().UTC()
	id, err := repo.Save(context.Background(), &history.Run{
		Rule:       "polish-audio",
		Outcome:    "updated",
		StartedAt:  now,
		FinishedAt: now,
	})
	require.NoError(t, err)

	runs, err := repo.List(context.Background(), history.Filter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
}
