package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestJournal(t *testing.T, path string) *Journal {
	t.Helper()

	j, err := NewJournal(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t, filepath.Join(t.TempDir(), "journal.db"))
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return start }

	require.NoError(t, j.Record("reconciler", errors.New("keyboard enumeration failed: permission denied")))
	j.now = func() time.Time { return start.Add(time.Second) }
	require.NoError(t, j.Record("hotplug", errors.New("read uevent: bad file descriptor")))

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "hotplug", entries[0].Component)
	assert.Equal(t, "reconciler", entries[1].Component)
	assert.Equal(t, "keyboard enumeration failed: permission denied", entries[1].Message)
	assert.True(t, start.Equal(entries[1].OccurredAt))
	assert.Equal(t, j.RunID(), entries[0].RunID)

	limited, err := j.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestJournalIsAppendOnly(t *testing.T) {
	j := openTestJournal(t, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, j.Record("daemon", errors.New("boom")))

	_, err := j.db.Exec(`update failures set message = 'edited'`)
	assert.Error(t, err)

	_, err = j.db.Exec(`delete from failures`)
	assert.Error(t, err)

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].Message)
}

func TestJournalSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	first, err := NewJournal(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, first.Record("reconciler", errors.New("first run")))
	require.NoError(t, first.Close())

	second := openTestJournal(t, path)
	require.NoError(t, second.Record("reconciler", errors.New("second run")))
	assert.NotEqual(t, first.RunID(), second.RunID())

	entries, err := second.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.RunID(), entries[1].RunID)
}
