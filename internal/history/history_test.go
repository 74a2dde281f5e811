package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/leetgrade/internal/report"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func analyzeAt(ts time.Time, question, answer string) *report.Report {
	return report.Analyzer{Now: func() time.Time { return ts }}.Analyze(question, answer)
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestSaveAndGet(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	r := analyzeAt(time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC), "Reverse a linked list", "// reverse\nprev = None")
	r.Grade = &report.Grade{Logic: 7, Efficiency: 8, Readability: 6.5}
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, r.Time.Equal(got.Time))
	assert.Equal(t, r.Scores(), got.Scores())
	assert.Equal(t, r.Question, got.Question)
	assert.Equal(t, r.Summary, got.Summary)
	require.NotNil(t, got.Grade)
	assert.Equal(t, 6.5, got.Grade.Readability)
}

func TestGet_NotFound(t *testing.T) {
	s := setupStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_RequiresID(t *testing.T) {
	s := setupStore(t)
	err := s.Save(context.Background(), &report.Report{})
	assert.Error(t, err)
}

func TestSave_ReplacesSameID(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	r := analyzeAt(time.Now(), "q", "a")
	require.NoError(t, s.Save(ctx, r))
	r.Answer = "changed"
	require.NoError(t, s.Save(ctx, r))

	all, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "changed", all[0].Answer)
}

func TestList_NewestFirstWithLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		r := analyzeAt(base.Add(time.Duration(i)*time.Minute), "question", "answer")
		r.Answer = string(rune('a' + i))
		require.NoError(t, s.Save(ctx, r))
	}

	got, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "e", got[0].Answer)
	assert.Equal(t, "d", got[1].Answer)
	assert.Equal(t, "c", got[2].Answer)
}

func TestList_DefaultLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for range DefaultLimit + 2 {
		require.NoError(t, s.Save(ctx, analyzeAt(time.Now(), "q", "a")))
	}
	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)
}

func TestList_Empty(t *testing.T) {
	s := setupStore(t)
	got, err := s.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
