package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-weekly-planner/internal/database"
	"ai-weekly-planner/internal/shared"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestRecordAndDailyUsage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "Extractor", PromptTokens: 100, CompletionTokens: 20, Success: true}))
	require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{
		AgentName: "Summarizer",
		Usage:     shared.TokenUsage{PromptTokens: 50, CompletionTokens: 5, TotalTokens: 55, Model: "gemini"},
		Latency:   time.Second,
	}, false))
	// No agent name and no usage: nothing to record.
	require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{}, true))

	usage, err := s.GetDailyUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	require.Equal(t, time.Now().UTC().Format("2006-01-02"), usage[0].Date)
	require.Equal(t, 150, usage[0].TotalPrompt)
	require.Equal(t, 25, usage[0].TotalCompletion)
	require.Equal(t, 2, usage[0].TotalExecution)
	require.Equal(t, 1, usage[0].Failures)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "Old", Timestamp: time.Now().AddDate(0, 0, -40)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "New"}))

	removed, err := s.Cleanup(ctx, 30)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	usage, err := s.GetDailyUsage(ctx, 365)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	require.Equal(t, 1, usage[0].TotalExecution)
}

func TestGetHealth(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		dir := t.TempDir()
		h := GetHealth(dir, filepath.Join(dir, "missing.db"))
		require.Positive(t, h.Goroutines)
		require.Zero(t, h.Snapshots)
		require.Equal(t, "0 B", h.SnapshotSize())
		require.Equal(t, "0 B", h.DatabaseSize())
	})

	t.Run("SnapshotsAndDatabase", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe.items.json"), make([]byte, 1024), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe.plan.json"), make([]byte, 1024), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), make([]byte, 4096), 0o644))
		db := filepath.Join(dir, "planner.db")
		require.NoError(t, os.WriteFile(db, make([]byte, 2048), 0o644))
		require.NoError(t, os.WriteFile(db+"-wal", make([]byte, 1024), 0o644))

		h := GetHealth(dir, db)
		require.Equal(t, 2, h.Snapshots)
		require.Equal(t, uint64(2048), h.SnapshotBytes)
		require.Equal(t, "2.0 KiB", h.SnapshotSize())
		require.Equal(t, uint64(3072), h.DatabaseBytes)
		require.Equal(t, "3.0 KiB", h.DatabaseSize())
	})
}
