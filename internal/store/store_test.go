package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/phonescan/internal/models"
	"github.com/harrison/phonescan/internal/phone"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, startedAt time.Time) *models.ScanRun {
	run := &models.ScanRun{
		ID:        id,
		Engine:    phone.EngineBruteForce,
		StartedAt: startedAt,
		Duration:  1500 * time.Millisecond,
		Files: []models.FileResult{
			{
				Path: "notes.txt",
				Kind: "text",
				Matches: []phone.Match{
					{Number: "415-555-1234", Offset: 11},
					{Number: "415-555-9999", Offset: 34},
				},
			},
			{Path: "empty.md", Kind: "markdown", Matches: []phone.Match{}},
			{Path: "locked.html", Kind: "html", Matches: []phone.Match{}, Err: "permission denied"},
		},
	}
	run.Tally()
	return run
}

func TestNewStore(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{
			name:   "creates database successfully",
			dbPath: filepath.Join(t.TempDir(), "history.db"),
		},
		{
			name:   "handles in-memory database",
			dbPath: ":memory:",
		},
		{
			name:   "creates parent directories if needed",
			dbPath: filepath.Join(t.TempDir(), "nested", "dir", "history.db"),
		},
		{
			name:    "returns error when parent is a file",
			dbPath:  filepath.Join(blocker, "history.db"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			version, err := s.GetLatestVersion()
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
			assert.Equal(t, tt.dbPath, s.dbPath)
		})
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s1, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.RecordRun(context.Background(), sampleRun("run-1", time.Now())))
	require.NoError(t, s1.Close())

	s2, err := NewStore(dbPath)
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.ApplyMigrations(context.Background()))

	var count int
	require.NoError(t, s2.db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count))
	assert.Equal(t, len(migrations), count)

	runs, err := s2.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "data survives reopening")
}

func TestRecordRun_GetRun_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)
	run := sampleRun("run-1", started)

	require.NoError(t, s.RecordRun(ctx, run))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Engine, got.Engine)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, run.Duration, got.Duration)
	assert.Equal(t, run.TotalMatches, got.TotalMatches)
	assert.Equal(t, run.FailedFiles, got.FailedFiles)
	assert.Equal(t, run.Files, got.Files)
}

func TestGetRun_MatchesOrderedByOffset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run := &models.ScanRun{
		ID:        "run-order",
		Engine:    phone.EngineBruteForce,
		StartedAt: time.Now(),
		Files: []models.FileResult{{
			Path: "a.txt",
			Kind: "text",
			Matches: []phone.Match{
				{Number: "222-222-2222", Offset: 40},
				{Number: "111-111-1111", Offset: 2},
			},
		}},
	}
	run.Tally()
	require.NoError(t, s.RecordRun(ctx, run))

	got, err := s.GetRun(ctx, "run-order")
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	assert.Equal(t, []phone.Match{
		{Number: "111-111-1111", Offset: 2},
		{Number: "222-222-2222", Offset: 40},
	}, got.Files[0].Matches)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestRecordRun_DuplicateIDFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordRun(ctx, sampleRun("dup", time.Now())))
	assert.Error(t, s.RecordRun(ctx, sampleRun("dup", time.Now())))

	got, err := s.GetRun(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, got.Files, 3, "failed insert leaves the first run intact")
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordRun(ctx, sampleRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 5)
	for i, r := range runs {
		assert.Equal(t, fmt.Sprintf("run-%d", 4-i), r.ID)
	}

	first := runs[0]
	assert.Equal(t, phone.EngineBruteForce, first.Engine)
	assert.Equal(t, 3, first.FileCount)
	assert.Equal(t, 2, first.MatchCount)
	assert.Equal(t, 1, first.FailedCount)
	assert.Equal(t, 1500*time.Millisecond, first.Duration)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-4", limited[0].ID)
	assert.Equal(t, "run-3", limited[1].ID)
}

func TestListRuns_Empty(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestFindNumber(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordRun(ctx, sampleRun("older", base)))
	require.NoError(t, s.RecordRun(ctx, sampleRun("newer", base.Add(time.Hour))))

	hits, err := s.FindNumber(ctx, "415-555-9999")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "newer", hits[0].RunID)
	assert.Equal(t, "older", hits[1].RunID)
	assert.Equal(t, "notes.txt", hits[0].Path)
	assert.Equal(t, 34, hits[0].Offset)

	none, err := s.FindNumber(ctx, "000-000-0000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordRun_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.RecordRun(ctx, sampleRun("run-1", time.Now())))

	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
