package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4x0/hioctl/acquire"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "archive.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	id := uuid.New()
	started := time.Now().UTC()

	run, err := s.CreateRun(id, started)
	require.NoError(t, err)
	assert.Equal(t, "running", run.Status)

	got, err := s.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "running", got.Status)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, s.FinishRun(id, "completed", "", 80))

	got, err = s.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 80, got.SampleCount)
	require.NotNil(t, got.CompletedAt)
}

func TestFinishRun_AbortReason(t *testing.T) {
	s := newTestStore(t)

	id := uuid.New()
	_, err := s.CreateRun(id, time.Now())
	require.NoError(t, err)

	require.NoError(t, s.FinishRun(id, "aborted", "connection reset", 3))

	got, err := s.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, "aborted", got.Status)
	assert.Equal(t, "connection reset", got.Reason)
}

func TestGetRun_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetRun(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAppendAndGetSamples(t *testing.T) {
	s := newTestStore(t)

	id := uuid.New()
	_, err := s.CreateRun(id, time.Now())
	require.NoError(t, err)

	temp := 23.4
	io := 7
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	samples := []acquire.Sample{
		{Time: base, Voltage: 1.5},
		{Time: base.Add(time.Second), Voltage: -0.25, Temperature: &temp, IOPattern: &io},
	}

	require.NoError(t, s.AppendSamples(id, 0, samples))

	got, err := s.GetSamples(id)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.InDelta(t, 1.5, got[0].Voltage, 1e-12)
	assert.Nil(t, got[0].Temperature)
	assert.Nil(t, got[0].IOPattern)

	require.NotNil(t, got[1].Temperature)
	assert.InDelta(t, 23.4, *got[1].Temperature, 1e-12)
	require.NotNil(t, got[1].IOPattern)
	assert.Equal(t, 7, *got[1].IOPattern)
}

func TestAppendSamples_EmptyIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AppendSamples(uuid.New(), 0, nil))
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	first := uuid.New()
	second := uuid.New()
	_, err := s.CreateRun(first, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = s.CreateRun(second, time.Now())
	require.NoError(t, err)

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}
