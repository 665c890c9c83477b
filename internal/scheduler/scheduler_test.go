package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRefresher struct {
	mu    sync.Mutex
	calls [][]string
	err   error
	done  chan struct{}
}

func newRecordingRefresher(err error) *recordingRefresher {
	return &recordingRefresher{err: err, done: make(chan struct{}, 10)}
}

func (r *recordingRefresher) RefreshLocations(_ context.Context, extra []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, extra)
	r.mu.Unlock()
	r.done <- struct{}{}
	return r.err
}

func waitForRun(t *testing.T, r *recordingRefresher) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not run")
	}
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	refresher := newRecordingRefresher(nil)
	s := NewScheduler(refresher, "@every 1h", []string{"Prague"}, zap.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()
	waitForRun(t, refresher)

	refresher.mu.Lock()
	assert.Equal(t, [][]string{{"Prague"}}, refresher.calls)
	refresher.mu.Unlock()

	assert.Eventually(t, func() bool {
		return s.GetStatus()["runs"] == 1
	}, time.Second, 10*time.Millisecond)
	status := s.GetStatus()
	assert.Equal(t, true, status["running"])
	assert.Contains(t, status, "next_run")
}

func TestScheduler_RecordsLastError(t *testing.T) {
	refresher := newRecordingRefresher(errors.New("upstream down"))
	s := NewScheduler(refresher, "@every 1h", nil, zap.NewNop())

	s.ForceRun()
	waitForRun(t, refresher)

	assert.Eventually(t, func() bool {
		return s.GetStatus()["last_error"] == "upstream down"
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(newRecordingRefresher(nil), "not a schedule", nil, zap.NewNop())

	assert.Error(t, s.Start())
	assert.Equal(t, false, s.GetStatus()["running"])
}

func TestScheduler_UpdateLocations(t *testing.T) {
	refresher := newRecordingRefresher(nil)
	s := NewScheduler(refresher, "@every 1h", []string{"Prague"}, zap.NewNop())

	s.UpdateLocations([]string{"London"})
	s.ForceRun()
	waitForRun(t, refresher)

	refresher.mu.Lock()
	defer refresher.mu.Unlock()
	assert.Equal(t, [][]string{{"London"}}, refresher.calls)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(newRecordingRefresher(nil), "@every 1h", nil, zap.NewNop())
	s.Stop()

	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()
	assert.Equal(t, false, s.GetStatus()["running"])
}
