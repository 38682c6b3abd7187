package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/workflow"
)

func TestScheduler_PassRunsOnlyDueWorkflows(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-5 * time.Minute)
	stale := testNow.Add(-2 * time.Hour)

	store := newFakeStore()
	store.active = []workflow.Workflow{
		{ID: "due-never", URL: "https://a.example", Frequency: workflow.FrequencyHourly, NotifyType: workflow.NotifyInApp},
		{ID: "not-due", URL: "https://b.example", Frequency: workflow.FrequencyHourly, NotifyType: workflow.NotifyInApp, LastRun: &recent},
		{ID: "due-stale", URL: "https://c.example", Frequency: workflow.FrequencyHourly, NotifyType: workflow.NotifyInApp, LastRun: &stale},
	}

	clock := &fakeClock{now: testNow}
	r := New(store, &fakeExtractor{result: goodExtraction()}, nil, nil, clock, &fakeIDGen{}, zap.NewNop())
	s := NewScheduler(store, r, clock, time.Minute, zap.NewNop())

	report := s.Pass(context.Background())
	require.Equal(t, 3, report.Processed)
	require.Equal(t, 2, report.Ran)
	require.Equal(t, 2, report.Succeeded)
	require.Zero(t, report.Failed)
	require.Len(t, store.results, 2)
	require.Empty(t, store.updates["not-due"])
}

func TestScheduler_PassContinuesAfterWorkflowFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.active = []workflow.Workflow{
		{ID: "bad", URL: "https://a.example", Frequency: workflow.FrequencyHourly, NotifyType: workflow.NotifyInApp},
		{ID: "good", URL: "https://b.example", Frequency: workflow.FrequencyHourly, NotifyType: workflow.NotifyInApp},
	}

	// Extractor fails for every workflow; both still get error rows and
	// the pass completes.
	ext := &fakeExtractor{result: workflow.Extraction{Success: false, Error: "boom"}}
	clock := &fakeClock{now: testNow}
	r := New(store, ext, nil, nil, clock, &fakeIDGen{}, zap.NewNop())
	s := NewScheduler(store, r, clock, time.Minute, zap.NewNop())

	report := s.Pass(context.Background())
	require.Equal(t, 2, report.Ran)
	require.Equal(t, 2, report.Failed)
	require.Len(t, store.results, 2)
}

func TestScheduler_PassSurvivesStoreFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.activeErr = errors.New("connection refused")
	clock := &fakeClock{now: testNow}
	r := New(store, &fakeExtractor{}, nil, nil, clock, &fakeIDGen{}, zap.NewNop())
	s := NewScheduler(store, r, clock, time.Minute, zap.NewNop())

	report := s.Pass(context.Background())
	require.Zero(t, report.Processed)
}

func TestScheduler_LoopStopsOnCancel(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	clock := &fakeClock{now: testNow}
	r := New(store, &fakeExtractor{result: goodExtraction()}, nil, nil, clock, &fakeIDGen{}, zap.NewNop())
	s := NewScheduler(store, r, clock, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Loop(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}

func TestRunner_EndToEndErrorPath(t *testing.T) {
	t.Parallel()

	// Workflow that has never run, against a page where every strategy
	// reports insufficient content.
	store := newFakeStore()
	ext := &fakeExtractor{result: workflow.Extraction{
		Success: false,
		Error:   "all extraction strategies failed: readability: insufficient content; basic-parser: insufficient content",
	}}
	clock := &fakeClock{now: testNow}
	r := New(store, ext, nil, nil, clock, &fakeIDGen{}, zap.NewNop())

	wf := workflow.Workflow{
		ID:         "wf-e2e",
		URL:        "https://thin.example",
		Frequency:  workflow.FrequencyQuarterHour,
		NotifyType: workflow.NotifyInApp,
	}
	report := r.Run(context.Background(), wf)

	require.True(t, report.Ran)
	require.False(t, report.Success)
	require.Len(t, store.results, 1)
	require.False(t, store.results[0].Seen)
	update := store.lastUpdate("wf-e2e")
	require.Equal(t, workflow.StatusError, *update.Status)
	require.Equal(t, testNow, *update.LastRun)
}
