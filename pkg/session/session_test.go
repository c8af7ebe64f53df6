package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prdpilot/pkg/types"
)

// fakeBackend counts calls and lets tests block a save mid-flight.
type fakeBackend struct {
	mu             sync.Mutex
	session        *types.SessionPayload
	getErr         error
	createErr      error
	saveErr        error
	regenPayload   *types.SessionPayload
	finalizeErr    error
	saveCalls      int
	getCalls       int
	createCalls    int
	finalizeCalls  int
	saveGate       chan struct{} // when set, SaveAnswer blocks until closed
	savedAnswers   []types.Answer
	regenerateErr  error
	regenerateCall int
}

func (f *fakeBackend) GetSession(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

func (f *fakeBackend) CreateSession(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.session, nil
}

func (f *fakeBackend) SaveAnswer(ctx context.Context, projectID string, answer types.Answer) error {
	f.mu.Lock()
	gate := f.saveGate
	f.saveCalls++
	f.savedAnswers = append(f.savedAnswers, answer)
	err := f.saveErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeBackend) RegenerateQuestions(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regenerateCall++
	if f.regenerateErr != nil {
		return nil, f.regenerateErr
	}
	return f.regenPayload, nil
}

func (f *fakeBackend) FinalizeSession(ctx context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalizeCalls++
	return f.finalizeErr
}

func newFake() *fakeBackend {
	return &fakeBackend{session: threeBucketPayload()}
}

func TestOpenLoadsSession(t *testing.T) {
	fake := newFake()
	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 1, fake.getCalls)
	assert.Equal(t, 0, fake.createCalls)
	assert.Equal(t, types.PriorityCritical, s.Snapshot().ActiveBucket)
}

func TestOpenFallsBackToCreate(t *testing.T) {
	fake := newFake()
	fake.getErr = errors.New("boom")

	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 1, fake.createCalls)
}

func TestOpenDualFailureSurfacesError(t *testing.T) {
	fake := newFake()
	fake.getErr = errors.New("load failed")
	fake.createErr = errors.New("create failed")

	_, err := Open(context.Background(), fake, "p1", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load or create session")
}

func TestSaveRejectsWhitespaceLocally(t *testing.T) {
	fake := newFake()
	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	err = s.Save("g1", "   ")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Equal(t, 0, fake.saveCalls, "no network call for a local validation failure")
	assert.Equal(t, 0, s.Snapshot().AnsweredCount)
}

func TestSaveUnknownKeyRejectedLocally(t *testing.T) {
	fake := newFake()
	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	err = s.Save("nonexistent", "text")
	assert.ErrorIs(t, err, ErrUnknownSection)
	assert.Equal(t, 0, fake.saveCalls)
}

func TestSaveUpdatesStateAndHistory(t *testing.T) {
	fake := newFake()
	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save("g1", "the answer"))

	state := s.Snapshot()
	assert.Equal(t, 1, state.AnsweredCount)
	assert.Equal(t, 2, state.PendingCount())
	require.NoError(t, state.CheckInvariant())

	require.Len(t, fake.savedAnswers, 1)
	sent := fake.savedAnswers[0]
	assert.Equal(t, "g1", sent.SectionKey)
	assert.Equal(t, "What about g1?", sent.Question)
	assert.False(t, sent.Skipped)
}

func TestSkipSendsEmptySkippedWrite(t *testing.T) {
	fake := newFake()
	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Skip("g3"))

	require.Len(t, fake.savedAnswers, 1)
	assert.True(t, fake.savedAnswers[0].Skipped)
	assert.Empty(t, fake.savedAnswers[0].Answer)
	assert.Equal(t, 1, s.Snapshot().SkippedCount)
}

func waitForSaveCalls(t *testing.T, fake *fakeBackend, n int) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		fake.mu.Lock()
		calls := fake.saveCalls
		fake.mu.Unlock()
		if calls >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("backend never reached %d save calls", n)
}

func TestSameKeyWriteSuppressedWhileInFlight(t *testing.T) {
	fake := newFake()
	gate := make(chan struct{})
	fake.saveGate = gate

	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	done := make(chan error, 1)
	go func() { done <- s.Save("g1", "slow write") }()

	// Wait until the first write reaches the backend.
	waitForSaveCalls(t, fake, 1)

	err = s.Save("g1", "second write")
	assert.ErrorIs(t, err, ErrInFlight)
	err = s.Skip("g1")
	assert.ErrorIs(t, err, ErrInFlight)

	// A different key is not locked out.
	fake.mu.Lock()
	fake.saveGate = nil
	fake.mu.Unlock()
	require.NoError(t, s.Save("g2", "independent"))

	close(gate)
	require.NoError(t, <-done)

	state := s.Snapshot()
	assert.Equal(t, 2, state.AnsweredCount)
	require.NoError(t, state.CheckInvariant())
}

func TestFailedSaveClearsInFlightMarkerForRetry(t *testing.T) {
	fake := newFake()
	fake.saveErr = errors.New("server unavailable")

	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	require.Error(t, s.Save("g1", "first try"))
	assert.Equal(t, 0, s.Snapshot().AnsweredCount)

	fake.mu.Lock()
	fake.saveErr = nil
	fake.mu.Unlock()
	require.NoError(t, s.Save("g1", "retry"))
	assert.Equal(t, 1, s.Snapshot().AnsweredCount)
}

func TestResponseAfterCloseIsDiscarded(t *testing.T) {
	fake := newFake()
	gate := make(chan struct{})
	fake.saveGate = gate

	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Save("g1", "late response") }()

	waitForSaveCalls(t, fake, 1)

	s.Close()
	close(gate)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, 0, s.Snapshot().AnsweredCount, "stale response must not be applied")
}

func TestRegenerateSwapsState(t *testing.T) {
	fake := newFake()
	fake.regenPayload = &types.SessionPayload{
		QuestionsByPriority: types.QuestionBuckets{
			Important: []types.Gap{gap("h1", types.PriorityImportant)},
		},
		RegenerationCount: 1,
	}

	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Regenerate())
	state := s.Snapshot()
	assert.Equal(t, 1, state.RegenerationCount)
	assert.Equal(t, 1, state.TotalQuestions())
	assert.Equal(t, types.PriorityImportant, state.ActiveBucket)
}

func TestRegenerateToEmptyIsTerminal(t *testing.T) {
	fake := newFake()
	fake.regenPayload = &types.SessionPayload{RegenerationCount: 1}

	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Regenerate())
	assert.True(t, s.Snapshot().Terminal())
}

func TestFinalizeFailureLeavesSessionOpen(t *testing.T) {
	fake := newFake()
	fake.finalizeErr = errors.New("not ready")

	s, err := Open(context.Background(), fake, "p1", 10)
	require.NoError(t, err)
	defer s.Close()

	require.Error(t, s.Finalize())

	// The session still accepts writes after a failed finalize.
	require.NoError(t, s.Save("g1", "still works"))
}
