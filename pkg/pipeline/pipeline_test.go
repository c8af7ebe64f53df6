package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prdpilot/pkg/types"
)

type fakeFetcher struct {
	state types.PipelineState
	err   error
	calls int
}

func (f *fakeFetcher) GetPipelineState(ctx context.Context, projectID string) (*types.PipelineState, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	state := f.state
	return &state, nil
}

func mustAction(t *testing.T, id string) Action {
	t.Helper()
	a, ok := ActionByID(id)
	require.True(t, ok, "action %s not in table", id)
	return a
}

func TestStatusForFollowsStageBooleans(t *testing.T) {
	tests := []struct {
		name   string
		state  types.PipelineState
		action string
		want   Status
	}{
		{name: "process inputs fresh project", state: types.PipelineState{}, action: "process_inputs", want: StatusAvailable},
		{name: "process inputs done", state: types.PipelineState{InputsProcessed: true}, action: "process_inputs", want: StatusCompleted},
		{name: "backlog blocked before document", state: types.PipelineState{}, action: "generate_backlog", want: StatusBlocked},
		{name: "backlog available after document", state: types.PipelineState{DocumentBuilt: true}, action: "generate_backlog", want: StatusAvailable},
		{name: "backlog completed", state: types.PipelineState{DocumentBuilt: true, BacklogGenerated: true}, action: "generate_backlog", want: StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.state, mustAction(t, tt.action)))
		})
	}
}

// The middle actions declare prerequisites but the status computation does
// not consult them; only the run handler checks them reactively. This test
// pins the current behavior down on purpose.
func TestSoftGatedActionsReportAvailableDespiteUnmetPrerequisites(t *testing.T) {
	fresh := types.PipelineState{} // inputs_processed=false and everything else false

	for _, id := range []string{"analyze_gaps", "generate_questions", "build_document"} {
		t.Run(id, func(t *testing.T) {
			action := mustAction(t, id)
			assert.NotEmpty(t, action.Requires, "quirk only applies to actions that declare prerequisites")
			assert.Equal(t, StatusAvailable, StatusFor(fresh, action))
		})
	}
}

func TestMissingPrerequisitesNamesUnmetStages(t *testing.T) {
	action := mustAction(t, "analyze_gaps")

	missing := MissingPrerequisites(types.PipelineState{}, action)
	assert.Equal(t, []string{"inputs_processed"}, missing)

	missing = MissingPrerequisites(types.PipelineState{InputsProcessed: true}, action)
	assert.Empty(t, missing)
}

func TestCheckRunnableRejectsLocallyWithNamedStages(t *testing.T) {
	fetcher := &fakeFetcher{state: types.PipelineState{}}
	store := NewStore(fetcher)

	err := store.CheckRunnable(context.Background(), "p1", mustAction(t, "generate_questions"))
	require.Error(t, err)

	var prereq *PrerequisiteError
	require.ErrorAs(t, err, &prereq)
	assert.Equal(t, []string{"gaps_analyzed"}, prereq.Missing)
	assert.Contains(t, err.Error(), "gaps_analyzed")
}

func TestStoreCachesUntilRefresh(t *testing.T) {
	fetcher := &fakeFetcher{state: types.PipelineState{InputsProcessed: true}}
	store := NewStore(fetcher)

	first, err := store.State(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, first.InputsProcessed)
	assert.Equal(t, 1, fetcher.calls)

	// Second read is served from cache.
	_, err = store.State(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)

	// The backend advances; only a refresh observes it.
	fetcher.state.GapsAnalyzed = true
	refreshed, err := store.Refresh(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, refreshed.GapsAnalyzed)
	assert.Equal(t, 2, fetcher.calls)
}

func TestStoreInvalidateForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := NewStore(fetcher)

	_, err := store.State(context.Background(), "p1")
	require.NoError(t, err)
	store.Invalidate("p1")
	_, err = store.State(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestStateFetchErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	store := NewStore(fetcher)

	_, err := store.State(context.Background(), "p1")
	assert.ErrorContains(t, err, "failed to fetch pipeline state")
}

func TestActionTableOrderAndIDs(t *testing.T) {
	wantOrder := []string{"process_inputs", "analyze_gaps", "generate_questions", "build_document", "generate_backlog"}
	require.Len(t, Actions, len(wantOrder))
	for i, a := range Actions {
		assert.Equal(t, wantOrder[i], a.ID)
	}

	_, ok := ActionByID("nonexistent")
	assert.False(t, ok)
}
