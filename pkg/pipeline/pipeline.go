// Package pipeline tracks the five-stage completion record of a document
// project and derives which actions the user may trigger. The backend owns
// the record; this store is strictly a read cache refreshed after every
// action invocation.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"prdpilot/pkg/types"
)

// Status is the derived availability of one action.
type Status string

const (
	StatusAvailable Status = "available"
	StatusCompleted Status = "completed"
	StatusBlocked   Status = "blocked"
)

// Action is one entry of the static action table.
type Action struct {
	ID            string
	Title         string
	Requires      []string
	CompletedWhen string
	// softGate preserves the original behavior for the middle actions:
	// their requires list is only consulted reactively by the run handler,
	// never by the status computation, so they always report available
	// until completed. Whether that should be a hard gate is an open
	// policy question; the current behavior is kept and pinned by tests.
	softGate bool
}

// Actions is the static table, in pipeline order.
var Actions = []Action{
	{
		ID:            "process_inputs",
		Title:         "Process inputs",
		CompletedWhen: "inputs_processed",
	},
	{
		ID:            "analyze_gaps",
		Title:         "Analyze gaps",
		Requires:      []string{"inputs_processed"},
		CompletedWhen: "gaps_analyzed",
		softGate:      true,
	},
	{
		ID:            "generate_questions",
		Title:         "Generate questions",
		Requires:      []string{"gaps_analyzed"},
		CompletedWhen: "questions_generated",
		softGate:      true,
	},
	{
		ID:            "build_document",
		Title:         "Build document",
		Requires:      []string{"questions_generated"},
		CompletedWhen: "document_built",
		softGate:      true,
	},
	{
		ID:            "generate_backlog",
		Title:         "Generate backlog",
		Requires:      []string{"document_built"},
		CompletedWhen: "backlog_generated",
	},
}

// ActionByID looks up an action in the static table.
func ActionByID(id string) (Action, bool) {
	for _, a := range Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// StatusFor derives one action's status from the current state. Actions
// with unmet prerequisites stay visible (blocked, not hidden) so the user
// can discover the required order.
func StatusFor(state types.PipelineState, action Action) Status {
	if state.Stage(action.CompletedWhen) {
		return StatusCompleted
	}
	if action.softGate {
		return StatusAvailable
	}
	for _, req := range action.Requires {
		if !state.Stage(req) {
			return StatusBlocked
		}
	}
	return StatusAvailable
}

// MissingPrerequisites returns the unmet stage names for an action, in
// declaration order. The run handler consults this reactively before any
// network call and names the missing stages in its message.
func MissingPrerequisites(state types.PipelineState, action Action) []string {
	var missing []string
	for _, req := range action.Requires {
		if !state.Stage(req) {
			missing = append(missing, req)
		}
	}
	return missing
}

// PrerequisiteError is the local validation error produced when an action
// is triggered with unmet prerequisites. No network call is made.
type PrerequisiteError struct {
	ActionID string
	Missing  []string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s requires %s to complete first", e.ActionID, strings.Join(e.Missing, ", "))
}

// stateFetcher is the backend call the store depends on.
type stateFetcher interface {
	GetPipelineState(ctx context.Context, projectID string) (*types.PipelineState, error)
}

// Store caches PipelineState per project id with a short TTL. The cache
// exists only to avoid hammering the state endpoint while rendering; any
// action invocation invalidates it.
type Store struct {
	fetcher stateFetcher
	cache   *gocache.Cache
}

const (
	cacheTTL     = 30 * time.Second
	cacheCleanup = 5 * time.Minute
)

// NewStore creates a store backed by the given fetcher.
func NewStore(fetcher stateFetcher) *Store {
	return &Store{
		fetcher: fetcher,
		cache:   gocache.New(cacheTTL, cacheCleanup),
	}
}

// State returns the cached pipeline state for a project, fetching on miss.
func (s *Store) State(ctx context.Context, projectID string) (types.PipelineState, error) {
	if cached, ok := s.cache.Get(projectID); ok {
		return cached.(types.PipelineState), nil
	}
	return s.Refresh(ctx, projectID)
}

// Refresh drops the cached entry and re-fetches from the backend. Called
// after every successful action invocation since completion is only ever
// learned from the backend, never recorded client-side.
func (s *Store) Refresh(ctx context.Context, projectID string) (types.PipelineState, error) {
	state, err := s.fetcher.GetPipelineState(ctx, projectID)
	if err != nil {
		return types.PipelineState{}, fmt.Errorf("failed to fetch pipeline state: %w", err)
	}
	s.cache.Set(projectID, *state, gocache.DefaultExpiration)
	return *state, nil
}

// Invalidate drops the cached entry without re-fetching.
func (s *Store) Invalidate(projectID string) {
	s.cache.Delete(projectID)
}

// CheckRunnable is the reactive prerequisite check performed by the run
// handler just before invoking an action. On failure it returns a
// PrerequisiteError naming the missing stages, and no network call is made.
func (s *Store) CheckRunnable(ctx context.Context, projectID string, action Action) error {
	state, err := s.State(ctx, projectID)
	if err != nil {
		return err
	}
	if missing := MissingPrerequisites(state, action); len(missing) > 0 {
		return &PrerequisiteError{ActionID: action.ID, Missing: missing}
	}
	return nil
}
