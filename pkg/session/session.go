package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"prdpilot/pkg/types"
)

// Local validation errors. These are caught before any network call and
// surfaced inline; they are never retried.
var (
	ErrEmptyAnswer    = errors.New("answer cannot be empty")
	ErrUnknownSection = errors.New("no question with that section key")
	ErrInFlight       = errors.New("a write for this question is already in flight")
	ErrClosed         = errors.New("session is closed")
)

// backend is the slice of the API client the session depends on.
type backend interface {
	GetSession(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error)
	CreateSession(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error)
	SaveAnswer(ctx context.Context, projectID string, answer types.Answer) error
	RegenerateQuestions(ctx context.Context, projectID string, maxQuestions int) (*types.SessionPayload, error)
	FinalizeSession(ctx context.Context, projectID string) error
}

// Session is the stateful controller for one project's clarification
// session. Per-question writes are serialized by section key: a save or
// skip for a key already in flight is rejected without a network call,
// while writes for different keys may run concurrently and complete in
// either order.
type Session struct {
	client       backend
	projectID    string
	maxQuestions int

	mu       sync.Mutex
	state    State
	inflight map[string]struct{}

	// ctx spans the session view's lifetime. Responses that arrive after
	// Close are discarded instead of being applied to dead state.
	ctx    context.Context
	cancel context.CancelFunc
}

// Open loads the session for a project, falling back to creating one when
// the load fails. If both fail the error is returned and no session is
// presented: the caller stays in a loading-failed state rather than
// showing an empty session.
func Open(ctx context.Context, client backend, projectID string, maxQuestions int) (*Session, error) {
	payload, err := client.GetSession(ctx, projectID, maxQuestions)
	if err != nil {
		payload, err = client.CreateSession(ctx, projectID, maxQuestions)
		if err != nil {
			return nil, fmt.Errorf("failed to load or create session: %w", err)
		}
	}

	sctx, cancel := context.WithCancel(ctx)
	return &Session{
		client:       client,
		projectID:    projectID,
		maxQuestions: maxQuestions,
		state:        FromPayload(payload),
		inflight:     make(map[string]struct{}),
		ctx:          sctx,
		cancel:       cancel,
	}, nil
}

// Close cancels the session's lifetime. In-flight responses arriving
// afterwards are discarded.
func (s *Session) Close() {
	s.cancel()
}

// Snapshot returns the current state for rendering.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetDraft stores in-progress answer text without any network traffic.
func (s *Session) SetDraft(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drafts := cloneDrafts(s.state.Drafts)
	drafts[key] = text
	s.state.Drafts = drafts
}

// beginWrite claims the in-flight marker for a key and resolves its gap.
func (s *Session) beginWrite(key string) (types.Gap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return types.Gap{}, ErrClosed
	}
	gap, ok := s.state.GapFor(key)
	if !ok {
		return types.Gap{}, fmt.Errorf("%w: %s", ErrUnknownSection, key)
	}
	if _, busy := s.inflight[key]; busy {
		return types.Gap{}, ErrInFlight
	}
	s.inflight[key] = struct{}{}
	return gap, nil
}

// endWrite releases the marker so the user can retry after a failure.
func (s *Session) endWrite(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// Save records a non-empty answer for a section key. Whitespace-only text
// is rejected locally. On success the entry is upserted by key into the
// answer history; a prior skip for the key is superseded.
func (s *Session) Save(key, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyAnswer
	}

	gap, err := s.beginWrite(key)
	if err != nil {
		return err
	}
	defer s.endWrite(key)

	answer := types.Answer{
		SectionKey:   gap.SectionKey,
		Question:     gap.Question,
		SectionTitle: gap.SectionTitle,
		Answer:       text,
		Skipped:      false,
	}
	if err := s.client.SaveAnswer(s.ctx, s.projectID, answer); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		// The view closed while the write was in flight; the response
		// must not be applied to stale state.
		return ErrClosed
	}
	s.state = ApplySave(s.state, answer)
	return nil
}

// Skip records an explicit skip for a section key and clears its draft.
func (s *Session) Skip(key string) error {
	gap, err := s.beginWrite(key)
	if err != nil {
		return err
	}
	defer s.endWrite(key)

	skip := types.Answer{
		SectionKey:   gap.SectionKey,
		Question:     gap.Question,
		SectionTitle: gap.SectionTitle,
		Answer:       "",
		Skipped:      true,
	}
	if err := s.client.SaveAnswer(s.ctx, s.projectID, skip); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return ErrClosed
	}
	s.state = ApplySkip(s.state, gap)
	return nil
}

// Regenerate asks the backend for a replacement session. The old buckets
// are discarded wholesale; counters reset to the server's view and the
// accumulated answer history is whatever the server returned.
func (s *Session) Regenerate() error {
	if s.ctx.Err() != nil {
		return ErrClosed
	}
	payload, err := s.client.RegenerateQuestions(s.ctx, s.projectID, s.maxQuestions)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return ErrClosed
	}
	s.state = ApplyRegenerate(s.state, payload)
	return nil
}

// Finalize ends the session server-side. Success means the caller should
// re-fetch PipelineState and close the session view; failure leaves the
// session open with no local side effects.
func (s *Session) Finalize() error {
	if s.ctx.Err() != nil {
		return ErrClosed
	}
	return s.client.FinalizeSession(s.ctx, s.projectID)
}
