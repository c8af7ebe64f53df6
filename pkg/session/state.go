// Package session owns the lifecycle of one clarification session: the
// question/answer/skip/regenerate cycle that resolves gaps for a document
// project. The state lives in a pure container with explicit transition
// functions so the upsert-by-key and counter invariants can be tested
// without any rendering layer.
package session

import (
	"fmt"

	"prdpilot/pkg/types"
)

// State is an immutable-by-convention snapshot of one session. Transitions
// return a new State and never mutate the receiver's slices in place.
type State struct {
	Buckets           types.QuestionBuckets
	AnsweredCount     int
	SkippedCount      int
	RegenerationCount int
	PreviousAnswers   []types.Answer
	// Drafts holds in-progress answer text keyed by section key,
	// prefilled from non-skipped previous answers so a resuming user
	// sees their earlier text.
	Drafts map[string]string
	// ActiveBucket is the tier auto-selected for initial display: the
	// first non-empty one in fixed order critical > important > optional.
	ActiveBucket types.Priority
}

// TotalQuestions is the question count across all three buckets.
func (s State) TotalQuestions() int {
	return s.Buckets.Total()
}

// PendingCount is always derived, never stored, so it cannot drift from
// the answered/skipped counters.
func (s State) PendingCount() int {
	return s.TotalQuestions() - s.AnsweredCount - s.SkippedCount
}

// Terminal reports whether the session has nothing left to ask. The UI
// then offers only finalize.
func (s State) Terminal() bool {
	return s.TotalQuestions() == 0
}

// CheckInvariant verifies answered + skipped + pending == total. Pending
// being derived makes this structural, but the counters themselves can
// still be driven wrong by a bad transition, so tests call this after
// every mutation.
func (s State) CheckInvariant() error {
	if s.AnsweredCount < 0 || s.SkippedCount < 0 || s.PendingCount() < 0 {
		return fmt.Errorf("counter underflow: answered=%d skipped=%d pending=%d",
			s.AnsweredCount, s.SkippedCount, s.PendingCount())
	}
	return nil
}

// AnswerFor returns the current answer entry for a section key, if any.
// At most one entry exists per key.
func (s State) AnswerFor(key string) (types.Answer, bool) {
	for _, a := range s.PreviousAnswers {
		if a.SectionKey == key {
			return a, true
		}
	}
	return types.Answer{}, false
}

// GapFor finds the bucketed question for a section key.
func (s State) GapFor(key string) (types.Gap, bool) {
	for _, p := range types.Priorities {
		for _, g := range s.Buckets.Bucket(p) {
			if g.SectionKey == key {
				return g, true
			}
		}
	}
	return types.Gap{}, false
}

// firstNonEmptyBucket picks the auto-expand tier. Severity-first order is
// a fixed policy, not user-configurable.
func firstNonEmptyBucket(b types.QuestionBuckets) types.Priority {
	for _, p := range types.Priorities {
		if len(b.Bucket(p)) > 0 {
			return p
		}
	}
	return ""
}

// FromPayload builds the initial state from a backend session payload.
func FromPayload(payload *types.SessionPayload) State {
	drafts := make(map[string]string)
	for _, a := range payload.PreviousAnswers {
		if !a.Skipped && a.Answer != "" {
			drafts[a.SectionKey] = a.Answer
		}
	}
	return State{
		Buckets:           payload.QuestionsByPriority,
		AnsweredCount:     payload.AnsweredCount,
		SkippedCount:      payload.SkippedCount,
		RegenerationCount: payload.RegenerationCount,
		PreviousAnswers:   append([]types.Answer(nil), payload.PreviousAnswers...),
		Drafts:            drafts,
		ActiveBucket:      firstNonEmptyBucket(payload.QuestionsByPriority),
	}
}

// upsertAnswer replaces the entry for answer.SectionKey in place, or
// appends when the key is new. Update-by-key, never append-on-update, so
// completion order of different keys cannot change the final state.
func upsertAnswer(answers []types.Answer, answer types.Answer) []types.Answer {
	out := append([]types.Answer(nil), answers...)
	for i, a := range out {
		if a.SectionKey == answer.SectionKey {
			out[i] = answer
			return out
		}
	}
	return append(out, answer)
}

// ApplySave folds a successful answer write into the state. Converting a
// prior skip into an answer supersedes the skip: skipped_count goes down
// as answered_count goes up, keeping the counter invariant intact.
func ApplySave(s State, answer types.Answer) State {
	next := s
	prev, existed := s.AnswerFor(answer.SectionKey)
	switch {
	case !existed:
		next.AnsweredCount++
	case prev.Skipped:
		next.SkippedCount--
		next.AnsweredCount++
	default:
		// Re-saving an already answered key replaces the text only.
	}
	answer.Skipped = false
	next.PreviousAnswers = upsertAnswer(s.PreviousAnswers, answer)
	next.Drafts = cloneDrafts(s.Drafts)
	next.Drafts[answer.SectionKey] = answer.Answer
	return next
}

// ApplySkip folds a successful skip write into the state and clears any
// in-progress draft for the key.
func ApplySkip(s State, gap types.Gap) State {
	next := s
	prev, existed := s.AnswerFor(gap.SectionKey)
	switch {
	case !existed:
		next.SkippedCount++
	case !prev.Skipped:
		next.AnsweredCount--
		next.SkippedCount++
	default:
		// Skipping an already skipped key is a no-op for the counters.
	}
	next.PreviousAnswers = upsertAnswer(s.PreviousAnswers, types.Answer{
		SectionKey:   gap.SectionKey,
		Question:     gap.Question,
		SectionTitle: gap.SectionTitle,
		Answer:       "",
		Skipped:      true,
	})
	next.Drafts = cloneDrafts(s.Drafts)
	delete(next.Drafts, gap.SectionKey)
	return next
}

// ApplyRegenerate replaces the buckets wholesale with the server's
// replacement session. Counters reset to the server's view; accumulated
// previous answers are whatever the server returned.
func ApplyRegenerate(s State, payload *types.SessionPayload) State {
	next := FromPayload(payload)
	// Drafts for keys that survived regeneration are kept so typed but
	// unsaved text is not lost.
	for key, text := range s.Drafts {
		if _, ok := next.GapFor(key); ok {
			if _, already := next.Drafts[key]; !already {
				next.Drafts[key] = text
			}
		}
	}
	return next
}

func cloneDrafts(drafts map[string]string) map[string]string {
	out := make(map[string]string, len(drafts))
	for k, v := range drafts {
		out[k] = v
	}
	return out
}
