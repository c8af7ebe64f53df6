// Package types holds the wire-level data contract shared between the
// prdpilot client and the PRD construction backend.
package types

import (
	"encoding/json"
	"fmt"
)

// Priority is the severity tier assigned to a gap by the backend analysis.
type Priority string

const (
	PriorityCritical  Priority = "critical"
	PriorityImportant Priority = "important"
	PriorityOptional  Priority = "optional"
)

// Priorities lists the tiers in fixed severity-first order. The ordering
// drives both question grouping and which bucket is auto-expanded first.
var Priorities = []Priority{PriorityCritical, PriorityImportant, PriorityOptional}

// UnmarshalJSON rejects unknown priority values so a question with an
// unrecognized tier becomes a decode error instead of silently dropping
// out of the three-bucket grouping.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Priority(s) {
	case PriorityCritical, PriorityImportant, PriorityOptional:
		*p = Priority(s)
		return nil
	}
	return fmt.Errorf("unknown priority %q", s)
}

// ChangeType marks a single line inside a modified diff section.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeContext ChangeType = "context"
)

func (c *ChangeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch ChangeType(s) {
	case ChangeAdded, ChangeRemoved, ChangeContext:
		*c = ChangeType(s)
		return nil
	}
	return fmt.Errorf("unknown change type %q", s)
}

// PipelineState is the backend-owned five-stage completion record for one
// document project. The client only ever holds a read cache of it.
type PipelineState struct {
	InputsProcessed    bool `json:"inputs_processed"`
	GapsAnalyzed       bool `json:"gaps_analyzed"`
	QuestionsGenerated bool `json:"questions_generated"`
	DocumentBuilt      bool `json:"document_built"`
	BacklogGenerated   bool `json:"backlog_generated"`
}

// Stage returns the named boolean. Unknown names report false.
func (s PipelineState) Stage(name string) bool {
	switch name {
	case "inputs_processed":
		return s.InputsProcessed
	case "gaps_analyzed":
		return s.GapsAnalyzed
	case "questions_generated":
		return s.QuestionsGenerated
	case "document_built":
		return s.DocumentBuilt
	case "backlog_generated":
		return s.BacklogGenerated
	}
	return false
}

// Gap is a backend-identified missing or underspecified piece of a document
// section. Immutable once received for a given analysis version.
type Gap struct {
	SectionKey       string   `json:"section_key"`
	SectionTitle     string   `json:"section_title"`
	Priority         Priority `json:"priority"`
	Description      string   `json:"description,omitempty"`
	Context          string   `json:"context,omitempty"`
	GuidingQuestions []string `json:"guiding_questions,omitempty"`
	Question         string   `json:"question,omitempty"`
	Options          []string `json:"options,omitempty"`
}

// Answer records the user's response (or explicit skip) for one section key.
// At most one current Answer exists per key; later writes replace earlier
// ones in place.
type Answer struct {
	SectionKey   string `json:"section_key"`
	Question     string `json:"question"`
	SectionTitle string `json:"section_title"`
	Answer       string `json:"answer"`
	Skipped      bool   `json:"skipped"`
}

// QuestionBuckets groups gaps by priority tier, each list ordered as the
// backend produced it.
type QuestionBuckets struct {
	Critical  []Gap `json:"critical"`
	Important []Gap `json:"important"`
	Optional  []Gap `json:"optional"`
}

// Bucket returns the list for a tier.
func (b QuestionBuckets) Bucket(p Priority) []Gap {
	switch p {
	case PriorityCritical:
		return b.Critical
	case PriorityImportant:
		return b.Important
	case PriorityOptional:
		return b.Optional
	}
	return nil
}

// Total is the question count across all three tiers.
func (b QuestionBuckets) Total() int {
	return len(b.Critical) + len(b.Important) + len(b.Optional)
}

// SessionPayload is the backend's view of a clarification session as
// returned by the session and regenerate endpoints.
type SessionPayload struct {
	QuestionsByPriority QuestionBuckets `json:"questions_by_priority"`
	AnsweredCount       int             `json:"answered_count"`
	SkippedCount        int             `json:"skipped_count"`
	RegenerationCount   int             `json:"regeneration_count"`
	PreviousAnswers     []Answer        `json:"previous_answers"`
	Cached              bool            `json:"cached"`
}

// DocumentVersion is one immutable snapshot of the generated document.
type DocumentVersion struct {
	Version    int      `json:"version"`
	CreatedAt  string   `json:"created_at"`
	Notes      string   `json:"notes"`
	FilesAdded []string `json:"files_added"`
	Status     string   `json:"status"`
}

// VersionList is the response of the versions endpoint.
type VersionList struct {
	CurrentVersion int               `json:"current_version"`
	Versions       []DocumentVersion `json:"versions"`
}

// VersionContent carries one version's raw document body plus metadata.
type VersionContent struct {
	Version   int    `json:"version"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	Notes     string `json:"notes"`
}

// LineChange is one line-level marker inside a modified section, in
// document order.
type LineChange struct {
	Type    ChangeType `json:"type"`
	Content string     `json:"content"`
}

// AddedSection is a section present only in the newer version.
type AddedSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// RemovedSection is a section present only in the older version.
type RemovedSection struct {
	Title string `json:"title"`
}

// ModifiedSection is a section present in both versions with content drift.
type ModifiedSection struct {
	Title      string       `json:"title"`
	Similarity float64      `json:"similarity"`
	Changes    []LineChange `json:"changes"`
}

// GapsComparison relates the gap analyses of the two compared versions.
type GapsComparison struct {
	NewGaps      []string `json:"new_gaps"`
	ResolvedGaps []string `json:"resolved_gaps"`
	CommonGaps   []string `json:"common_gaps"`
}

// VersionDiff is the section-granular comparison of two document versions.
type VersionDiff struct {
	Version1          int               `json:"version1"`
	Version2          int               `json:"version2"`
	Summary           string            `json:"summary"`
	SectionsAdded     int               `json:"sections_added"`
	SectionsRemoved   int               `json:"sections_removed"`
	SectionsModified  int               `json:"sections_modified"`
	SectionsUnchanged int               `json:"sections_unchanged"`
	Added             []AddedSection    `json:"added"`
	Removed           []RemovedSection  `json:"removed"`
	Modified          []ModifiedSection `json:"modified"`
	GapsComparison    *GapsComparison   `json:"gaps_comparison,omitempty"`
}

// Validate checks the count invariants the client relies on when rendering:
// each counter must equal the length of its list, and the similarity of
// every modified section must land in [0,1].
func (d *VersionDiff) Validate() error {
	if d.SectionsAdded != len(d.Added) {
		return fmt.Errorf("sections_added is %d but %d added sections present", d.SectionsAdded, len(d.Added))
	}
	if d.SectionsRemoved != len(d.Removed) {
		return fmt.Errorf("sections_removed is %d but %d removed sections present", d.SectionsRemoved, len(d.Removed))
	}
	if d.SectionsModified != len(d.Modified) {
		return fmt.Errorf("sections_modified is %d but %d modified sections present", d.SectionsModified, len(d.Modified))
	}
	for _, m := range d.Modified {
		if m.Similarity < 0 || m.Similarity > 1 {
			return fmt.Errorf("section %q similarity %v out of range", m.Title, m.Similarity)
		}
	}
	return nil
}

// GapsReport is the response of the gaps endpoint.
type GapsReport struct {
	Gaps      []Gap `json:"gaps"`
	GapsCount int   `json:"gaps_count"`
}

// ActionResult is the generic response of the action endpoint. Raw holds
// the full response body so callers can decode action-specific fields.
type ActionResult struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

// BuildResult is the action-specific payload for the build-document action.
// It confirms how many clarification answers were folded into the document.
type BuildResult struct {
	UserAnswersCount int      `json:"user_answers_count"`
	UserAnswersUsed  []string `json:"user_answers_used"`
}
