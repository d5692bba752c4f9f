package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThoughtRecord is a single validated step in a reasoning sequence.
// It is a plain value type: construction performs no validation, so a
// record can be built incrementally before Validate is called and the
// record is committed to history.
type ThoughtRecord struct {
	ID string `json:"id"`

	// Content is the thought text. Must be non-blank to validate.
	Content string `json:"content"`

	// Number is the 1-based position the caller asserts for this thought.
	Number int `json:"thought_number"`

	// TotalExpected is the caller's current estimate of sequence length.
	// It may fall below Number as sequences revise their estimate upward;
	// that case is surfaced as an analysis warning, never a rejection.
	TotalExpected int `json:"total_thoughts"`

	// ContinuationExpected reports whether the caller intends to submit
	// more thoughts after this one.
	ContinuationExpected bool `json:"next_thought_needed"`

	Stage Stage `json:"stage"`

	// Tags are keywords for the thought. Duplicates are collapsed,
	// preserving first occurrence; order is otherwise irrelevant.
	Tags []string `json:"tags"`

	// Axioms are principles the thought relies on, in caller order.
	Axioms []string `json:"axioms_used"`

	// AssumptionsChallenged lists assumptions this thought questions.
	AssumptionsChallenged []string `json:"assumptions_challenged"`

	// Critique is optional external commentary, attached after
	// construction and before the record is appended to history.
	Critique string `json:"critical_response,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// RecordFields holds the caller-supplied fields for a new ThoughtRecord.
// Nil slices are treated as empty.
type RecordFields struct {
	Content               string
	Number                int
	TotalExpected         int
	ContinuationExpected  bool
	Stage                 Stage
	Tags                  []string
	Axioms                []string
	AssumptionsChallenged []string
}

// NewThoughtRecord constructs a record from fields, assigning an ID and
// creation timestamp. No validation is performed; call Validate before
// storing the record.
func NewThoughtRecord(fields RecordFields) ThoughtRecord {
	return ThoughtRecord{
		ID:                    uuid.New().String(),
		Content:               fields.Content,
		Number:                fields.Number,
		TotalExpected:         fields.TotalExpected,
		ContinuationExpected:  fields.ContinuationExpected,
		Stage:                 fields.Stage,
		Tags:                  dedupeTags(fields.Tags),
		Axioms:                copyStrings(fields.Axioms),
		AssumptionsChallenged: copyStrings(fields.AssumptionsChallenged),
		CreatedAt:             time.Now(),
	}
}

// Validate checks the record invariants in a fixed order and returns a
// ValidationError naming the first field that fails. TotalExpected below
// Number is deliberately not an error here (see TotalExpected).
func (r *ThoughtRecord) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return &ValidationError{Field: "content", Reason: "thought content cannot be empty"}
	}
	if r.Number < 1 {
		return &ValidationError{Field: "thought_number", Reason: fmt.Sprintf("thought number must be positive, got %d", r.Number)}
	}
	if r.TotalExpected < 1 {
		return &ValidationError{Field: "total_thoughts", Reason: fmt.Sprintf("total thoughts must be positive, got %d", r.TotalExpected)}
	}
	if !r.Stage.Valid() {
		return &ValidationError{Field: "stage", Reason: fmt.Sprintf("unknown stage ordinal %d", int(r.Stage))}
	}
	return nil
}

// AttachCritique sets the critique text. Callers must attach critique
// before the record is appended to history; the record itself does not
// enforce this.
func (r *ThoughtRecord) AttachCritique(text string) {
	r.Critique = text
}

// ValidationError reports a ThoughtRecord field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// dedupeTags collapses duplicate tags, preserving first-occurrence order.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
