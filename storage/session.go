// Session file persistence.
//
// Sessions are exported as a self-describing JSON document so that a
// future version can add optional fields without breaking old exports.
// Export writes to a temporary file and atomically renames it over the
// destination; import parses and validates the whole file before the
// in-memory history is touched.

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/richinex/seqthink/model"
)

// sessionFileVersion identifies the current export format.
const sessionFileVersion = 1

// sessionFile is the on-disk session document.
type sessionFile struct {
	Version    int                   `json:"version"`
	SessionID  string                `json:"session_id,omitempty"`
	ExportedAt time.Time             `json:"exported_at"`
	Thoughts   []model.ThoughtRecord `json:"thoughts"`
}

// importedThought mirrors the thought object with pointer fields so a
// missing required field can be told apart from a zero value. Unknown
// fields in the file are ignored for forward compatibility.
type importedThought struct {
	ID                    string     `json:"id"`
	Content               *string    `json:"content"`
	Number                *int       `json:"thought_number"`
	TotalExpected         *int       `json:"total_thoughts"`
	ContinuationExpected  *bool      `json:"next_thought_needed"`
	Stage                 *string    `json:"stage"`
	Tags                  []string   `json:"tags"`
	Axioms                []string   `json:"axioms_used"`
	AssumptionsChallenged []string   `json:"assumptions_challenged"`
	Critique              string     `json:"critical_response"`
	CreatedAt             *time.Time `json:"created_at"`
}

// importedSession mirrors sessionFile for parsing.
type importedSession struct {
	Version    int               `json:"version"`
	SessionID  string            `json:"session_id"`
	ExportedAt time.Time         `json:"exported_at"`
	Thoughts   []importedThought `json:"thoughts"`
}

// ParseError reports a malformed session file. When a required field is
// missing from a thought object, Field names it.
type ParseError struct {
	Field string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed session file: missing or invalid field %q", e.Field)
	}
	return fmt.Sprintf("malformed session file: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ExportSession serializes the full history to path. Relative paths
// should be resolved by the caller before this point. The write is
// atomic: on any failure the destination file is left untouched.
func (h *MemoryHistory) ExportSession(path string) error {
	doc := sessionFile{
		Version:    sessionFileVersion,
		SessionID:  h.sessionID,
		ExportedAt: time.Now(),
		Thoughts:   h.All(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// ImportSession reads a session file and replaces the current history.
// Import is all-or-nothing: on any parse or validation failure the
// existing in-memory history is left untouched.
func (h *MemoryHistory) ImportSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var doc importedSession
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ParseError{Cause: err}
	}

	records := make([]model.ThoughtRecord, 0, len(doc.Thoughts))
	for _, t := range doc.Thoughts {
		record, err := t.toRecord()
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	h.Replace(records)
	return nil
}

// toRecord converts an imported thought object, checking required
// fields and applying documented defaults for optional ones.
func (t importedThought) toRecord() (model.ThoughtRecord, error) {
	switch {
	case t.Content == nil:
		return model.ThoughtRecord{}, &ParseError{Field: "content"}
	case t.Number == nil:
		return model.ThoughtRecord{}, &ParseError{Field: "thought_number"}
	case t.TotalExpected == nil:
		return model.ThoughtRecord{}, &ParseError{Field: "total_thoughts"}
	case t.ContinuationExpected == nil:
		return model.ThoughtRecord{}, &ParseError{Field: "next_thought_needed"}
	case t.Stage == nil:
		return model.ThoughtRecord{}, &ParseError{Field: "stage"}
	}

	stage, err := model.ParseStage(*t.Stage)
	if err != nil {
		return model.ThoughtRecord{}, &ParseError{Field: "stage", Cause: err}
	}

	record := model.ThoughtRecord{
		ID:                    t.ID,
		Content:               *t.Content,
		Number:                *t.Number,
		TotalExpected:         *t.TotalExpected,
		ContinuationExpected:  *t.ContinuationExpected,
		Stage:                 stage,
		Tags:                  t.Tags,
		Axioms:                t.Axioms,
		AssumptionsChallenged: t.AssumptionsChallenged,
		Critique:              t.Critique,
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Tags == nil {
		record.Tags = []string{}
	}
	if record.Axioms == nil {
		record.Axioms = []string{}
	}
	if record.AssumptionsChallenged == nil {
		record.AssumptionsChallenged = []string{}
	}
	if t.CreatedAt != nil {
		record.CreatedAt = *t.CreatedAt
	} else {
		record.CreatedAt = time.Now()
	}

	if err := record.Validate(); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return model.ThoughtRecord{}, &ParseError{Field: verr.Field, Cause: err}
		}
		return model.ThoughtRecord{}, &ParseError{Cause: err}
	}
	return record, nil
}
