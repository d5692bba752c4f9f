// Package model provides the domain types for sequential thinking sessions.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Stage represents a phase of the reasoning process.
// The ordering reflects canonical progression and is used for
// summary grouping and display, not for enforcing sequence order.
type Stage int

const (
	// StageProblemDefinition is the initial framing of the problem.
	StageProblemDefinition Stage = iota
	// StageResearch is information gathering.
	StageResearch
	// StageAnalysis is examination of gathered information.
	StageAnalysis
	// StageSynthesis is combining insights into a coherent view.
	StageSynthesis
	// StageConclusion is the final determination.
	StageConclusion
)

// stageLabels holds the canonical labels in ordinal order.
var stageLabels = [...]string{
	"Problem Definition",
	"Research",
	"Analysis",
	"Synthesis",
	"Conclusion",
}

// Stages returns all stages in canonical order.
func Stages() []Stage {
	return []Stage{
		StageProblemDefinition,
		StageResearch,
		StageAnalysis,
		StageSynthesis,
		StageConclusion,
	}
}

// String returns the canonical label for the stage.
func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageLabels[s]
}

// Ordinal returns the stage position in canonical order (0..4).
func (s Stage) Ordinal() int {
	return int(s)
}

// Valid reports whether the stage is a member of the taxonomy.
func (s Stage) Valid() bool {
	return s >= StageProblemDefinition && s <= StageConclusion
}

// ParseStage parses a human-readable stage label, case-insensitively.
// Surrounding whitespace is ignored; no fuzzy matching beyond that.
func ParseStage(label string) (Stage, error) {
	trimmed := strings.TrimSpace(label)
	for i, canonical := range stageLabels {
		if strings.EqualFold(trimmed, canonical) {
			return Stage(i), nil
		}
	}
	return 0, &InvalidStageError{Label: label}
}

// MarshalJSON encodes the stage as its canonical label.
func (s Stage) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, &InvalidStageError{Label: s.String()}
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a stage from its canonical label.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseStage(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// InvalidStageError reports a label that does not match any canonical stage.
type InvalidStageError struct {
	Label string
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("invalid stage: %q (expected one of: %s)", e.Label, strings.Join(stageLabels[:], ", "))
}
