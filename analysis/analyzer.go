// Package analysis computes derived analysis over thought histories.
//
// Everything here is a pure function of a record and a history
// snapshot: no I/O, no stored state. The protocol layer decides what
// to do with the results; in particular IsFinal is the only terminal
// signal emitted and it never stops anything by itself.
package analysis

import (
	"math"
	"time"

	"github.com/richinex/seqthink/model"
)

// Advisory warning identifiers. Warnings never block storage.
const (
	WarnTotalRevisedUpward          = "total-thoughts-revised-upward"
	WarnConclusionWithoutChallenges = "conclusion-without-challenged-assumptions"
	WarnReasoningWithoutAxioms      = "reasoning-without-stated-axioms"
)

// relatedThoughtLimit caps RelatedThoughts so callers see
// recency-weighted context rather than an unbounded list.
const relatedThoughtLimit = 5

// AnalysisResult is the per-thought analysis returned to the caller.
type AnalysisResult struct {
	ThoughtID        string           `json:"thoughtId"`
	Number           int              `json:"thoughtNumber"`
	TotalExpected    int              `json:"totalThoughts"`
	ProgressPercent  int              `json:"progressPercent"`
	StageLabel       string           `json:"stage"`
	RelatedThoughts  []RelatedThought `json:"relatedThoughts"`
	IsFinal          bool             `json:"isFinal"`
	Warnings         []string         `json:"warnings"`
	CriticalResponse string           `json:"criticalResponse,omitempty"`
}

// RelatedThought is a compact reference to a prior history entry.
type RelatedThought struct {
	ID      string   `json:"id"`
	Number  int      `json:"thoughtNumber"`
	Stage   string   `json:"stage"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

// SummaryResult is the whole-session summary.
type SummaryResult struct {
	TotalThoughts     int             `json:"totalThoughts"`
	StageDistribution map[string]int  `json:"stageDistribution"`
	TagFrequency      map[string]int  `json:"tagFrequency"`
	Timeline          []TimelineEntry `json:"timeline"`
	Conclusion        string          `json:"conclusion,omitempty"`
}

// TimelineEntry is one point in the session timeline, for caller-side charting.
type TimelineEntry struct {
	Number    int       `json:"thoughtNumber"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"createdAt"`
}

// Analyze produces the per-thought analysis for record against the full
// history snapshot. The record itself is excluded from related-thought
// detection by ID, so the snapshot may or may not already contain it.
func Analyze(record model.ThoughtRecord, history []model.ThoughtRecord) AnalysisResult {
	return AnalysisResult{
		ThoughtID:        record.ID,
		Number:           record.Number,
		TotalExpected:    record.TotalExpected,
		ProgressPercent:  progressPercent(record),
		StageLabel:       record.Stage.String(),
		RelatedThoughts:  relatedThoughts(record, history),
		IsFinal:          !record.ContinuationExpected && record.Stage == model.StageConclusion,
		Warnings:         warnings(record),
		CriticalResponse: record.Critique,
	}
}

// progressPercent never exceeds 100 even when the thought number
// overshoots the estimated total, and never divides by a total smaller
// than the current position.
func progressPercent(record model.ThoughtRecord) int {
	total := record.TotalExpected
	if record.Number > total {
		total = record.Number
	}
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(record.Number) / float64(total)))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// relatedThoughts returns prior entries sharing at least one tag with
// record, or sharing its stage when record has no tags. Matches are
// most-recent-first and capped at relatedThoughtLimit.
func relatedThoughts(record model.ThoughtRecord, history []model.ThoughtRecord) []RelatedThought {
	tagSet := make(map[string]bool, len(record.Tags))
	for _, tag := range record.Tags {
		tagSet[tag] = true
	}
	byTag := len(tagSet) > 0

	related := []RelatedThought{}
	for i := len(history) - 1; i >= 0 && len(related) < relatedThoughtLimit; i-- {
		prior := history[i]
		if prior.ID == record.ID {
			continue
		}

		matched := false
		if byTag {
			for _, tag := range prior.Tags {
				if tagSet[tag] {
					matched = true
					break
				}
			}
		} else {
			matched = prior.Stage == record.Stage
		}
		if !matched {
			continue
		}

		related = append(related, RelatedThought{
			ID:      prior.ID,
			Number:  prior.Number,
			Stage:   prior.Stage.String(),
			Tags:    prior.Tags,
			Content: prior.Content,
		})
	}
	return related
}

func warnings(record model.ThoughtRecord) []string {
	warns := []string{}
	if record.TotalExpected < record.Number {
		warns = append(warns, WarnTotalRevisedUpward)
	}
	if record.Stage == model.StageConclusion && len(record.AssumptionsChallenged) == 0 {
		warns = append(warns, WarnConclusionWithoutChallenges)
	}
	if len(record.Axioms) == 0 &&
		(record.Stage == model.StageAnalysis || record.Stage == model.StageSynthesis) {
		warns = append(warns, WarnReasoningWithoutAxioms)
	}
	return warns
}

// Summarize aggregates the whole history. An empty history summarizes
// to zero counts and no conclusion; "no thoughts yet" is a valid state
// to query, never an error.
func Summarize(history []model.ThoughtRecord) SummaryResult {
	distribution := make(map[string]int, 5)
	for _, stage := range model.Stages() {
		distribution[stage.String()] = 0
	}

	tagFrequency := map[string]int{}
	timeline := make([]TimelineEntry, 0, len(history))
	conclusion := ""

	for _, r := range history {
		distribution[r.Stage.String()]++
		for _, tag := range r.Tags {
			tagFrequency[tag]++
		}
		timeline = append(timeline, TimelineEntry{
			Number:    r.Number,
			Stage:     r.Stage.String(),
			CreatedAt: r.CreatedAt,
		})
		if r.Stage == model.StageConclusion {
			conclusion = r.Content
		}
	}

	return SummaryResult{
		TotalThoughts:     len(history),
		StageDistribution: distribution,
		TagFrequency:      tagFrequency,
		Timeline:          timeline,
		Conclusion:        conclusion,
	}
}
