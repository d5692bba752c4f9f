package model

import (
	"errors"
	"reflect"
	"testing"
)

func validFields() RecordFields {
	return RecordFields{
		Content:       "Define the problem space",
		Number:        1,
		TotalExpected: 5,
		Stage:         StageProblemDefinition,
	}
}

func TestNewThoughtRecordDefaults(t *testing.T) {
	r := NewThoughtRecord(validFields())

	if r.ID == "" {
		t.Error("expected generated ID")
	}
	if r.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if r.Tags == nil || len(r.Tags) != 0 {
		t.Errorf("expected empty tags, got %#v", r.Tags)
	}
	if r.Axioms == nil || len(r.Axioms) != 0 {
		t.Errorf("expected empty axioms, got %#v", r.Axioms)
	}
	if r.AssumptionsChallenged == nil || len(r.AssumptionsChallenged) != 0 {
		t.Errorf("expected empty assumptions, got %#v", r.AssumptionsChallenged)
	}
	if r.Critique != "" {
		t.Errorf("expected no critique, got %q", r.Critique)
	}
}

func TestNewThoughtRecordDedupesTags(t *testing.T) {
	fields := validFields()
	fields.Tags = []string{"scope", "risk", "scope", "risk", "cost"}
	r := NewThoughtRecord(fields)

	want := []string{"scope", "risk", "cost"}
	if !reflect.DeepEqual(r.Tags, want) {
		t.Errorf("expected %v, got %v", want, r.Tags)
	}
}

func TestValidateOK(t *testing.T) {
	r := NewThoughtRecord(validFields())
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFieldOrder(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ThoughtRecord)
		wantField string
	}{
		{"empty content", func(r *ThoughtRecord) { r.Content = "" }, "content"},
		{"blank content", func(r *ThoughtRecord) { r.Content = "   \t\n" }, "content"},
		{"zero number", func(r *ThoughtRecord) { r.Number = 0 }, "thought_number"},
		{"negative number", func(r *ThoughtRecord) { r.Number = -3 }, "thought_number"},
		{"zero total", func(r *ThoughtRecord) { r.TotalExpected = 0 }, "total_thoughts"},
		{"bad stage", func(r *ThoughtRecord) { r.Stage = Stage(9) }, "stage"},
		// Content is checked first even when later fields are also bad.
		{"content before number", func(r *ThoughtRecord) { r.Content = ""; r.Number = 0 }, "content"},
		{"number before total", func(r *ThoughtRecord) { r.Number = 0; r.TotalExpected = 0 }, "thought_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewThoughtRecord(validFields())
			tt.mutate(&r)
			err := r.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestValidateTotalBelowNumberIsAllowed(t *testing.T) {
	// Sequences revise their length estimate upward as they proceed;
	// a total below the current position is a warning, not a failure.
	fields := validFields()
	fields.Number = 7
	fields.TotalExpected = 5
	r := NewThoughtRecord(fields)
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAttachCritique(t *testing.T) {
	r := NewThoughtRecord(validFields())
	r.AttachCritique("consider the base rate")
	if r.Critique != "consider the base rate" {
		t.Errorf("unexpected critique: %q", r.Critique)
	}
}
