// Package storage provides thought history storage.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Allows swapping between memory and SQLite-archived histories
// - Session file format encapsulated in this package

package storage

import (
	"github.com/richinex/seqthink/model"
)

// History defines the interface for the ordered thought ledger.
// The ledger preserves insertion order verbatim: repeated or
// out-of-order thought numbers are permitted, since the caller is
// the source of truth for numbering semantics.
type History interface {
	// Append adds a record to the end of the sequence.
	Append(record model.ThoughtRecord)

	// All returns a snapshot of the sequence in insertion order.
	// The snapshot does not observe records appended after the call.
	All() []model.ThoughtRecord

	// Replace swaps the entire sequence for the given records.
	Replace(records []model.ThoughtRecord)

	// Clear empties the sequence irreversibly.
	Clear()

	// Len returns the number of records.
	Len() int
}
