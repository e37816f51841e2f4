// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import "github.com/passagehealth/passage/schema"

// RecordStore defines the append-only persistence of assessment records.
// Implementations serialize their own writes; records are never updated or deleted.
type RecordStore interface {
	// Append persists one record.
	Append(rec schema.AssessmentRecord) error

	// History returns every record of one patient, oldest first.
	History(patientID string) ([]schema.AssessmentRecord, error)

	// All returns every record, oldest first.
	All() ([]schema.AssessmentRecord, error)

	// Summary aggregates every record into the population view.
	Summary() (schema.PopulationSummary, error)

	// Status returns status information about the store.
	Status() (schema.StoreStatus, error)

	// Close closes the underlying connection or file.
	Close() error
}
