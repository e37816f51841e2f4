package records

import (
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
)

// NoneStore discards records. It backs the "none" backend when persistence is disabled.
type NoneStore struct{}

var _ contract.RecordStore = NoneStore{} // Compile-time check

// Append discards the record.
func (NoneStore) Append(schema.AssessmentRecord) error { return nil }

// History always returns no records.
func (NoneStore) History(string) ([]schema.AssessmentRecord, error) { return nil, nil }

// All always returns no records.
func (NoneStore) All() ([]schema.AssessmentRecord, error) { return nil, nil }

// Summary returns an empty summary.
func (NoneStore) Summary() (schema.PopulationSummary, error) {
	return schema.SummarizeRecords(nil), nil
}

// Status reports the disabled backend.
func (NoneStore) Status() (schema.StoreStatus, error) {
	return schema.StoreStatus{Backend: string(schema.NoneBackend)}, nil
}

// Close does nothing.
func (NoneStore) Close() error { return nil }
