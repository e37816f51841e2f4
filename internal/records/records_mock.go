package records

import (
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
	"github.com/stretchr/testify/mock"
)

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

var _ contract.RecordStore = &MockRecordStore{} // Compile-time check

// Append implements the RecordStore interface.
func (m *MockRecordStore) Append(rec schema.AssessmentRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// History implements the RecordStore interface.
func (m *MockRecordStore) History(patientID string) ([]schema.AssessmentRecord, error) {
	args := m.Called(patientID)
	recs, _ := args.Get(0).([]schema.AssessmentRecord)
	return recs, args.Error(1)
}

// All implements the RecordStore interface.
func (m *MockRecordStore) All() ([]schema.AssessmentRecord, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]schema.AssessmentRecord)
	return recs, args.Error(1)
}

// Summary implements the RecordStore interface.
func (m *MockRecordStore) Summary() (schema.PopulationSummary, error) {
	args := m.Called()
	return args.Get(0).(schema.PopulationSummary), args.Error(1)
}

// Status implements the RecordStore interface.
func (m *MockRecordStore) Status() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the RecordStore interface.
func (m *MockRecordStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
