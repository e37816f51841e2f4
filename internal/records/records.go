// Package records persists assessment records in SQL databases or a flat CSV file.
package records

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
)

// ErrStoreDisabled is returned when saving to the "none" backend.
var ErrStoreDisabled = errors.New("record store is disabled (store-backend none)")

// NewRecordStore creates the store for the configured backend.
// An empty connection string selects the default file under the home directory.
func NewRecordStore(backend schema.DatabaseBackend, connStr string) (contract.RecordStore, error) {
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLStore(backend, connStr)
	case schema.CSVBackend:
		return NewCSVStore(connStr)
	case schema.NoneBackend:
		return NoneStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// NewRecordID returns a fresh random record identifier.
func NewRecordID() string {
	return uuid.NewString()
}

// Save stamps an assessment with a new record ID and the current time, then appends it.
func Save(store contract.RecordStore, patientID, operatorID string, obs schema.PatientObservation, a schema.RiskAssessment) (schema.AssessmentRecord, error) {
	if patientID == "" {
		return schema.AssessmentRecord{}, fmt.Errorf("patient ID is required to save an assessment")
	}
	if _, ok := store.(NoneStore); ok {
		return schema.AssessmentRecord{}, ErrStoreDisabled
	}
	rec := schema.NewAssessmentRecord(NewRecordID(), patientID, operatorID, time.Now(), obs, a)
	if err := store.Append(rec); err != nil {
		return rec, err
	}
	return rec, nil
}
