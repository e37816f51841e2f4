package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
)

// CSVStore appends records to one flat CSV file with a header row.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

var _ contract.RecordStore = &CSVStore{} // Compile-time check

// NewCSVStore opens the CSV file, writing the header when the file is new or empty.
// An existing file must carry the current header.
func NewCSVStore(path string) (*CSVStore, error) {
	if path == "" {
		path = contract.GetRecordsCSVFilePath()
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0):
		if err := writeCSVHeader(path); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat records file %q: %w", path, err)
	default:
		header, err := readCSVHeader(path)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(header, ColumnNames()) {
			return nil, fmt.Errorf("records file %q has an unexpected header. Run 'passage records export' with the old version or move the file aside", path)
		}
	}

	return &CSVStore{path: path}, nil
}

func writeCSVHeader(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create records file %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(ColumnNames()); err != nil {
		return fmt.Errorf("failed to write records header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func readCSVHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read records header: %w", err)
	}
	return header, nil
}

// Append writes one row to the end of the file.
func (s *CSVStore) Append(rec schema.AssessmentRecord) error {
	row, err := recordStrings(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open records file %q: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to append assessment record %s: %w", rec.RecordID, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush records file: %w", err)
	}
	return nil
}

// History returns every record of one patient, oldest first.
func (s *CSVStore) History(patientID string) ([]schema.AssessmentRecord, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	var out []schema.AssessmentRecord
	for _, rec := range all {
		if rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// All reads every row, oldest first.
func (s *CSVStore) All() ([]schema.AssessmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file %q: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read records header: %w", err)
	}

	var results []schema.AssessmentRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read records file at line %d: %w", line, err)
		}
		rec, err := parseRecordStrings(header, row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode records file at line %d: %w", line, err)
		}
		results = append(results, rec)
	}

	schema.SortRecords(results)
	return results, nil
}

// Summary aggregates every record in the file.
func (s *CSVStore) Summary() (schema.PopulationSummary, error) {
	all, err := s.All()
	if err != nil {
		return schema.PopulationSummary{}, err
	}
	return schema.SummarizeRecords(all), nil
}

// Status returns status information about the file.
func (s *CSVStore) Status() (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: string(schema.CSVBackend), Connected: true}
	all, err := s.All()
	if err != nil {
		return status, err
	}
	summary := schema.SummarizeRecords(all)
	status.TotalRecords = summary.TotalRecords
	status.UniquePatients = summary.UniquePatients
	if len(all) > 0 {
		status.OldestRecordTime = all[0].AssessedAt
		status.LastRecordTime = all[len(all)-1].AssessedAt
	}
	return status, nil
}

// Close is a no-op; every operation opens and closes the file.
func (s *CSVStore) Close() error {
	return nil
}
