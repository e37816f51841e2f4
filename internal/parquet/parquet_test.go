package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/passagehealth/passage/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleRecords() []schema.AssessmentRecord {
	now := time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC)
	return []schema.AssessmentRecord{
		{
			RecordID:   "rec-1",
			PatientID:  "P001",
			OperatorID: "dr.kim",
			AssessedAt: now.Add(-24 * time.Hour),
			Observation: schema.PatientObservation{
				Age:         ptr(78.0),
				Comorbidity: ptr(schema.ComorbidityMultiple),
				GaitSpeed:   ptr(0.7),
				LivingAlone: ptr(true),
				FallHistory: ptr(false),
			},
			Policy:           "frailty-logistic",
			PolicyVersion:    1,
			ClinicalScore:    5,
			FunctionalScore:  2,
			SocialScore:      1,
			TotalScore:       8,
			Probability:      ptr(0.9759),
			RiskPercent:      97.59,
			Level:            schema.HighLevel,
			Confidence:       0.84,
			ConfidenceMethod: schema.ScoreConfidence,
			Explanations:     []string{"Advanced age", "Multiple comorbidities"},
		},
		{
			RecordID:   "rec-2",
			PatientID:  "P002",
			OperatorID: "dr.kim",
			AssessedAt: now,
			Observation: schema.PatientObservation{
				QualityOfLife: ptr(82.0),
			},
			Policy:           "healthspan-index",
			PolicyVersion:    1,
			CompositeIndex:   ptr(82.0),
			RiskPercent:      18,
			Level:            schema.OptimalLevel,
			Confidence:       0.11,
			ConfidenceMethod: schema.CompletenessConfidence,
			Explanations:     nil,
		},
	}
}

func TestAssessmentRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(AssessmentRow))
	require.NotNil(t, s)

	expectedColumns := []string{
		"record_id",
		"patient_id",
		"operator_id",
		"assessed_at",
		"policy",
		"policy_version",
		"total_score",
		"probability",
		"composite_index",
		"risk_percent",
		"level",
		"confidence",
		"confidence_method",
		"explanations",
	}
	for _, spec := range schema.FieldSpecs {
		expectedColumns = append(expectedColumns, string(spec.Name))
	}

	for _, colName := range expectedColumns {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestWriteAssessmentsParquet_RoundTrip(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "assessments.parquet")
	records := sampleRecords()

	err := WriteAssessmentsParquet(ConvertAssessmentRecords(records), outputPath)
	require.NoError(t, err)

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	rows, err := ReadAssessmentsParquet(outputPath)
	require.NoError(t, err)
	require.Len(t, rows, len(records))

	for i, row := range rows {
		got := row.Record()
		want := records[i]
		assert.Equal(t, want.RecordID, got.RecordID)
		assert.Equal(t, want.PatientID, got.PatientID)
		assert.Equal(t, want.Policy, got.Policy)
		assert.Equal(t, want.PolicyVersion, got.PolicyVersion)
		assert.Equal(t, want.Level, got.Level)
		assert.InDelta(t, want.RiskPercent, got.RiskPercent, 1e-9)
		assert.WithinDuration(t, want.AssessedAt, got.AssessedAt, time.Nanosecond)
		assert.Equal(t, want.Observation.Present(), got.Observation.Present())
		assert.Equal(t, len(want.Explanations), len(got.Explanations))
	}
}

func TestNullableFieldHandling(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "nullable.parquet")
	records := sampleRecords()

	require.NoError(t, WriteAssessmentsParquet(ConvertAssessmentRecords(records), outputPath))
	rows, err := ReadAssessmentsParquet(outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Logistic record carries a probability and no composite index
	require.NotNil(t, rows[0].Probability)
	assert.InDelta(t, 0.9759, *rows[0].Probability, 1e-9)
	assert.Nil(t, rows[0].CompositeIndex)
	require.NotNil(t, rows[0].LivingAlone)
	assert.True(t, *rows[0].LivingAlone)
	require.NotNil(t, rows[0].FallHistory)
	assert.False(t, *rows[0].FallHistory)

	// Composite record is the reverse
	assert.Nil(t, rows[1].Probability)
	require.NotNil(t, rows[1].CompositeIndex)
	assert.Nil(t, rows[1].Age)
	assert.Nil(t, rows[1].Sex)
}

func TestWriteAssessmentsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	err := WriteAssessmentsParquet([]AssessmentRow{}, outputPath)
	require.NoError(t, err)

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")

	rows, err := ReadAssessmentsParquet(outputPath)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteAssessmentsParquet_InvalidPath(t *testing.T) {
	err := WriteAssessmentsParquet(ConvertAssessmentRecords(sampleRecords()), "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}

func TestReadAssessmentsParquet_MissingFile(t *testing.T) {
	_, err := ReadAssessmentsParquet(filepath.Join(t.TempDir(), "missing.parquet"))
	require.Error(t, err)
}
