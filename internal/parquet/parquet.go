// Package parquet provides data structures and functions for exporting assessment
// records to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/passagehealth/passage/schema"
)

// AssessmentRow represents a single saved assessment.
// This struct maps to the passage_assessments database table.
type AssessmentRow struct {
	// RecordID is the unique identifier of the record
	RecordID string `parquet:"record_id,snappy"`

	// PatientID identifies the assessed patient
	PatientID string `parquet:"patient_id,snappy"`

	// OperatorID identifies who ran the assessment
	OperatorID string `parquet:"operator_id,snappy"`

	// AssessedAt is when the assessment was saved (stored as TIMESTAMP with nanosecond precision)
	AssessedAt time.Time `parquet:"assessed_at,snappy"`

	// Observation inputs; a nil value was not observed
	Age           *float64 `parquet:"age,optional,snappy"`
	Sex           *string  `parquet:"sex,optional,snappy"`
	GaitSpeed     *float64 `parquet:"gait_speed,optional,snappy"`
	GripStrength  *float64 `parquet:"grip_strength,optional,snappy"`
	ADLScore      *float64 `parquet:"adl_score,optional,snappy"`
	TUGSeconds    *float64 `parquet:"tug_seconds,optional,snappy"`
	FrailtyCount  *float64 `parquet:"frailty_count,optional,snappy"`
	Comorbidity   *string  `parquet:"comorbidity,optional,snappy"`
	DiseaseCount  *float64 `parquet:"disease_count,optional,snappy"`
	BMI           *float64 `parquet:"bmi,optional,snappy"`
	SystolicBP    *float64 `parquet:"systolic_bp,optional,snappy"`
	HbA1c         *float64 `parquet:"hba1c,optional,snappy"`
	LDL           *float64 `parquet:"ldl,optional,snappy"`
	EGFR          *float64 `parquet:"egfr,optional,snappy"`
	MoCA          *float64 `parquet:"moca,optional,snappy"`
	PHQ9          *float64 `parquet:"phq9,optional,snappy"`
	GAD7          *float64 `parquet:"gad7,optional,snappy"`
	AbnormalLiver *bool    `parquet:"abnormal_liver,optional,snappy"`
	LivingAlone   *bool    `parquet:"living_alone,optional,snappy"`
	FallHistory   *bool    `parquet:"fall_history,optional,snappy"`
	Exercise      *string  `parquet:"exercise,optional,snappy"`
	Smoking       *bool    `parquet:"smoking,optional,snappy"`
	QualityOfLife *float64 `parquet:"quality_of_life,optional,snappy"`
	RedFlags      *float64 `parquet:"red_flags,optional,snappy"`

	// Policy is the name of the policy that produced the assessment
	Policy string `parquet:"policy,snappy"`

	// PolicyVersion is the version of that policy
	PolicyVersion int32 `parquet:"policy_version,snappy"`

	ClinicalScore   float64 `parquet:"clinical_score,snappy"`
	FunctionalScore float64 `parquet:"functional_score,snappy"`
	SocialScore     float64 `parquet:"social_score,snappy"`
	TotalScore      float64 `parquet:"total_score,snappy"`

	// Probability is set by logistic policies only
	Probability *float64 `parquet:"probability,optional,snappy"`

	// CompositeIndex is set by composite policies only
	CompositeIndex *float64 `parquet:"composite_index,optional,snappy"`

	RiskPercent      float64 `parquet:"risk_percent,snappy"`
	Level            string  `parquet:"level,snappy"`
	Confidence       float64 `parquet:"confidence,snappy"`
	ConfidenceMethod string  `parquet:"confidence_method,snappy"`

	// Explanations are stored as a repeated column in emission order
	Explanations []string `parquet:"explanations,snappy"`
}

// WriteAssessmentsParquet writes a slice of AssessmentRow structs to a Parquet file.
func WriteAssessmentsParquet(data []AssessmentRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the AssessmentRow struct tags
	writer := parquet.NewGenericWriter[AssessmentRow](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return nil
}

// ReadAssessmentsParquet reads every row of a Parquet file written by WriteAssessmentsParquet.
func ReadAssessmentsParquet(inputPath string) ([]AssessmentRow, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[AssessmentRow](file)
	defer func() { _ = reader.Close() }()

	rows := make([]AssessmentRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// ConvertAssessmentRecords converts schema.AssessmentRecord to AssessmentRow for Parquet export.
func ConvertAssessmentRecords(records []schema.AssessmentRecord) []AssessmentRow {
	result := make([]AssessmentRow, len(records))
	for i, record := range records {
		obs := record.Observation
		result[i] = AssessmentRow{
			RecordID:         record.RecordID,
			PatientID:        record.PatientID,
			OperatorID:       record.OperatorID,
			AssessedAt:       record.AssessedAt,
			Age:              obs.Age,
			Sex:              obs.Sex,
			GaitSpeed:        obs.GaitSpeed,
			GripStrength:     obs.GripStrength,
			ADLScore:         obs.ADLScore,
			TUGSeconds:       obs.TUGSeconds,
			FrailtyCount:     obs.FrailtyCount,
			Comorbidity:      obs.Comorbidity,
			DiseaseCount:     obs.DiseaseCount,
			BMI:              obs.BMI,
			SystolicBP:       obs.SystolicBP,
			HbA1c:            obs.HbA1c,
			LDL:              obs.LDL,
			EGFR:             obs.EGFR,
			MoCA:             obs.MoCA,
			PHQ9:             obs.PHQ9,
			GAD7:             obs.GAD7,
			AbnormalLiver:    obs.AbnormalLiver,
			LivingAlone:      obs.LivingAlone,
			FallHistory:      obs.FallHistory,
			Exercise:         obs.Exercise,
			Smoking:          obs.Smoking,
			QualityOfLife:    obs.QualityOfLife,
			RedFlags:         obs.RedFlags,
			Policy:           record.Policy,
			PolicyVersion:    int32(record.PolicyVersion),
			ClinicalScore:    record.ClinicalScore,
			FunctionalScore:  record.FunctionalScore,
			SocialScore:      record.SocialScore,
			TotalScore:       record.TotalScore,
			Probability:      record.Probability,
			CompositeIndex:   record.CompositeIndex,
			RiskPercent:      record.RiskPercent,
			Level:            string(record.Level),
			Confidence:       record.Confidence,
			ConfidenceMethod: string(record.ConfidenceMethod),
			Explanations:     record.Explanations,
		}
	}
	return result
}

// Record converts a row back into an assessment record.
func (r AssessmentRow) Record() schema.AssessmentRecord {
	return schema.AssessmentRecord{
		RecordID:   r.RecordID,
		PatientID:  r.PatientID,
		OperatorID: r.OperatorID,
		AssessedAt: r.AssessedAt.UTC(),
		Observation: schema.PatientObservation{
			Age:           r.Age,
			Sex:           r.Sex,
			GaitSpeed:     r.GaitSpeed,
			GripStrength:  r.GripStrength,
			ADLScore:      r.ADLScore,
			TUGSeconds:    r.TUGSeconds,
			FrailtyCount:  r.FrailtyCount,
			Comorbidity:   r.Comorbidity,
			DiseaseCount:  r.DiseaseCount,
			BMI:           r.BMI,
			SystolicBP:    r.SystolicBP,
			HbA1c:         r.HbA1c,
			LDL:           r.LDL,
			EGFR:          r.EGFR,
			MoCA:          r.MoCA,
			PHQ9:          r.PHQ9,
			GAD7:          r.GAD7,
			AbnormalLiver: r.AbnormalLiver,
			LivingAlone:   r.LivingAlone,
			FallHistory:   r.FallHistory,
			Exercise:      r.Exercise,
			Smoking:       r.Smoking,
			QualityOfLife: r.QualityOfLife,
			RedFlags:      r.RedFlags,
		},
		Policy:           r.Policy,
		PolicyVersion:    int(r.PolicyVersion),
		ClinicalScore:    r.ClinicalScore,
		FunctionalScore:  r.FunctionalScore,
		SocialScore:      r.SocialScore,
		TotalScore:       r.TotalScore,
		Probability:      r.Probability,
		CompositeIndex:   r.CompositeIndex,
		RiskPercent:      r.RiskPercent,
		Level:            schema.Level(r.Level),
		Confidence:       r.Confidence,
		ConfidenceMethod: schema.ConfidenceMethod(r.ConfidenceMethod),
		Explanations:     r.Explanations,
	}
}
