package schema

import (
	"sort"
	"time"
)

// AssessmentRecord is the flat, immutable row persisted for every saved assessment.
type AssessmentRecord struct {
	RecordID    string             `json:"record_id"`
	PatientID   string             `json:"patient_id"`
	OperatorID  string             `json:"operator_id"`
	AssessedAt  time.Time          `json:"assessed_at"`
	Observation PatientObservation `json:"observation"`

	Policy           string           `json:"policy"`
	PolicyVersion    int              `json:"policy_version"`
	ClinicalScore    float64          `json:"clinical_score"`
	FunctionalScore  float64          `json:"functional_score"`
	SocialScore      float64          `json:"social_score"`
	TotalScore       float64          `json:"total_score"`
	Probability      *float64         `json:"probability,omitempty"`
	CompositeIndex   *float64         `json:"composite_index,omitempty"`
	RiskPercent      float64          `json:"risk_percent"`
	Level            Level            `json:"level"`
	Confidence       float64          `json:"confidence"`
	ConfidenceMethod ConfidenceMethod `json:"confidence_method"`
	Explanations     []string         `json:"explanations"`
}

// NewAssessmentRecord flattens an assessment into a record. The caller supplies the identity fields.
func NewAssessmentRecord(recordID, patientID, operatorID string, at time.Time, obs PatientObservation, a RiskAssessment) AssessmentRecord {
	return AssessmentRecord{
		RecordID:         recordID,
		PatientID:        patientID,
		OperatorID:       operatorID,
		AssessedAt:       at.UTC(),
		Observation:      obs,
		Policy:           a.Policy,
		PolicyVersion:    a.PolicyVersion,
		ClinicalScore:    a.DomainScore(ClinicalDomain),
		FunctionalScore:  a.DomainScore(FunctionalDomain),
		SocialScore:      a.DomainScore(SocialDomain),
		TotalScore:       a.TotalScore,
		Probability:      a.Probability,
		CompositeIndex:   a.CompositeIndex,
		RiskPercent:      a.RiskPercent,
		Level:            a.Level,
		Confidence:       a.Confidence,
		ConfidenceMethod: a.ConfidenceMethod,
		Explanations:     a.Explanations,
	}
}

// SortRecords orders records by assessment time, oldest first. Ties keep their input order.
func SortRecords(records []AssessmentRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AssessedAt.Before(records[j].AssessedAt)
	})
}

// PatientHistory is the registry view of one patient.
type PatientHistory struct {
	PatientID string             `json:"patient_id"`
	Records   []AssessmentRecord `json:"records"`
}

// NewPatientHistory builds a history with records sorted by time.
func NewPatientHistory(patientID string, records []AssessmentRecord) PatientHistory {
	sorted := append([]AssessmentRecord(nil), records...)
	SortRecords(sorted)
	return PatientHistory{PatientID: patientID, Records: sorted}
}

// Trend is the change in risk percent between the first and the last record.
func (h PatientHistory) Trend() float64 {
	if len(h.Records) < 2 {
		return 0
	}
	return h.Records[len(h.Records)-1].RiskPercent - h.Records[0].RiskPercent
}

// Latest returns the most recent record, if any.
func (h PatientHistory) Latest() (AssessmentRecord, bool) {
	if len(h.Records) == 0 {
		return AssessmentRecord{}, false
	}
	return h.Records[len(h.Records)-1], true
}

// PopulationSummary aggregates every stored record.
type PopulationSummary struct {
	TotalRecords    int           `json:"total_records"`
	UniquePatients  int           `json:"unique_patients"`
	MeanRiskPercent float64       `json:"mean_risk_percent"`
	HighRiskShare   float64       `json:"high_risk_share"`
	LevelCounts     map[Level]int `json:"level_counts"`
}

// SummarizeRecords computes the population summary over every record.
// Mean risk and the high-risk share are taken across records, not across patients.
func SummarizeRecords(records []AssessmentRecord) PopulationSummary {
	summary := PopulationSummary{
		TotalRecords: len(records),
		LevelCounts:  map[Level]int{},
	}
	if len(records) == 0 {
		return summary
	}

	patients := make(map[string]struct{})
	var riskSum float64
	for _, r := range records {
		patients[r.PatientID] = struct{}{}
		riskSum += r.RiskPercent
		summary.LevelCounts[r.Level]++
	}
	summary.UniquePatients = len(patients)
	summary.MeanRiskPercent = riskSum / float64(len(records))
	summary.HighRiskShare = float64(summary.LevelCounts[HighLevel]) / float64(len(records)) * 100
	return summary
}

// StoreStatus represents the status of the record store.
type StoreStatus struct {
	Backend          string    `json:"backend"`
	Connected        bool      `json:"connected"`
	TotalRecords     int       `json:"total_records"`
	UniquePatients   int       `json:"unique_patients"`
	LastRecordTime   time.Time `json:"last_record_time"`
	OldestRecordTime time.Time `json:"oldest_record_time"`
}
