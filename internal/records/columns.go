package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/passagehealth/passage/schema"
)

// columnKind describes how a column is stored.
type columnKind int

const (
	keyColumn columnKind = iota
	textColumn
	longTextColumn
	timeColumn
	intColumn
	realColumn
	boolColumn
)

// column is one flat field of an assessment record.
type column struct {
	name     string
	kind     columnKind
	nullable bool
}

// identityColumns come first in every row.
var identityColumns = []column{
	{name: "record_id", kind: keyColumn},
	{name: "patient_id", kind: keyColumn},
	{name: "operator_id", kind: textColumn},
	{name: "assessed_at", kind: timeColumn},
}

// outcomeColumns come after the observation fields.
var outcomeColumns = []column{
	{name: "policy", kind: textColumn},
	{name: "policy_version", kind: intColumn},
	{name: "clinical_score", kind: realColumn},
	{name: "functional_score", kind: realColumn},
	{name: "social_score", kind: realColumn},
	{name: "total_score", kind: realColumn},
	{name: "probability", kind: realColumn, nullable: true},
	{name: "composite_index", kind: realColumn, nullable: true},
	{name: "risk_percent", kind: realColumn},
	{name: "level", kind: textColumn},
	{name: "confidence", kind: realColumn},
	{name: "confidence_method", kind: textColumn},
	{name: "explanations", kind: longTextColumn},
}

// recordColumns is the full flat layout: identity, every observation field, then outcome.
var recordColumns = func() []column {
	cols := append([]column(nil), identityColumns...)
	for _, spec := range schema.FieldSpecs {
		c := column{name: string(spec.Name), nullable: true}
		switch spec.Kind {
		case schema.NumericField:
			c.kind = realColumn
		case schema.BooleanField:
			c.kind = boolColumn
		default:
			c.kind = textColumn
		}
		cols = append(cols, c)
	}
	return append(cols, outcomeColumns...)
}()

// ColumnNames returns the flat column names in storage order.
func ColumnNames() []string {
	names := make([]string, len(recordColumns))
	for i, c := range recordColumns {
		names[i] = c.name
	}
	return names
}

// sqlType returns the column type for the backend.
func (c column) sqlType(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		switch c.kind {
		case keyColumn:
			return "VARCHAR(64)"
		case textColumn:
			return "VARCHAR(128)"
		case longTextColumn:
			return "TEXT"
		case timeColumn:
			return "DATETIME(6)"
		case intColumn:
			return "INT"
		case realColumn:
			return "DOUBLE"
		default:
			return "BOOLEAN"
		}
	case schema.PostgreSQLBackend:
		switch c.kind {
		case keyColumn, textColumn, longTextColumn:
			return "TEXT"
		case timeColumn:
			return "TIMESTAMPTZ"
		case intColumn:
			return "INTEGER"
		case realColumn:
			return "DOUBLE PRECISION"
		default:
			return "BOOLEAN"
		}
	default: // SQLite
		switch c.kind {
		case keyColumn, textColumn, longTextColumn, timeColumn:
			return "TEXT"
		case intColumn, boolColumn:
			return "INTEGER"
		default:
			return "REAL"
		}
	}
}

// encodeExplanations stores explanations as a JSON array so they survive any separator.
func encodeExplanations(explanations []string) (string, error) {
	if explanations == nil {
		explanations = []string{}
	}
	b, err := json.Marshal(explanations)
	if err != nil {
		return "", fmt.Errorf("failed to encode explanations: %w", err)
	}
	return string(b), nil
}

func decodeExplanations(s string) ([]string, error) {
	if s == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("failed to decode explanations: %w", err)
	}
	return out, nil
}

// recordStrings renders a record as one text cell per column. Missing values are empty.
func recordStrings(rec schema.AssessmentRecord) ([]string, error) {
	explanations, err := encodeExplanations(rec.Explanations)
	if err != nil {
		return nil, err
	}
	row := []string{
		rec.RecordID,
		rec.PatientID,
		rec.OperatorID,
		rec.AssessedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, spec := range schema.FieldSpecs {
		row = append(row, observationString(&rec.Observation, spec))
	}
	row = append(row,
		rec.Policy,
		strconv.Itoa(rec.PolicyVersion),
		formatFloat(rec.ClinicalScore),
		formatFloat(rec.FunctionalScore),
		formatFloat(rec.SocialScore),
		formatFloat(rec.TotalScore),
		formatOptionalFloat(rec.Probability),
		formatOptionalFloat(rec.CompositeIndex),
		formatFloat(rec.RiskPercent),
		string(rec.Level),
		formatFloat(rec.Confidence),
		string(rec.ConfidenceMethod),
		explanations,
	)
	return row, nil
}

// parseRecordStrings is the inverse of recordStrings. The header names the cells.
func parseRecordStrings(header, row []string) (schema.AssessmentRecord, error) {
	var rec schema.AssessmentRecord
	if len(header) != len(row) {
		return rec, fmt.Errorf("row has %d cells, header has %d", len(row), len(header))
	}

	for i, name := range header {
		cell := row[i]
		var err error
		switch name {
		case "record_id":
			rec.RecordID = cell
		case "patient_id":
			rec.PatientID = cell
		case "operator_id":
			rec.OperatorID = cell
		case "assessed_at":
			rec.AssessedAt, err = time.Parse(time.RFC3339Nano, cell)
		case "policy":
			rec.Policy = cell
		case "policy_version":
			rec.PolicyVersion, err = strconv.Atoi(cell)
		case "clinical_score":
			rec.ClinicalScore, err = parseFloat(cell)
		case "functional_score":
			rec.FunctionalScore, err = parseFloat(cell)
		case "social_score":
			rec.SocialScore, err = parseFloat(cell)
		case "total_score":
			rec.TotalScore, err = parseFloat(cell)
		case "probability":
			rec.Probability, err = parseOptionalFloat(cell)
		case "composite_index":
			rec.CompositeIndex, err = parseOptionalFloat(cell)
		case "risk_percent":
			rec.RiskPercent, err = parseFloat(cell)
		case "level":
			rec.Level = schema.Level(cell)
		case "confidence":
			rec.Confidence, err = parseFloat(cell)
		case "confidence_method":
			rec.ConfidenceMethod = schema.ConfidenceMethod(cell)
		case "explanations":
			rec.Explanations, err = decodeExplanations(cell)
		default:
			spec, ok := schema.LookupField(schema.FieldName(name))
			if !ok {
				return rec, fmt.Errorf("unknown column %q", name)
			}
			err = setObservationString(&rec.Observation, spec, cell)
		}
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", name, err)
		}
	}
	return rec, nil
}

func observationString(obs *schema.PatientObservation, spec schema.FieldSpec) string {
	switch spec.Kind {
	case schema.NumericField:
		if v, ok := obs.Numeric(spec.Name); ok {
			return formatFloat(v)
		}
	case schema.BooleanField:
		if v, ok := obs.Flag(spec.Name); ok {
			return strconv.FormatBool(v)
		}
	default:
		if v, ok := obs.Category(spec.Name); ok {
			return v
		}
	}
	return ""
}

func setObservationString(obs *schema.PatientObservation, spec schema.FieldSpec, cell string) error {
	if cell == "" {
		return nil
	}
	switch spec.Kind {
	case schema.NumericField:
		v, err := parseFloat(cell)
		if err != nil {
			return err
		}
		obs.SetNumeric(spec.Name, v)
	case schema.BooleanField:
		v, err := strconv.ParseBool(cell)
		if err != nil {
			return err
		}
		obs.SetFlag(spec.Name, v)
	default:
		obs.SetCategory(spec.Name, cell)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := parseFloat(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
