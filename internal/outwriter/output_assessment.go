package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
)

// AssessmentView is one assessment together with the identity it was run for.
type AssessmentView struct {
	PatientID  string                `json:"patient_id,omitempty"`
	RecordID   string                `json:"record_id,omitempty"`
	Label      string                `json:"label"`
	Assessment schema.RiskAssessment `json:"assessment"`
}

// WriteAssessmentResult outputs one assessment, dispatching based on the output format configured.
func WriteAssessmentResult(view AssessmentView, cfg *contract.Config) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)
	view.Label = contract.GetPlainLabel(view.Assessment.Level)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAssessmentCSV(w, view, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAssessmentTable(w, view, fmtFloat, fmtPercent, getMaxTextWidth())
		}, "Wrote table")
	}
}

// writeAssessmentTable renders the assessment as a metric table followed by its explanations.
func writeAssessmentTable(w io.Writer, view AssessmentView, fmtFloat, fmtPercent func(float64) string, textWidth int) error {
	a := view.Assessment

	if view.PatientID != "" {
		if _, err := fmt.Fprintf(w, "Patient: %s\n", view.PatientID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Policy: %s v%d (%s)\n", a.Policy, a.PolicyVersion, a.Transform); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
	})

	data := [][]string{
		{"Level", contract.GetColorLabel(a.Level)},
		{"Risk", fmtPercent(a.RiskPercent)},
	}
	switch a.Transform {
	case schema.LogisticTransform:
		data = append(data, []string{"Probability", optionalFloat(a.Probability, fmtFloat)})
	case schema.CompositeTransform:
		data = append(data, []string{"Composite index", optionalFloat(a.CompositeIndex, fmtFloat)})
	}
	if a.Transform != schema.CompositeTransform {
		data = append(data, []string{"Total score", fmtFloat(a.TotalScore)})
		for _, d := range schema.AllDomains {
			data = append(data, []string{"  " + domainTitle(d), fmtFloat(a.DomainScore(d))})
		}
	}
	data = append(data, []string{"Confidence", fmt.Sprintf("%s (%s)", fmtFloat(a.Confidence), a.ConfidenceMethod)})

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(a.Explanations) == 0 {
		if _, err := fmt.Fprintln(w, "No contributing factors."); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "Contributing factors:"); err != nil {
			return err
		}
		for i, e := range a.Explanations {
			if _, err := fmt.Fprintf(w, "  %d. %s\n", i+1, contract.TruncateText(e, textWidth)); err != nil {
				return err
			}
		}
	}

	if view.RecordID != "" {
		if _, err := fmt.Fprintf(w, "Saved as record %s\n", view.RecordID); err != nil {
			return err
		}
	}
	return nil
}

// writeAssessmentCSV writes the assessment as a single CSV row.
func writeAssessmentCSV(w io.Writer, view AssessmentView, fmtFloat func(float64) string) error {
	header := []string{
		"patient_id",
		"policy",
		"policy_version",
		"transform",
		"level",
		"label",
		"risk_percent",
		"probability",
		"composite_index",
		"total_score",
		"clinical_score",
		"functional_score",
		"social_score",
		"confidence",
		"confidence_method",
		"explanations",
		"record_id",
	}
	a := view.Assessment
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			view.PatientID,
			a.Policy,
			strconv.Itoa(a.PolicyVersion),
			string(a.Transform),
			string(a.Level),
			view.Label,
			fmtFloat(a.RiskPercent),
			csvOptionalFloat(a.Probability, fmtFloat),
			csvOptionalFloat(a.CompositeIndex, fmtFloat),
			fmtFloat(a.TotalScore),
			fmtFloat(a.DomainScore(schema.ClinicalDomain)),
			fmtFloat(a.DomainScore(schema.FunctionalDomain)),
			fmtFloat(a.DomainScore(schema.SocialDomain)),
			fmtFloat(a.Confidence),
			string(a.ConfidenceMethod),
			strings.Join(a.Explanations, " | "),
			view.RecordID,
		})
	})
}

func domainTitle(d schema.Domain) string {
	s := string(d)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
