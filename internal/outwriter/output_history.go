package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
)

const historyTimeLayout = "2006-01-02 15:04"

// historyOutput is the JSON shape of a patient history.
type historyOutput struct {
	PatientID string                    `json:"patient_id"`
	Trend     float64                   `json:"trend"`
	Records   []schema.AssessmentRecord `json:"records"`
}

// WriteHistoryResults outputs a patient's saved assessments, dispatching based on the output format configured.
func WriteHistoryResults(history schema.PatientHistory, cfg *contract.Config) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			records := history.Records
			if records == nil {
				records = []schema.AssessmentRecord{}
			}
			return writeJSON(w, historyOutput{
				PatientID: history.PatientID,
				Trend:     history.Trend(),
				Records:   records,
			})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, history, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, history, fmtFloat, fmtPercent)
		}, "Wrote table")
	}
}

func writeHistoryTable(w io.Writer, history schema.PatientHistory, fmtFloat, fmtPercent func(float64) string) error {
	if len(history.Records) == 0 {
		_, err := fmt.Fprintf(w, "No assessments found for patient %s\n", history.PatientID)
		return err
	}

	if _, err := fmt.Fprintf(w, "Patient: %s\n", history.PatientID); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Assessed At", "Policy", "Level", "Risk", "Total", "Confidence", "Operator"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(history.Records))
	for i, r := range history.Records {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.AssessedAt.Local().Format(historyTimeLayout),
			fmt.Sprintf("%s v%d", r.Policy, r.PolicyVersion),
			contract.GetColorLabel(r.Level),
			fmtPercent(r.RiskPercent),
			fmtFloat(r.TotalScore),
			fmtFloat(r.Confidence),
			r.OperatorID,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(history.Records) > 1 {
		trend := history.Trend()
		delta, direction := fmtFloat(trend), "unchanged"
		switch {
		case trend > 0:
			delta, direction = "+"+delta, "worsening"
		case trend < 0:
			direction = "improving"
		}
		if _, err := fmt.Fprintf(w, "Trend: %s points since first assessment (%s)\n", delta, direction); err != nil {
			return err
		}
	}
	return nil
}

func writeHistoryCSV(w io.Writer, history schema.PatientHistory, fmtFloat func(float64) string) error {
	header := []string{
		"record_id",
		"patient_id",
		"assessed_at",
		"policy",
		"policy_version",
		"level",
		"risk_percent",
		"total_score",
		"confidence",
		"operator_id",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range history.Records {
			row := []string{
				r.RecordID,
				r.PatientID,
				r.AssessedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
				r.Policy,
				strconv.Itoa(r.PolicyVersion),
				string(r.Level),
				fmtFloat(r.RiskPercent),
				fmtFloat(r.TotalScore),
				fmtFloat(r.Confidence),
				r.OperatorID,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
