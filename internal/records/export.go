package records

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/internal/parquet"
	"github.com/passagehealth/passage/schema"
	"github.com/xuri/excelize/v2"
)

// exportSheet is the worksheet name used for XLSX exports.
const exportSheet = "Assessments"

// ExecuteExport writes every stored record to outputFile in the requested format.
// Progress lines go to w.
func ExecuteExport(store contract.RecordStore, format schema.ExportFormat, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if _, ok := schema.ValidExportFormats[format]; !ok {
		return fmt.Errorf("unsupported export format: %s", format)
	}

	status, err := store.Status()
	if err != nil {
		return fmt.Errorf("failed to get records status: %w", err)
	}
	if status.TotalRecords == 0 {
		return errors.New("no assessment records found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting records from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total records: %d (%d patients)\n", status.TotalRecords, status.UniquePatients)

	all, err := store.All()
	if err != nil {
		return fmt.Errorf("failed to retrieve assessment records: %w", err)
	}

	switch format {
	case schema.XLSXExport:
		err = writeXLSX(all, outputFile)
	case schema.CSVExport:
		err = writeCSV(all, outputFile)
	case schema.JSONExport:
		err = writeJSON(all, outputFile)
	default:
		err = parquet.WriteAssessmentsParquet(parquet.ConvertAssessmentRecords(all), outputFile)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}

	_, _ = fmt.Fprintf(w, "Exported %d records to: %s\n", len(all), outputFile)
	return nil
}

func writeCSV(all []schema.AssessmentRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if err := cw.Write(ColumnNames()); err != nil {
		return err
	}
	for _, rec := range all {
		row, err := recordStrings(rec)
		if err != nil {
			return err
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(all []schema.AssessmentRecord, path string) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeXLSX(all []schema.AssessmentRecord, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	names := ColumnNames()
	header := make([]any, len(names))
	for i, name := range names {
		header[i] = name
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(names), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, rec := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := recordCells(rec)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(names))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "A", lastCol, 16); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// recordCells renders a record as typed spreadsheet cells. Missing values stay empty.
func recordCells(rec schema.AssessmentRecord) []any {
	cells := []any{rec.RecordID, rec.PatientID, rec.OperatorID, rec.AssessedAt.UTC()}
	for _, spec := range schema.FieldSpecs {
		v, ok := rec.Observation.Value(spec.Name)
		if !ok {
			cells = append(cells, nil)
			continue
		}
		cells = append(cells, v)
	}
	return append(cells,
		rec.Policy,
		rec.PolicyVersion,
		rec.ClinicalScore,
		rec.FunctionalScore,
		rec.SocialScore,
		rec.TotalScore,
		optionalArg(rec.Probability),
		optionalArg(rec.CompositeIndex),
		rec.RiskPercent,
		string(rec.Level),
		rec.Confidence,
		string(rec.ConfidenceMethod),
		strings.Join(rec.Explanations, "\n"),
	)
}
