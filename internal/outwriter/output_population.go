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

// levelDisplayOrder lists levels from most to least severe.
var levelDisplayOrder = []schema.Level{
	schema.HighLevel,
	schema.ModerateLevel,
	schema.LowLevel,
	schema.OptimalLevel,
}

// WritePopulationSummary outputs the population summary, dispatching based on the output format configured.
func WritePopulationSummary(summary schema.PopulationSummary, cfg *contract.Config) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)
	if summary.LevelCounts == nil {
		summary.LevelCounts = map[schema.Level]int{}
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePopulationCSV(w, summary, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePopulationTable(w, summary, fmtPercent)
		}, "Wrote table")
	}
}

func writePopulationTable(w io.Writer, summary schema.PopulationSummary, fmtPercent func(float64) string) error {
	if summary.TotalRecords == 0 {
		_, err := fmt.Fprintln(w, "No assessment records found")
		return err
	}

	totals := tablewriter.NewWriter(w)
	totals.Header([]string{"Metric", "Value"})
	totals.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
	})
	if err := totals.Bulk([][]string{
		{"Total records", strconv.Itoa(summary.TotalRecords)},
		{"Unique patients", strconv.Itoa(summary.UniquePatients)},
		{"Mean risk", fmtPercent(summary.MeanRiskPercent)},
		{"High-risk share", fmtPercent(summary.HighRiskShare)},
	}); err != nil {
		return err
	}
	if err := totals.Render(); err != nil {
		return err
	}

	levels := tablewriter.NewWriter(w)
	levels.Header([]string{"Level", "Records", "Share"})
	levels.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, 0, len(levelDisplayOrder))
	for _, level := range levelDisplayOrder {
		count := summary.LevelCounts[level]
		data = append(data, []string{
			contract.GetColorLabel(level),
			strconv.Itoa(count),
			fmtPercent(float64(count) / float64(summary.TotalRecords) * 100),
		})
	}
	if err := levels.Bulk(data); err != nil {
		return err
	}
	return levels.Render()
}

func writePopulationCSV(w io.Writer, summary schema.PopulationSummary, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		rows := [][]string{
			{"total_records", strconv.Itoa(summary.TotalRecords)},
			{"unique_patients", strconv.Itoa(summary.UniquePatients)},
			{"mean_risk_percent", fmtFloat(summary.MeanRiskPercent)},
			{"high_risk_share", fmtFloat(summary.HighRiskShare)},
		}
		for _, level := range levelDisplayOrder {
			rows = append(rows, []string{"level_" + string(level), strconv.Itoa(summary.LevelCounts[level])})
		}
		return cw.WriteAll(rows)
	})
}
