package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
)

// policyOutput is the JSON shape of one catalog entry.
type policyOutput struct {
	Default bool `json:"default"`
	*core.Policy
}

// WritePolicyCatalog outputs the registered policies, dispatching based on the output format configured.
func WritePolicyCatalog(policies []*core.Policy, defaultPolicy string, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			out := make([]policyOutput, 0, len(policies))
			for _, p := range policies {
				out = append(out, policyOutput{Default: p.Name == defaultPolicy, Policy: p})
			}
			return writeJSON(w, out)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePoliciesCSV(w, policies, defaultPolicy, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePoliciesTable(w, policies, defaultPolicy, fmtFloat, getMaxTextWidth())
		}, "Wrote table")
	}
}

// policySize describes how many scoring inputs a policy has: rules, or components for composite policies.
func policySize(p *core.Policy) string {
	if p.Transform.Kind == schema.CompositeTransform {
		return fmt.Sprintf("%d components", len(p.Transform.Components))
	}
	return fmt.Sprintf("%d rules", len(p.Rules))
}

// policyMaxScore is empty for composite policies, which have no point scale.
func policyMaxScore(p *core.Policy, fmtFloat func(float64) string) string {
	if p.Transform.Kind == schema.CompositeTransform {
		return ""
	}
	return fmtFloat(p.MaxScore())
}

func writePoliciesTable(w io.Writer, policies []*core.Policy, defaultPolicy string, fmtFloat func(float64) string, textWidth int) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"", "Name", "Version", "Transform", "Inputs", "Max Score", "Confidence", "Description"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	// The description column gets whatever is left after the fixed columns
	descWidth := max(textWidth-70, 20)

	data := make([][]string, 0, len(policies))
	for _, p := range policies {
		marker := ""
		if p.Name == defaultPolicy {
			marker = "*"
		}
		maxScore := policyMaxScore(p, fmtFloat)
		if maxScore == "" {
			maxScore = "-"
		}
		data = append(data, []string{
			marker,
			p.Name,
			strconv.Itoa(p.Version),
			string(p.Transform.Kind),
			policySize(p),
			maxScore,
			string(p.Confidence.Method),
			contract.TruncateText(p.Description, descWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "* default policy")
	return err
}

func writePoliciesCSV(w io.Writer, policies []*core.Policy, defaultPolicy string, fmtFloat func(float64) string) error {
	header := []string{"name", "version", "transform", "rules", "components", "max_score", "confidence_method", "default", "description"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range policies {
			row := []string{
				p.Name,
				strconv.Itoa(p.Version),
				string(p.Transform.Kind),
				strconv.Itoa(len(p.Rules)),
				strconv.Itoa(len(p.Transform.Components)),
				policyMaxScore(p, fmtFloat),
				string(p.Confidence.Method),
				strconv.FormatBool(p.Name == defaultPolicy),
				p.Description,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
