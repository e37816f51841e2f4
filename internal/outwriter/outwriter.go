// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAssessment prints one assessment using the configured output format.
// recordID is empty when the assessment was not saved.
func (ow *OutWriter) WriteAssessment(patientID string, a schema.RiskAssessment, recordID string, cfg *contract.Config) error {
	return WriteAssessmentResult(AssessmentView{PatientID: patientID, RecordID: recordID, Assessment: a}, cfg)
}

// WriteHistory prints a patient's saved assessments using the configured output format.
func (ow *OutWriter) WriteHistory(history schema.PatientHistory, cfg *contract.Config) error {
	return WriteHistoryResults(history, cfg)
}

// WritePopulation prints the population summary using the configured output format.
func (ow *OutWriter) WritePopulation(summary schema.PopulationSummary, cfg *contract.Config) error {
	return WritePopulationSummary(summary, cfg)
}

// WritePolicies prints the policy catalog using the configured output format.
func (ow *OutWriter) WritePolicies(policies []*core.Policy, defaultPolicy string, cfg *contract.Config) error {
	return WritePolicyCatalog(policies, defaultPolicy, cfg)
}

// getMaxTextWidth returns the width available to free-text cells such as explanations
// and descriptions, based on the terminal width.
func getMaxTextWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		// Conservative default for narrow terminals and CI
		termWidth = 80
	}

	// Reserve space for the numbering, borders and padding
	available := termWidth - 10
	if available < 30 {
		return 30
	}
	if available > 120 {
		return 120
	}
	return available
}
