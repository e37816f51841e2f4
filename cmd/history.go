package cmd

import (
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/internal/outwriter"
	"github.com/passagehealth/passage/internal/records"
	"github.com/passagehealth/passage/schema"
	"github.com/spf13/cobra"
)

// historyCmd shows the registry view of one patient.
var historyCmd = &cobra.Command{
	Use:   "history <patient-id>",
	Short: "Show every saved assessment of one patient.",
	Long: `List a patient's saved assessments, oldest first, with the change in risk
between the first and the latest one.

Examples:
  # Show the registry entry of a patient
  passage history p-001

  # Export the history for a chart
  passage history p-001 --output csv --output-file p-001.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		recs, err := records.Store().History(args[0])
		if err != nil {
			contract.LogFatal("Cannot read patient history", err)
		}
		history := schema.NewPatientHistory(args[0], recs)
		if err := outwriter.NewOutWriter().WriteHistory(history, cfg); err != nil {
			contract.LogFatal("Cannot write patient history", err)
		}
	},
}
