package cmd

import (
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/internal/outwriter"
	"github.com/passagehealth/passage/internal/records"
	"github.com/spf13/cobra"
)

// populationCmd summarizes every saved assessment.
var populationCmd = &cobra.Command{
	Use:   "population",
	Short: "Summarize risk across every saved assessment.",
	Long: `Aggregate the record store into a population view.

Shows:
- Total records and unique patients
- Mean risk percentage across records
- Share of records at High risk
- Record count per level

Examples:
  # Show the population dashboard
  passage population

  # Read from a shared PostgreSQL store
  passage population --store-backend postgresql --store-db-connect "host=db dbname=passage"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		summary, err := records.Store().Summary()
		if err != nil {
			contract.LogFatal("Cannot summarize records", err)
		}
		if err := outwriter.NewOutWriter().WritePopulation(summary, cfg); err != nil {
			contract.LogFatal("Cannot write population summary", err)
		}
	},
}
