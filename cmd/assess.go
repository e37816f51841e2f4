package cmd

import (
	"fmt"

	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/internal/outwriter"
	"github.com/passagehealth/passage/internal/records"
	"github.com/spf13/cobra"
)

// assessCmd scores one observation under a policy.
var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score one patient observation and explain the result.",
	Long: `Score a patient observation under a risk policy.

The observation comes from --input (YAML or JSON keyed by field name), from
per-field flags such as --age and --gait-speed, or both; flags override the file.

The result shows the domain sub-scores, the risk percentage, the level, a
confidence value and one explanation per contributing factor.

Examples:
  # Score with the default policy
  passage assess --age 82 --gait-speed 0.6 --living-alone yes --fall-history yes

  # Score from a file with a specific policy and save the record
  passage assess --input visit.yaml --policy hospitalization-threshold --patient-id p-001 --save

  # Machine-readable output
  passage assess --input visit.yaml --output json`,
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := runAssess(cmd); err != nil {
			contract.LogFatal("Cannot run assessment", err)
		}
	},
}

func runAssess(cmd *cobra.Command) error {
	patientID, _ := cmd.Flags().GetString("patient-id")
	if cfg.Save && patientID == "" {
		return fmt.Errorf("--patient-id is required with --save")
	}

	obs, err := readObservation(cmd)
	if err != nil {
		return err
	}

	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	a, err := engine.AssessWith(cfg.Policy, obs)
	if err != nil {
		return err
	}

	recordID := ""
	if cfg.Save {
		if err := initStore(); err != nil {
			return err
		}
		rec, err := records.Save(records.Store(), patientID, cfg.Operator, obs, a)
		if err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}
		recordID = rec.RecordID
	}

	return outwriter.NewOutWriter().WriteAssessment(patientID, a, recordID, cfg)
}
