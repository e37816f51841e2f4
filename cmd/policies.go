package cmd

import (
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/internal/outwriter"
	"github.com/spf13/cobra"
)

// policiesCmd lists the registered policies.
var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List the built-in and configured risk policies.",
	Long: `List every registered policy: the presets followed by any custom policies
declared under "policies" in the config file. The default policy is marked.

Examples:
  # Show the catalog
  passage policies

  # Dump full rule definitions
  passage policies --output json`,
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		engine, err := cfg.Engine()
		if err != nil {
			contract.LogFatal("Cannot load policies", err)
		}
		if err := outwriter.NewOutWriter().WritePolicies(engine.Policies(), engine.DefaultPolicy(), cfg); err != nil {
			contract.LogFatal("Cannot write policy catalog", err)
		}
	},
}
