// Package cmd defines the command-line interface for passage.
package cmd

import (
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(populationCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the records subcommands to the parent records command
	recordsCmd.AddCommand(recordsStatusCmd)
	recordsCmd.AddCommand(recordsExportCmd)
	recordsCmd.AddCommand(recordsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("policy", "", "Risk policy to assess with (default frailty-logistic)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns (1 or 2)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Record store backend: sqlite or mysql or postgresql or csv or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Connection string for mysql/postgresql, or a file path for sqlite/csv")
	rootCmd.PersistentFlags().String("operator", "", "Operator identity recorded on saved assessments (default current user)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level for serve and mcp: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format for serve and mcp: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind the config flags of assessCmd to Viper; observation flags stay local
	assessCmd.Flags().Bool("save", false, "Append the assessment to the record store")
	if err := viper.BindPFlags(assessCmd.Flags()); err != nil {
		contract.LogFatal("Error binding assess flags", err)
	}
	assessCmd.Flags().String("patient-id", "", "Patient identifier (required with --save)")
	assessCmd.Flags().String("input", "", "YAML or JSON file holding the observation")
	addObservationFlags(assessCmd)

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListen, "Address for the HTTP API to listen on")
	serveCmd.Flags().String("jwt-secret", "", "HS256 secret for operator tokens; empty disables token checks")
	serveCmd.Flags().String("jwt-issuer", contract.DefaultJWTIssuer, "Expected token issuer")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Token flags share the serve secret and issuer
	tokenCmd.Flags().String("subject", "", "Operator identity to issue the token for (default --operator)")
	tokenCmd.Flags().Duration("ttl", defaultTokenTTL, "Token lifetime")

	// Bind all flags of recordsExportCmd to Viper
	recordsExportCmd.Flags().String("format", string(schema.ParquetExport), "Export format: parquet or xlsx or csv or json")
	if err := viper.BindPFlags(recordsExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding records export flags", err)
	}

	// Bind all flags of recordsMigrateCmd to Viper
	recordsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(recordsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding records migrate flags", err)
	}
}
