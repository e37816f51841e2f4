package cmd

import (
	"os"
	"strings"

	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/internal/records"
	"github.com/passagehealth/passage/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// recordsCmd focused on record store management.
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage the assessment record store",
	Long: `Manage the append-only store of saved assessments.

Every saved assessment is one flat row: identity, timestamp, the observation
fields, the per-domain scores, the risk percentage, level, confidence and
explanations.

Supported backends: SQLite (default), MySQL, PostgreSQL, CSV, or None (disabled)

Subcommands:
  status  - Show record store statistics
  export  - Export records to Parquet, XLSX, CSV or JSON
  migrate - Run database schema migrations

Examples:
  # Check the store
  passage records status

  # Export for analysis in pandas/DuckDB
  passage records export --output-file assessments.parquet`,
}

// recordsStatusCmd shows record store status.
var recordsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display record store statistics and connection details",
	Long: `Show the backend in use, whether it is reachable, how many records and
patients it holds, and the oldest and latest assessment times.

Examples:
  # Check the default SQLite store
  passage records status`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := records.Store().Status()
		if err != nil {
			contract.LogFatal("Failed to get record store status", err)
		}
		records.PrintStoreStatus(os.Stdout, status)
	},
}

// recordsExportCmd exports every record to a file.
var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved assessments for BI tools and spreadsheets",
	Long: `Export every stored assessment to a file.

Formats:
- parquet (default) - columnar, for DuckDB, Spark or pandas
- xlsx - one worksheet, for spreadsheet users
- csv - flat file with the store's column layout
- json - array of records

Requires: --output-file parameter

Examples:
  # Export all records to Parquet
  passage records export --output-file assessments.parquet

  # Hand a spreadsheet to the care team
  passage records export --format xlsx --output-file assessments.xlsx

  # Query with DuckDB
  duckdb -c "SELECT level, count(*) FROM read_parquet('assessments.parquet') GROUP BY level"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		format := schema.ExportFormat(strings.ToLower(viper.GetString("format")))
		if err := records.ExecuteExport(records.Store(), format, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export records", err)
		}
	},
}

// recordsMigrateCmd runs database migrations for the record store.
var recordsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the record store.

Migrations allow:
- Upgrading to new schema versions when Passage is updated
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.
Only the sqlite, mysql and postgresql backends have migrations.

Examples:
  # Migrate to latest version (default)
  passage records migrate

  # Migrate to specific version
  passage records migrate --target-version 1

  # Rollback to initial state
  passage records migrate --target-version 0`,
	// Migrations run on the raw connection, before the store creates its table.
	PreRunE: configSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := records.MigrateRecords(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
