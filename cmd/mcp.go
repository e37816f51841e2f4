package cmd

import (
	"github.com/passagehealth/passage/internal/logging"
	"github.com/passagehealth/passage/internal/mcp"
	"github.com/passagehealth/passage/internal/records"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Passage MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents assess patients, list
policies and read the record store via standard tools.

Logs go to stderr; stdout carries the protocol.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		engine, err := cfg.Engine()
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, engine, records.Store(), logger)
	},
}
