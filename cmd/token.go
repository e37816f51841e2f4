package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/passagehealth/passage/internal/server"
	"github.com/spf13/cobra"
)

const defaultTokenTTL = 12 * time.Hour

// tokenCmd issues an operator token for the HTTP API.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an operator token for the HTTP API",
	Long: `Sign an HS256 token with the configured jwt-secret and jwt-issuer. The
subject becomes the operator recorded on assessments saved through the API.

Examples:
  # Token for the current operator, valid for 12 hours
  PASSAGE_JWT_SECRET=... passage token

  # Token for a named operator, valid for one shift
  passage token --subject dr-okafor --ttl 8h`,
	Args:    cobra.NoArgs,
	PreRunE: configSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.JWTSecret == "" {
			return errors.New("jwt-secret is not configured")
		}
		subject, _ := cmd.Flags().GetString("subject")
		if subject == "" {
			subject = cfg.Operator
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			return errors.New("--ttl must be positive")
		}

		token, err := server.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer).IssueToken(subject, ttl)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}
