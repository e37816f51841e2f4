package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/passagehealth/passage/internal/logging"
	"github.com/passagehealth/passage/internal/records"
	"github.com/passagehealth/passage/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the risk engine and record store over HTTP",
	Long: `Start an HTTP API over the engine and the record store.

Routes:
  POST /assessments                score an observation, optionally saving it
  GET  /patients/:id/assessments   patient history with trend
  GET  /population                 population summary
  GET  /policies                   policy catalog
  GET  /healthz                    liveness
  GET  /metrics                    Prometheus metrics

When --jwt-secret is set, every route except /healthz and /metrics needs an
"Authorization: Bearer <token>" header; the token subject is recorded as the
operator on saved assessments. Use "passage token" to issue one.

Examples:
  # Local API without tokens
  passage serve --listen :9000

  # Shared API with operator tokens and JSON logs
  PASSAGE_JWT_SECRET=... passage serve --log-format json`,
	Args:    cobra.NoArgs,
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

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("starting passage api",
			zap.String("version", version),
			zap.String("store_backend", string(cfg.StoreBackend)),
			zap.String("default_policy", engine.DefaultPolicy()))

		srv := server.New(engine, records.Store(), logger, server.Options{
			Operator:  cfg.Operator,
			JWTSecret: cfg.JWTSecret,
			JWTIssuer: cfg.JWTIssuer,
		})
		return srv.Run(ctx, cfg.Listen)
	},
}
