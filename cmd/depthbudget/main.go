// Package main implements the depthbudget CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fyrsmithlabs/depthbudget/internal/config"
	"github.com/fyrsmithlabs/depthbudget/internal/logging"
	"github.com/fyrsmithlabs/depthbudget/internal/sweep"
	"github.com/fyrsmithlabs/depthbudget/internal/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the dependencies shared by subcommands. It is populated in
// the root command's PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *logging.Logger
	tel    *telemetry.Telemetry
	runner *sweep.Runner
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "depthbudget",
		Short: "Count nodes of budget-limited recursive trees",
		Long: `depthbudget expands n-ary trees whose depth is limited by a budget that
shrinks as it is handed to children. When a node runs out of budget the
overflow is signalled up the ancestor chain and later siblings receive a
sharply reduced budget. Two decay policies are available:

  legacy    overflowed nodes give children budget/4
  severity  overflowed nodes give children budget/4^k, k = overflow count

Configuration is read from ~/.config/depthbudget/config.yaml and
DEPTHBUDGET_* environment variables; flags take precedence.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/depthbudget/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(
		newRunCmd(a),
		newSweepCmd(a),
		newServeCmd(a),
		newPoliciesCmd(),
	)
	return root
}

// setup loads configuration and builds logging, telemetry and the runner.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	a.cfg = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	telCfg, err := telemetry.FromSettings(cfg.Telemetry, version)
	if err != nil {
		return fmt.Errorf("telemetry config: %w", err)
	}
	a.tel, err = telemetry.New(ctx, telCfg)
	if err != nil {
		return err
	}
	if cfg.Logging.OTEL {
		a.tel.SetLoggerProvider(global.GetLoggerProvider())
	}

	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	logCfg.Output.Writer = cmd.ErrOrStderr()
	a.logger, err = logging.NewLogger(logCfg, a.tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	a.runner, err = sweep.NewRunner(sweep.WithLogger(a.logger), sweep.WithTelemetry(a.tel))
	if err != nil {
		return err
	}

	a.logger.Debug(ctx, "configuration loaded",
		zap.String("version", version),
		zap.Bool("telemetry", telCfg.Enabled),
	)
	return nil
}

// close flushes telemetry and logs.
func (a *app) close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var err error
	if a.tel != nil {
		err = a.tel.Shutdown(ctx)
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}
