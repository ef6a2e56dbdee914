package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-tone-mcp/internal/config"
	"github.com/ironsheep/image-tone-mcp/internal/logging"
)

// app carries the state shared by all subcommands once the root command has
// loaded the configuration.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tone-mcp",
		Short: "Histogram tone mapping and frame averaging",
		Long: `tone-mcp equalizes, stretches and analyses image histograms and averages
frame sequences. Run "tone-mcp serve" to expose the same operations as MCP
tools over stdin/stdout.

Environment variables:
  IMAGE_TONE_CONFIG     YAML config file (overridden by --config)
  IMAGE_TONE_LOG_LEVEL  log level (overridden by --log-level)`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error or disabled")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: json or console")

	root.AddCommand(
		a.serveCmd(),
		a.statsCmd(),
		compareCmd(),
		a.lutCmd(),
		a.equalizeCmd(),
		a.stretchCmd(),
		a.rangeCmd(),
		a.averageCmd(),
		a.movingAverageCmd(),
		versionCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger. Logs go to stderr.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.Component(log, "cli")
	cmd.SetContext(a.log.WithContext(cmd.Context()))
	return nil
}
