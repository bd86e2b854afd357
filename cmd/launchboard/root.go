package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yegors/launchboard/internal/config"
	"github.com/yegors/launchboard/internal/dashboard"
	"github.com/yegors/launchboard/internal/launches"
	"github.com/yegors/launchboard/internal/source"
	"github.com/yegors/launchboard/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

const defaultConfigPath = "config.toml"

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "launchboard",
		Short:         "SpaceX launch records dashboard",
		Long:          "launchboard serves an interactive dashboard over the SpaceX launch records\nand answers the same queries from the command line.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSitesCmd(opts))
	rootCmd.AddCommand(newSummaryCmd(opts))
	rootCmd.AddCommand(newPayloadCmd(opts))
	rootCmd.AddCommand(newImportCmd(opts))

	return rootCmd
}

// loadConfig reads the config file and applies flag overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

// newLogger writes to the command's stderr so tables on stdout stay clean
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// app is the loaded dataset with its query layers
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	service    *launches.Service
	aggregator *dashboard.Aggregator
}

func (o *rootOptions) setup(ctx context.Context, cmd *cobra.Command, observer launches.Observer) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	dataset, err := source.Load(ctx, cfg.Dataset, log)
	if err != nil {
		return nil, err
	}
	service, err := launches.NewService(dataset, cfg.Cache.Size, observer, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		log:        log,
		service:    service,
		aggregator: dashboard.NewAggregator(service, cfg.Dataset.UseObservedBounds, log),
	}, nil
}
