package commands

import (
	"fmt"
	"os"

	"StrokeCollector/internal/config"
	"StrokeCollector/internal/logging"
	"StrokeCollector/internal/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globals are the persistent flags every command reads.
type globals struct {
	configPath string
	logLevel   string
}

// setup loads the config and builds the logger. The caller syncs the logger.
func (g *globals) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "srcollect [archive]",
		Short: "Collect freehand strokes into multi-canvas archives",
		Long: `srcollect opens a window for drawing strokes on one or more canvases and
saves them as a .srz archive or a directory of stroke files.
Given an archive, the window starts with its strokes loaded.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return ui.Run(cfg, logger, path)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(newInfoCommand(g))
	rootCmd.AddCommand(newConvertCommand(g))
	rootCmd.AddCommand(newExportCommand(g))
	rootCmd.AddCommand(newShareCommand(g))
	rootCmd.AddCommand(newFetchCommand(g))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
