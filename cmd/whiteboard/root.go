package main

import (
	"github.com/spf13/cobra"

	"whiteboard/internal/config"
	"whiteboard/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "whiteboard",
	Short: "A whiteboard in the terminal",
	Long: `Whiteboard edits boards of boxes, ellipses, lines, text and drawings
in the terminal with the mouse and keyboard.

Boards are saved as JSON files or in a local database, and can be exported
to PNG or plain text.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.whiteboard/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

// loadConfig reads the config file named by --config or the default one.
// A broken file is reported and the defaults are used.
func loadConfig(log *logger.Logger) *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Warn("%v, using defaults", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg
}

func cliLogger() *logger.Logger {
	return logger.Default(verbose)
}
