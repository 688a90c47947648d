package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"coverwall/internal/config"
	"coverwall/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "coverwall",
	Short:         "Find the album cover for a song",
	Long:          `coverwall resolves a free-text song query to the best matching album cover.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initConfigCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("env-file", ".env", "file with COVERWALL_* overrides")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show debug output")

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration.
// Priority: CLI flags > environment > config file > defaults
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	configPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return cfg, "", fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
	return cfg, configPath, nil
}

// newLogger builds the console logger and attaches the optional log file.
func newLogger(cfg config.Config, configPath string) *logger.Logger {
	log := logger.New(cfg.Verbose)
	if cfg.LogFile != "" {
		if err := log.SetFileLog(cfg.LogFile); err != nil {
			warnColor.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
		} else {
			log.Debug("Logging to file: %s", cfg.LogFile)
		}
	}
	if configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}
	return log
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
