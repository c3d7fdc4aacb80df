// Package main implements the polyscraper CLI: scraping the PolyRatings
// listing, validating artifacts, and reporting on their health.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/polyratings-scraper/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "polyscraper",
	Short: "PolyRatings professor scraper",
	Long:  "polyscraper renders the PolyRatings infinite-scroll listing in a headless browser, extracts and validates professor records, and maintains a JSON artifact with freshness metadata.",
}

var (
	flagConfig  string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to JSON configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig builds the effective configuration: defaults, then config file,
// then environment, with command flags applied on top by each command.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	if flagVerbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newLogger builds the process logger honoring the verbose flag.
func newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
