package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/polyratings-scraper/internal/monitor"
	"github.com/jonathan/polyratings-scraper/internal/store"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Report on artifact freshness and completeness",
	Long:  "Loads the scraped artifact and its metadata, checks freshness and completeness, and prints a health report. Exit code: 0 healthy, 1 warning, 2 critical.",
	RunE:  runMonitor,
}

var monitorArtifact string

func init() {
	monitorCmd.Flags().StringVarP(&monitorArtifact, "artifact", "a", "", "Artifact path (default data/professors.json)")

	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if monitorArtifact != "" {
		cfg.OutputPath = monitorArtifact
		cfg.MetaPath = ""
	}

	logger := newLogger(cfg.Verbose)
	st := store.New(cfg, logger)

	report, err := monitor.Check(st, time.Now())
	if err != nil {
		return err
	}

	monitor.NewPrinter(os.Stdout).Print(report)

	// The status doubles as the exit code so cron and CI can alert on it.
	if report.Status != monitor.StatusHealthy {
		os.Exit(int(report.Status))
	}
	return nil
}
