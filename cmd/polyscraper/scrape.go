package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/jonathan/polyratings-scraper/internal/browser"
	"github.com/jonathan/polyratings-scraper/internal/pipeline"
	"github.com/jonathan/polyratings-scraper/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the professor listing and replace the artifact",
	Long:  "Scrapes the full PolyRatings professor listing by incremental scrolling, validates every record, and replaces the JSON artifact and its freshness metadata.",
	RunE:  runScrape,
}

var (
	scrapeOutput     string
	scrapeBaseURL    string
	scrapeStep       int64
	scrapeSettle     time.Duration
	scrapeMaxNoNew   int
	scrapeTimeout    time.Duration
	scrapeNoHeadless bool
)

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "out", "o", "", "Artifact output path (default data/professors.json)")
	scrapeCmd.Flags().StringVar(&scrapeBaseURL, "base-url", "", "Base origin of the target site")
	scrapeCmd.Flags().Int64Var(&scrapeStep, "scroll-step", 0, "Scroll increment in pixels")
	scrapeCmd.Flags().DurationVar(&scrapeSettle, "settle", 0, "Delay after each scroll move before extraction")
	scrapeCmd.Flags().IntVar(&scrapeMaxNoNew, "max-no-new", 0, "Consecutive unproductive steps before stopping")
	scrapeCmd.Flags().DurationVar(&scrapeTimeout, "timeout", 0, "Navigation timeout")
	scrapeCmd.Flags().BoolVar(&scrapeNoHeadless, "no-headless", false, "Run the browser with a visible window")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flag overrides
	if scrapeOutput != "" {
		cfg.OutputPath = scrapeOutput
	}
	if scrapeBaseURL != "" {
		cfg.BaseURL = scrapeBaseURL
	}
	if scrapeStep != 0 {
		cfg.ScrollStep = scrapeStep
	}
	if scrapeSettle != 0 {
		cfg.SettleDelay = scrapeSettle
	}
	if scrapeMaxNoNew != 0 {
		cfg.MaxNoNew = scrapeMaxNoNew
	}
	if scrapeTimeout != 0 {
		cfg.RequestTimeout = scrapeTimeout
	}
	if scrapeNoHeadless {
		cfg.Headless = false
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("starting PolyRatings scraper", "url", cfg.SearchURL())

	renderer, err := browser.NewChrome(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start renderer: %w", err)
	}
	defer func() { _ = renderer.Close() }()

	spin := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	spin.Suffix = " collecting professors..."
	if !cfg.Verbose {
		spin.Start()
	}

	st := store.New(cfg, logger)
	runner := pipeline.NewRunner(cfg, renderer, st, logger)
	summary, err := runner.Run(ctx)

	spin.Stop()

	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Extracted %d raw professor cards\n", summary.Extracted)
	fmt.Fprintf(os.Stdout, "Validated %d, rejected %d\n", summary.Validated, summary.Rejected)
	fmt.Fprintf(os.Stdout, "Saved artifact to %s\n", summary.ArtifactPath)
	return nil
}
