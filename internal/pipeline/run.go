// Package pipeline orchestrates a full scrape run: collect, validate, store.
package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jonathan/polyratings-scraper/internal/browser"
	"github.com/jonathan/polyratings-scraper/internal/collect"
	"github.com/jonathan/polyratings-scraper/internal/config"
	"github.com/jonathan/polyratings-scraper/internal/extract"
	"github.com/jonathan/polyratings-scraper/internal/fetch"
	"github.com/jonathan/polyratings-scraper/internal/professor"
	"github.com/jonathan/polyratings-scraper/internal/store"
)

// Summary reports the outcome of one run.
type Summary struct {
	Extracted    int
	Validated    int
	Rejected     int
	ArtifactPath string
}

// Runner wires the components of one scrape run together.
type Runner struct {
	cfg      config.Config
	renderer browser.Renderer
	store    *store.Store
	logger   *log.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewRunner builds a Runner. The renderer is owned by the caller; the runner
// never closes it.
func NewRunner(cfg config.Config, renderer browser.Renderer, st *store.Store, logger *log.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		renderer: renderer,
		store:    st,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes collect → validate → save. Individual candidate rejections are
// logged and dropped, never fatal to the batch. Navigation failure and
// persistence failure propagate; a persistence failure leaves any previous
// artifact untouched.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{ArtifactPath: r.store.Path()}

	// Pre-flight probe outside the browser stays polite: spaced and with the
	// fixed header set. Probe failure is only a warning; the renderer does
	// its own navigation with retries.
	probe := fetch.NewClient(fetch.Options{
		Timeout: r.cfg.RequestTimeout,
		Delay:   r.cfg.RequestDelay,
		Headers: r.cfg.Headers(),
	})
	if status, err := probe.Probe(ctx, r.cfg.BaseURL); err != nil {
		r.logger.Warn("pre-flight probe failed", "url", r.cfg.BaseURL, "status", status, "error", err)
	}

	searchURL := r.cfg.SearchURL()
	r.logger.Info("navigating to listing", "url", searchURL)
	if err := r.renderer.Navigate(ctx, searchURL); err != nil {
		return summary, err
	}

	// Give the SPA its initial render before measuring anything.
	if r.cfg.InitialWait > 0 {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		case <-time.After(r.cfg.InitialWait):
		}
	}

	extractor := extract.New(r.cfg.BaseURL, r.logger)
	collector := collect.New(r.renderer, extractor, r.cfg, r.logger)

	candidates, err := collector.Run(ctx)
	if err != nil {
		return summary, err
	}
	summary.Extracted = len(candidates)
	r.logger.Info("extracted raw professor cards", "count", summary.Extracted)

	validator := professor.NewValidator(r.cfg)
	professors := make([]professor.Professor, 0, len(candidates))
	for _, cand := range candidates {
		rec, err := validator.New(cand)
		if err != nil {
			summary.Rejected++
			r.logger.Warn("invalid entry skipped",
				"name", cand.Name, "rating", cand.RatingText, "link", cand.Link, "reason", err)
			continue
		}
		professors = append(professors, rec)
	}
	summary.Validated = len(professors)
	r.logger.Info("validated professor entries", "validated", summary.Validated, "rejected", summary.Rejected)

	if err := r.store.Save(professors); err != nil {
		return summary, err
	}

	meta := store.Metadata{
		ScrapedAt:       r.now().UTC(),
		TotalProfessors: len(professors),
	}
	if err := r.store.WriteMetadata(meta); err != nil {
		return summary, err
	}

	return summary, nil
}
