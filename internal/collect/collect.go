// Package collect drives the incremental scroll-and-extract loop over the
// progressively rendered listing.
package collect

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jonathan/polyratings-scraper/internal/browser"
	"github.com/jonathan/polyratings-scraper/internal/config"
	"github.com/jonathan/polyratings-scraper/internal/extract"
	"github.com/jonathan/polyratings-scraper/internal/professor"
)

// progressInterval is the scroll distance between progress log lines.
const progressInterval = 1000

// Collector guarantees every card in the virtualized list is observed at
// least once, without assuming the page exposes an end-of-list signal beyond
// a stable scroll height and a stagnation heuristic. Best effort: a settle
// delay too short for the renderer can still miss content, which is a tuning
// trade-off rather than a bug.
type Collector struct {
	renderer  browser.Renderer
	extractor *extract.Extractor

	step     int64
	settle   time.Duration
	maxNoNew int

	logger *log.Logger
}

// New builds a Collector over the given renderer, tuned from cfg.
func New(renderer browser.Renderer, extractor *extract.Extractor, cfg config.Config, logger *log.Logger) *Collector {
	return &Collector{
		renderer:  renderer,
		extractor: extractor,
		step:      cfg.ScrollStep,
		settle:    cfg.SettleDelay,
		maxNoNew:  cfg.MaxNoNew,
		logger:    logger,
	}
}

// Run scrolls through the page in fixed increments, extracting visible cards
// at each step and merging them into an accumulator keyed by profile link.
// Later sightings of a known link overwrite its name and rating text
// (last-write-wins), since a card's first render may still be loading its
// rating. Output preserves first-seen order. Extraction failures on a single
// snapshot are logged and treated as empty for that step.
func (c *Collector) Run(ctx context.Context) ([]professor.Candidate, error) {
	byLink := make(map[string]professor.Candidate)
	var order []string

	merge := func(candidates []professor.Candidate) {
		for _, cand := range candidates {
			if _, seen := byLink[cand.Link]; !seen {
				order = append(order, cand.Link)
			}
			byLink[cand.Link] = cand
		}
	}

	height, err := c.renderer.ScrollExtent(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Info("starting scroll collection", "height", height, "step", c.step, "settle", c.settle)

	noNew := 0
	var pos int64
	for pos < height {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := c.renderer.ScrollTo(ctx, pos); err != nil {
			return nil, err
		}
		if err := c.sleep(ctx, c.settle); err != nil {
			return nil, err
		}

		before := len(byLink)
		merge(c.extractStep(ctx))

		if len(byLink) == before {
			noNew++
		} else {
			noNew = 0
		}
		if noNew >= c.maxNoNew {
			// Natural end of the list, not an error.
			c.logger.Info("stopping: no new professors found", "unproductive_steps", noNew)
			break
		}

		if pos%progressInterval == 0 {
			c.logger.Debug("scroll progress", "pos", pos, "unique", len(byLink))
		}

		pos += c.step

		// Lazily loaded content can grow the page under us.
		if height, err = c.renderer.ScrollExtent(ctx); err != nil {
			return nil, err
		}
	}

	// Final pass at the very bottom covers content only rendered there.
	if err := c.renderer.ScrollTo(ctx, height); err != nil {
		return nil, err
	}
	if err := c.sleep(ctx, 2*c.settle); err != nil {
		return nil, err
	}
	merge(c.extractStep(ctx))

	c.logger.Info("scroll collection finished", "unique", len(byLink))

	result := make([]professor.Candidate, 0, len(order))
	for _, link := range order {
		result = append(result, byLink[link])
	}
	return result, nil
}

// extractStep captures and parses one snapshot. Any failure is downgraded to
// an empty result so a single bad snapshot never aborts the run.
func (c *Collector) extractStep(ctx context.Context) []professor.Candidate {
	html, err := c.renderer.Snapshot(ctx)
	if err != nil {
		c.logger.Warn("snapshot failed, treating step as empty", "error", err)
		return nil
	}
	candidates, err := c.extractor.Extract(html)
	if err != nil {
		c.logger.Warn("extraction failed, treating step as empty", "error", err)
		return nil
	}
	return candidates
}

// sleep waits for the settle delay, honoring cancellation.
func (c *Collector) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
