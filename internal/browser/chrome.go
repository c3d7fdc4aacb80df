package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/polyratings-scraper/internal/config"
)

// Chrome renders pages in a headless Chrome instance via chromedp.
// Requires Chrome/Chromium to be installed on the system.
type Chrome struct {
	ctx        context.Context
	cancelTab  context.CancelFunc
	cancelExec context.CancelFunc

	timeout    time.Duration
	maxRetries int
	logger     *log.Logger
}

// NavigationError reports a navigation failure after exhausting retries.
// It is fatal to the run.
type NavigationError struct {
	URL      string
	Attempts int
	Cause    error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Cause)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}

// NewChrome starts a headless browser configured from cfg. The caller must
// Close it.
func NewChrome(ctx context.Context, cfg config.Config, logger *log.Logger) (*Chrome, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(int(cfg.WindowWidth), int(cfg.WindowHeight)),
	)

	allocCtx, cancelExec := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so a missing Chrome binary surfaces
	// here instead of on first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelExec()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Chrome{
		ctx:        tabCtx,
		cancelTab:  cancelTab,
		cancelExec: cancelExec,
		timeout:    cfg.RequestTimeout,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}, nil
}

// Navigate loads url, retrying on timeout up to the configured bound. Failure
// after the last attempt returns a NavigationError.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		timeoutCtx, cancel := context.WithTimeout(c.ctx, c.timeout)
		err := chromedp.Run(timeoutCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body"),
		)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < attempts {
			c.logger.Warn("navigation failed, retrying", "url", url, "attempt", attempt, "error", err)
		}
	}

	return &NavigationError{URL: url, Attempts: attempts, Cause: lastErr}
}

// Snapshot returns the outer HTML of the document. chromedp actions must run
// against the tab context; caller cancellation is honored before the call and
// cooperatively between collector steps.
func (c *Chrome) Snapshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	if err := chromedp.Run(c.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to capture snapshot: %w", err)
	}
	return html, nil
}

// ScrollExtent reads document.body.scrollHeight.
func (c *Chrome) ScrollExtent(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var height int64
	err := chromedp.Run(c.ctx,
		chromedp.Evaluate(`document.body.scrollHeight`, &height),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}
	return height, nil
}

// ScrollTo moves the window to the given vertical position.
func (c *Chrome) ScrollTo(ctx context.Context, pos int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := chromedp.Run(c.ctx,
		chromedp.Evaluate(fmt.Sprintf(`window.scrollTo(0, %d); undefined`, pos), nil),
	)
	if err != nil {
		return fmt.Errorf("failed to scroll to %d: %w", pos, err)
	}
	return nil
}

// Close shuts down the tab and the browser process.
func (c *Chrome) Close() error {
	c.cancelTab()
	c.cancelExec()
	return nil
}
