// Package browser provides the rendering-engine boundary for the collector:
// a Renderer contract and a chromedp-backed implementation.
package browser

import "context"

// Renderer is the contract the collector needs from a rendering engine. The
// production implementation is Chrome via chromedp; tests use a synthetic
// renderer that scripts snapshots per scroll position.
type Renderer interface {
	// Navigate loads the given URL and blocks until the document is ready.
	Navigate(ctx context.Context, url string) error
	// Snapshot returns the fully materialized markup at this point in time.
	Snapshot(ctx context.Context) (string, error)
	// ScrollExtent returns the current total scrollable height in pixels.
	// Lazily loaded content may grow it between calls.
	ScrollExtent(ctx context.Context) (int64, error)
	// ScrollTo moves the viewport to the given vertical position.
	ScrollTo(ctx context.Context, pos int64) error
	// Close releases the underlying engine.
	Close() error
}
