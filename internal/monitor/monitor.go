// Package monitor checks the scraped artifact for freshness and completeness
// and renders a health report.
package monitor

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/polyratings-scraper/internal/professor"
	"github.com/jonathan/polyratings-scraper/internal/store"
)

// Status is the overall health classification. Its integer value doubles as
// the process exit code.
type Status int

const (
	StatusHealthy  Status = 0
	StatusWarning  Status = 1
	StatusCritical Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "HEALTHY"
	case StatusWarning:
		return "WARNING"
	default:
		return "CRITICAL"
	}
}

// Thresholds from operating the scraper against the live site: the listing
// carries well over two thousand professors, so anything below that suggests
// a truncated run.
const (
	MaxDataAge = 24 * time.Hour

	goodCount     = 2000
	moderateCount = 1000
)

// Stats summarizes the artifact contents.
type Stats struct {
	Total          int
	AverageRating  float64
	Distribution   map[int]int // rating floor -> count
	CanonicalLinks int         // links whose token parses as a strict UUID
}

// Report is the full health assessment.
type Report struct {
	ScrapedAt time.Time
	Age       time.Duration
	Fresh     bool
	Stats     Stats
	Status    Status
}

// Check loads the artifact and its metadata from st and assesses them.
func Check(st *store.Store, now time.Time) (*Report, error) {
	records, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact: %w", err)
	}

	meta, err := st.LoadMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}

	report := &Report{
		ScrapedAt: meta.ScrapedAt,
		Age:       now.Sub(meta.ScrapedAt),
		Stats:     computeStats(records),
	}
	report.Fresh = report.Age >= 0 && report.Age <= MaxDataAge
	report.Status = classify(report)
	return report, nil
}

func computeStats(records []professor.Professor) Stats {
	stats := Stats{
		Total:        len(records),
		Distribution: make(map[int]int),
	}

	var sum float64
	for _, rec := range records {
		sum += rec.Rating
		stats.Distribution[int(math.Floor(rec.Rating))]++
		if _, canonical := professor.ProfileID(rec.Link); canonical {
			stats.CanonicalLinks++
		}
	}
	if stats.Total > 0 {
		stats.AverageRating = sum / float64(stats.Total)
	}
	return stats
}

func classify(r *Report) Status {
	switch {
	case r.Fresh && r.Stats.Total >= goodCount:
		return StatusHealthy
	case r.Fresh:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Printer renders health reports.
type Printer struct {
	out io.Writer
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

const reportWidth = 50

// Print renders the report in the operator-facing format.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Print(r *Report) {
	rule := strings.Repeat("=", reportWidth)

	fmt.Fprintln(p.out, rule)
	fmt.Fprintln(p.out, "POLYRATINGS SCRAPER HEALTH REPORT")
	fmt.Fprintln(p.out, rule)

	fmt.Fprintf(p.out, "Total professors: %d\n", r.Stats.Total)
	fmt.Fprintf(p.out, "Last scraped:     %s\n", r.ScrapedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(p.out, "Data age:         %s", r.Age.Round(time.Minute))
	if r.Fresh {
		fmt.Fprintln(p.out, " (fresh)")
	} else {
		fmt.Fprintln(p.out, " (STALE, older than 24h)")
	}

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Average rating:   %.2f\n", r.Stats.AverageRating)
	fmt.Fprintln(p.out, "Rating distribution:")

	floors := make([]int, 0, len(r.Stats.Distribution))
	for floor := range r.Stats.Distribution {
		floors = append(floors, floor)
	}
	sort.Ints(floors)
	for _, floor := range floors {
		count := r.Stats.Distribution[floor]
		pct := 0.0
		if r.Stats.Total > 0 {
			pct = float64(count) / float64(r.Stats.Total) * 100
		}
		bar := strings.Repeat("#", int(pct/5))
		fmt.Fprintf(p.out, "  %d: %5d (%5.1f%%) %s\n", floor, count, pct, bar)
	}

	fmt.Fprintln(p.out)
	canonicalPct := 0.0
	if r.Stats.Total > 0 {
		canonicalPct = float64(r.Stats.CanonicalLinks) / float64(r.Stats.Total) * 100
	}
	fmt.Fprintf(p.out, "Canonical UUID links: %d/%d (%.1f%%)\n", r.Stats.CanonicalLinks, r.Stats.Total, canonicalPct)

	fmt.Fprintln(p.out)
	switch {
	case r.Stats.Total < moderateCount:
		fmt.Fprintln(p.out, "Assessment: low professor count, scraper may not be working properly")
	case r.Stats.Total < goodCount:
		fmt.Fprintln(p.out, "Assessment: moderate professor count, some data may be missing")
	default:
		fmt.Fprintln(p.out, "Assessment: good professor count")
	}

	fmt.Fprintf(p.out, "Overall status: %s\n", r.Status)
}
