// Package extract parses professor cards out of a rendered snapshot of the
// PolyRatings listing page.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/jonathan/polyratings-scraper/internal/professor"
)

// Selectors for the listing markup. These are the site contract: virtualized
// cards are anchors under absolutely-positioned wrappers, the name is the
// card heading, and the rating sits in the last cell of the right-aligned row.
const (
	cardSelector   = "div.absolute > a"
	nameSelector   = "h3.text-3xl"
	ratingSelector = "div.flex.items-center.justify-end > div:last-child"

	profilePrefix = "/professor/"
)

// ParseError represents a failure to parse a snapshot at all. Individual
// malformed cards are skipped, never fatal.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extract error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Extractor parses snapshots into candidate records.
type Extractor struct {
	baseURL string
	logger  *log.Logger
}

// New returns an Extractor that joins relative profile paths onto baseURL.
func New(baseURL string, logger *log.Logger) *Extractor {
	return &Extractor{baseURL: strings.TrimSuffix(baseURL, "/"), logger: logger}
}

// Extract parses one snapshot and returns every professor card visible in it.
// Cards without a profile link are skipped with a warning. Name and rating may
// be empty at this stage; the validator decides their fate.
func (e *Extractor) Extract(html string) ([]professor.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Message: "failed to parse snapshot", Cause: err}
	}

	var candidates []professor.Candidate
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Attr("href")
		if !ok || !strings.HasPrefix(href, profilePrefix) {
			e.logger.Warn("skipping card without profile link", "href", href)
			return
		}

		name := strings.TrimSpace(card.Find(nameSelector).First().Text())

		var ratingText string
		if rating := card.Find(ratingSelector).First(); rating.Length() > 0 {
			ratingText = strings.TrimSpace(rating.Text())
		}

		candidates = append(candidates, professor.Candidate{
			Name:       name,
			RatingText: ratingText,
			Link:       e.baseURL + href,
		})
	})

	return candidates, nil
}
