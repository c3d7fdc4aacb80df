package professor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/polyratings-scraper/internal/config"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nameStripRe  = regexp.MustCompile(`[^A-Za-z\s,\.'-]`)
	namePattern  = regexp.MustCompile(`^[A-Za-z\s,\.'-]+$`)
	ratingRe     = regexp.MustCompile(`\d+\.?\d*`)
)

// Validator turns candidates into validated Professor records. The link
// pattern is derived from the configured base URL, so the whole pipeline can
// be pointed at a mirror in tests.
type Validator struct {
	linkRe   *regexp.Regexp
	validate *validator.Validate
}

// NewValidator builds a Validator for the given config.
func NewValidator(cfg config.Config) *Validator {
	return &Validator{
		linkRe:   regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.BaseURL) + `/professor/[a-f0-9-]+$`),
		validate: validator.New(),
	}
}

// CleanName collapses internal whitespace runs, trims the ends, and strips
// every character outside letters, space, comma, period, apostrophe and
// hyphen. An empty result means the name is unusable.
func CleanName(name string) string {
	name = whitespaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
	return strings.TrimSpace(nameStripRe.ReplaceAllString(name, ""))
}

// ParseRating extracts the first decimal-number substring from ratingText,
// checks it against the [0.0, 4.0] range and rounds to two decimal places.
func ParseRating(ratingText string) (float64, error) {
	match := ratingRe.FindString(strings.TrimSpace(ratingText))
	if match == "" {
		return 0, &RejectionError{Field: "rating", Message: fmt.Sprintf("no number found in %q", ratingText)}
	}

	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, &RejectionError{Field: "rating", Message: fmt.Sprintf("unparseable value %q", match), Cause: err}
	}

	if rating < config.MinRating || rating > config.MaxRating {
		return 0, &RejectionError{
			Field:   "rating",
			Message: fmt.Sprintf("%.2f outside range [%.1f, %.1f]", rating, config.MinRating, config.MaxRating),
		}
	}

	return math.Round(rating*100) / 100, nil
}

// ValidateLink checks that link matches <base>/professor/<token> where the
// token is lowercase hex digits and hyphens. Deliberately looser than a strict
// RFC-4122 parse; the site has historically served non-canonical tokens.
func (v *Validator) ValidateLink(link string) error {
	if link == "" {
		return &RejectionError{Field: "link", Message: "empty link"}
	}
	if !v.linkRe.MatchString(link) {
		return &RejectionError{Field: "link", Message: fmt.Sprintf("malformed profile link %q", link)}
	}
	return nil
}

// New validates a candidate and assembles the Professor record. Each stage
// rejects independently; a rejection at any stage rejects the whole candidate.
// The assembled record is re-checked against the same structural constraints
// as a final gate against composition errors.
func (v *Validator) New(c Candidate) (Professor, error) {
	name := CleanName(c.Name)
	if name == "" {
		return Professor{}, &RejectionError{Field: "name", Message: fmt.Sprintf("empty after cleaning %q", c.Name)}
	}

	rating, err := ParseRating(c.RatingText)
	if err != nil {
		return Professor{}, err
	}

	if err := v.ValidateLink(c.Link); err != nil {
		return Professor{}, err
	}

	p := Professor{Name: name, Rating: rating, Link: c.Link}
	if err := v.Check(p); err != nil {
		return Professor{}, err
	}
	return p, nil
}

// Check re-validates an assembled record against the full schema: struct tags
// for presence, length and range, plus the regex constraints the tags cannot
// express. Intentionally redundant with the per-field stages in New.
func (v *Validator) Check(p Professor) error {
	if err := v.validate.Struct(p); err != nil {
		return &RejectionError{Field: "record", Message: "structural validation failed", Cause: err}
	}
	if !namePattern.MatchString(p.Name) {
		return &RejectionError{Field: "name", Message: fmt.Sprintf("disallowed characters in %q", p.Name)}
	}
	if err := v.ValidateLink(p.Link); err != nil {
		return err
	}
	return nil
}
