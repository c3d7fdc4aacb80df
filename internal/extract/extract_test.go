package extract

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *Extractor {
	return New("https://polyratings.dev", log.New(io.Discard))
}

func card(href, name, rating string) string {
	nameHTML := ""
	if name != "" {
		nameHTML = `<h3 class="text-3xl">` + name + `</h3>`
	}
	ratingHTML := ""
	if rating != "" {
		ratingHTML = `<div class="flex items-center justify-end"><div>Rating</div><div>` + rating + `</div></div>`
	}
	return `<div class="absolute"><a href="` + href + `">` + nameHTML + ratingHTML + `</a></div>`
}

func page(cards ...string) string {
	body := ""
	for _, c := range cards {
		body += c
	}
	return `<html><body><div class="relative">` + body + `</div></body></html>`
}

func TestExtract_SingleCard(t *testing.T) {
	html := page(card("/professor/2f8d3a84-90e1-4bfa-a163-9e7f22d2a1f3", "Jane Doe", "3.67"))

	candidates, err := newTestExtractor().Extract(html)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "Jane Doe", candidates[0].Name)
	assert.Equal(t, "3.67", candidates[0].RatingText)
	assert.Equal(t, "https://polyratings.dev/professor/2f8d3a84-90e1-4bfa-a163-9e7f22d2a1f3", candidates[0].Link)
}

func TestExtract_MultipleCards(t *testing.T) {
	html := page(
		card("/professor/aaa111", "Jane Doe", "3.67"),
		card("/professor/bbb222", "John Smith", "2.10"),
		card("/professor/ccc333", "Ada Lovelace", "4.00"),
	)

	candidates, err := newTestExtractor().Extract(html)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "https://polyratings.dev/professor/bbb222", candidates[1].Link)
}

func TestExtract_SkipsCardsWithoutProfileLink(t *testing.T) {
	html := page(
		card("/professor/aaa111", "Jane Doe", "3.67"),
		card("/about", "Not A Professor", "1.0"),
		`<div class="absolute"><a>No Href</a></div>`,
	)

	candidates, err := newTestExtractor().Extract(html)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://polyratings.dev/professor/aaa111", candidates[0].Link)
}

func TestExtract_MissingNameAndRatingAreEmpty(t *testing.T) {
	html := page(card("/professor/aaa111", "", ""))

	candidates, err := newTestExtractor().Extract(html)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	// Not an error at this stage; the validator decides.
	assert.Equal(t, "", candidates[0].Name)
	assert.Equal(t, "", candidates[0].RatingText)
}

func TestExtract_RatingIsLastChildOfContainer(t *testing.T) {
	html := page(`<div class="absolute"><a href="/professor/aaa111">` +
		`<h3 class="text-3xl">Jane Doe</h3>` +
		`<div class="flex items-center justify-end"><div>Overall</div><div>ignored</div><div>3.2</div></div>` +
		`</a></div>`)

	candidates, err := newTestExtractor().Extract(html)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "3.2", candidates[0].RatingText)
}

func TestExtract_TrimsNameWhitespace(t *testing.T) {
	html := page(card("/professor/aaa111", "  Jane Doe  ", " 3.67 "))

	candidates, err := newTestExtractor().Extract(html)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Jane Doe", candidates[0].Name)
	assert.Equal(t, "3.67", candidates[0].RatingText)
}

func TestExtract_EmptyDocument(t *testing.T) {
	candidates, err := newTestExtractor().Extract("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestExtract_BaseURLTrailingSlash(t *testing.T) {
	e := New("https://polyratings.dev/", log.New(io.Discard))
	candidates, err := e.Extract(page(card("/professor/aaa111", "Jane Doe", "3.0")))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://polyratings.dev/professor/aaa111", candidates[0].Link)
}
