package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/polyratings-scraper/internal/config"
	"github.com/jonathan/polyratings-scraper/internal/professor"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.OutputPath = filepath.Join(t.TempDir(), "professors.json")
	return New(cfg, log.New(io.Discard))
}

func sampleProfessors() []professor.Professor {
	return []professor.Professor{
		{Name: "Jane Doe", Rating: 3.67, Link: "https://polyratings.dev/professor/2f8d3a84-90e1-4bfa-a163-9e7f22d2a1f3"},
		{Name: "John Smith", Rating: 2.1, Link: "https://polyratings.dev/professor/aaa111"},
		{Name: "O'Brien, Jr.", Rating: 4.0, Link: "https://polyratings.dev/professor/bbb-222"},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	records := sampleProfessors()

	require.NoError(t, st.Save(records))

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, records, loaded)
}

func TestSave_EmptySequenceFailsAndPreservesArtifact(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Save(sampleProfessors()))

	before, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	err = st.Save(nil)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)

	after, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed save must leave the existing artifact untouched")
}

func TestSave_InvalidRecordFailsAndPreservesArtifact(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Save(sampleProfessors()))

	before, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	bad := append(sampleProfessors(), professor.Professor{
		Name: "X", Rating: 9.9, Link: "https://polyratings.dev/professor/zzz",
	})
	require.Error(t, st.Save(bad))

	after, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSave_RejectsDuplicateLinks(t *testing.T) {
	st := newTestStore(t)
	records := sampleProfessors()
	records = append(records, records[0])

	err := st.Save(records)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestSave_ArtifactShape(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Save(sampleProfessors()[:1]))

	data, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	// Human-indented JSON array with fixed field order.
	assert.Contains(t, string(data), "[\n  {\n    \"name\": \"Jane Doe\",\n    \"rating\": 3.67,\n    \"link\":")
}

func TestLoad_MalformedFileFails(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(st.Path()), 0o755))
	require.NoError(t, os.WriteFile(st.Path(), []byte(`{"not": "an array"}`), 0o644))

	_, err := st.Load()
	assert.Error(t, err)
}

func TestLoad_SingleBadRecordFailsWholeLoad(t *testing.T) {
	st := newTestStore(t)
	content := `[
  {"name": "Jane Doe", "rating": 3.5, "link": "https://polyratings.dev/professor/aaa111"},
  {"name": "John Smith", "rating": 5.5, "link": "https://polyratings.dev/professor/bbb222"}
]`
	require.NoError(t, os.WriteFile(st.Path(), []byte(content), 0o644))

	_, err := st.Load()
	assert.Error(t, err, "out-of-range rating must fail the whole load")
}

func TestLoad_RejectsAdditionalProperties(t *testing.T) {
	st := newTestStore(t)
	content := `[
  {"name": "Jane Doe", "rating": 3.5, "link": "https://polyratings.dev/professor/aaa111", "department": "CSC"}
]`
	require.NoError(t, os.WriteFile(st.Path(), []byte(content), 0o644))

	_, err := st.Load()
	assert.Error(t, err)
}

func TestLoad_MissingFileFails(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Load()
	assert.Error(t, err)
}

func TestMetadata_RoundTrip(t *testing.T) {
	st := newTestStore(t)

	scrapedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.WriteMetadata(Metadata{ScrapedAt: scrapedAt, TotalProfessors: 3}))

	meta, err := st.LoadMetadata()
	require.NoError(t, err)
	assert.True(t, meta.ScrapedAt.Equal(scrapedAt))
	assert.Equal(t, 3, meta.TotalProfessors)

	assert.Equal(t, filepath.Join(filepath.Dir(st.Path()), "professors.meta.json"), st.MetaPath())
}

func TestStore_CustomBaseURLPattern(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "https://mirror.example.org"
	cfg.OutputPath = filepath.Join(t.TempDir(), "professors.json")
	st := New(cfg, log.New(io.Discard))

	require.NoError(t, st.Save([]professor.Professor{
		{Name: "Jane Doe", Rating: 3.5, Link: "https://mirror.example.org/professor/aaa111"},
	}))

	err := st.Save([]professor.Professor{
		{Name: "Jane Doe", Rating: 3.5, Link: "https://polyratings.dev/professor/aaa111"},
	})
	assert.Error(t, err)
}
