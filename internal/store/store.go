// Package store persists the validated professor set as a JSON artifact with
// a freshness-metadata sidecar. Every save and load passes through a JSON
// Schema gate that mirrors the per-record validator, so the two checks guard
// their composition points independently.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/polyratings-scraper/internal/config"
	"github.com/jonathan/polyratings-scraper/internal/professor"
)

// professorSchema is the per-record schema. The link pattern is interpolated
// with the configured base origin at construction.
const professorSchemaTemplate = `{
	"type": "object",
	"properties": {
		"name": {
			"type": "string",
			"minLength": 2,
			"maxLength": 100,
			"pattern": "^[A-Za-z\\s,\\.'-]+$"
		},
		"rating": {
			"type": "number",
			"minimum": 0.0,
			"maximum": 4.0
		},
		"link": {
			"type": "string",
			"format": "uri",
			"pattern": "%s"
		}
	},
	"required": ["name", "rating", "link"],
	"additionalProperties": false
}`

const listSchemaTemplate = `{
	"type": "array",
	"items": %s,
	"minItems": 1
}`

// Metadata is the companion artifact consumed by the freshness monitor.
type Metadata struct {
	ScrapedAt       time.Time `json:"scraped_at"`
	TotalProfessors int       `json:"total_professors"`
}

// SchemaError reports a bulk schema-validation failure. The existing artifact
// is left untouched when a save fails this gate.
type SchemaError struct {
	Path     string
	Failures []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema validation failed for %s: %d violation(s): %v", e.Path, len(e.Failures), e.Failures)
}

// Store reads and writes the professors artifact.
type Store struct {
	path       string
	metaPath   string
	listSchema gojsonschema.JSONLoader
	validator  *professor.Validator
	logger     *log.Logger
}

// New builds a Store for the artifact paths in cfg.
func New(cfg config.Config, logger *log.Logger) *Store {
	linkPattern := fmt.Sprintf(`^%s/professor/[a-f0-9-]+$`, jsonPatternQuote(cfg.BaseURL))
	recordSchema := fmt.Sprintf(professorSchemaTemplate, linkPattern)
	listSchema := fmt.Sprintf(listSchemaTemplate, recordSchema)

	return &Store{
		path:       cfg.OutputPath,
		metaPath:   cfg.ResolvedMetaPath(),
		listSchema: gojsonschema.NewStringLoader(listSchema),
		validator:  professor.NewValidator(cfg),
		logger:     logger,
	}
}

// Path returns the artifact path.
func (s *Store) Path() string { return s.path }

// MetaPath returns the metadata sidecar path.
func (s *Store) MetaPath() string { return s.metaPath }

// Save validates the whole sequence and writes it to the artifact path,
// fully replacing prior contents. The write goes through a temp file and
// rename, so any validation or I/O failure leaves the existing artifact
// untouched.
func (s *Store) Save(records []professor.Professor) error {
	if len(records) == 0 {
		return &SchemaError{Path: s.path, Failures: []string{"professor list must not be empty"}}
	}

	// Per-record gate first, for precise failure reasons. Links must be
	// unique; the collector guarantees it, and the store re-checks it.
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if err := s.validator.Check(rec); err != nil {
			return fmt.Errorf("record %d (%s) failed validation: %w", i, rec.Link, err)
		}
		if _, dup := seen[rec.Link]; dup {
			return &SchemaError{Path: s.path, Failures: []string{fmt.Sprintf("duplicate link %s", rec.Link)}}
		}
		seen[rec.Link] = struct{}{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize professors: %w", err)
	}

	// Bulk gate on the serialized bytes, independent of the record structs.
	if err := s.checkSchema(data); err != nil {
		return err
	}

	if err := s.writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	s.logger.Info("saved professors artifact", "count", len(records), "path", s.path)
	return nil
}

// WriteMetadata writes the freshness sidecar next to the artifact.
func (s *Store) WriteMetadata(meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}
	if err := s.writeAtomic(s.metaPath, data); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// Load parses the artifact and re-validates every record. A malformed file or
// any single malformed record fails the whole load; there are no partial
// loads.
func (s *Store) Load() ([]professor.Professor, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", s.path, err)
	}

	if err := s.checkSchema(data); err != nil {
		return nil, err
	}

	var records []professor.Professor
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", s.path, err)
	}

	for i, rec := range records {
		if err := s.validator.Check(rec); err != nil {
			return nil, fmt.Errorf("record %d (%s) failed validation on load: %w", i, rec.Link, err)
		}
	}

	return records, nil
}

// LoadMetadata reads the freshness sidecar.
func (s *Store) LoadMetadata() (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(s.metaPath)
	if err != nil {
		return meta, fmt.Errorf("failed to read metadata %s: %w", s.metaPath, err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse metadata %s: %w", s.metaPath, err)
	}
	return meta, nil
}

// checkSchema validates serialized artifact bytes against the list schema.
func (s *Store) checkSchema(data []byte) error {
	result, err := gojsonschema.Validate(s.listSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation could not run: %w", err)
	}
	if result.Valid() {
		return nil
	}

	failures := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		failures = append(failures, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return &SchemaError{Path: s.path, Failures: failures}
}

// writeAtomic writes data to path via a temp file in the same directory and
// an atomic rename.
func (s *Store) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if _, err := tmp.WriteString("\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// jsonPatternQuote escapes a literal string for use inside a JSON Schema
// regex pattern. Only the characters that appear in URLs need escaping.
func jsonPatternQuote(s string) string {
	var out []rune
	for _, r := range s {
		switch r {
		case '.', '/', '+', '?', '*', '(', ')', '[', ']', '{', '}', '^', '$', '|':
			out = append(out, '\\', '\\', r)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
