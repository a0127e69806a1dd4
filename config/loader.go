package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"
)

// SupportedSchemaMajor is the definition format major version this build
// understands. Documents without a schema_version are accepted as current.
const SupportedSchemaMajor = 1

// LoadDocument loads and validates one definition document from a YAML
// file.
func LoadDocument(path string) (*Document, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	doc, err := LoadDocumentFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadDocumentFromReader loads a document from an io.Reader. Useful for
// testing with in-memory YAML data.
func LoadDocumentFromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition document: %w", err)
	}

	if err := ValidateDocumentBytes(data); err != nil {
		return nil, err
	}

	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode definition YAML: %w", err)
	}

	if err := checkSchemaVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadDocuments loads several definition files concurrently, returning the
// documents in argument order. The first failure cancels the rest.
func LoadDocuments(paths ...string) ([]*Document, error) {
	docs := make([]*Document, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			doc, err := LoadDocument(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// checkSchemaVersion rejects documents authored for another format major.
func checkSchemaVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid schema_version %q: %w", version, err)
	}
	if v.Major() != SupportedSchemaMajor {
		return fmt.Errorf("unsupported schema_version %q: this build supports major %d", version, SupportedSchemaMajor)
	}
	return nil
}
