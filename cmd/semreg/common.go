package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/semreg-dev/semreg/config"
	"github.com/semreg-dev/semreg/internal/output"
	"github.com/semreg-dev/semreg/registry"
	"github.com/semreg-dev/semreg/semantic"
)

// buildResult bundles everything compiled from a set of documents.
type buildResult struct {
	Registry  *registry.Registry
	ValueSets *registry.ValueSets
}

// buildFromFiles loads the given documents and compiles them into one
// registry. Definitions from all files share a single namespace, so a
// concept declared in one file can be referenced from another.
func buildFromFiles(paths []string) (*buildResult, error) {
	docs, err := config.LoadDocuments(paths...)
	if err != nil {
		return nil, err
	}

	var (
		units     []semantic.Unit
		profiles  []*semantic.CDMProfile
		valueSets []*semantic.ValueSet
		fragments []*semantic.Fragment
	)
	for _, doc := range docs {
		docUnits, err := doc.SemanticUnits()
		if err != nil {
			return nil, err
		}
		units = append(units, docUnits...)
		profiles = append(profiles, doc.CDMProfiles()...)
		valueSets = append(valueSets, doc.SemanticValueSets()...)
		fragments = append(fragments, doc.Fragment())
	}

	reg, err := registry.Build(units, profiles, fragments...)
	if err != nil {
		return nil, err
	}

	// Value sets resolve against the same unit namespace.
	index, err := registry.NewIndex(units)
	if err != nil {
		return nil, err
	}
	interp := registry.NewInterpolator(index)
	for _, vs := range valueSets {
		if err := interp.ResolveValueSet(vs); err != nil {
			return nil, err
		}
	}
	compiled, err := registry.CompileValueSets(valueSets)
	if err != nil {
		return nil, err
	}

	slog.Debug("registry compiled",
		"build_id", reg.BuildID(),
		"files", len(paths),
		"templates", reg.Summarize().Templates)

	return &buildResult{Registry: reg, ValueSets: compiled}, nil
}

// openOutput returns the destination writer for --output, defaulting to
// stdout. The returned closer is a no-op for stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

// newFormatter selects the report formatter for --format.
func newFormatter(w io.Writer, format string) (output.Formatter, error) {
	switch format {
	case "table":
		return output.NewTableFormatter(w), nil
	case "json":
		return output.NewJSONFormatter(w, true), nil
	case "yaml":
		return output.NewYAMLFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: table, json, yaml)", format)
	}
}
