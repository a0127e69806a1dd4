package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate <definitions.yaml> [more.yaml...]",
	Short: "Validate semantic definition documents",
	Long: `Load one or more definition documents, check them against the document
schema and compile them. Validation covers YAML structure, schema version
compatibility, duplicate names, unresolved references, parent cycles and
profile bindings. The compiled registry is discarded; only errors are
reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runValidate(args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(paths []string) error {
	slog.Debug("validating documents", "files", len(paths))

	result, err := buildFromFiles(paths)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	summary := result.Registry.Summarize()
	fmt.Printf("OK: %d file(s), %d template(s), %d concept(s), %d group(s)\n",
		len(paths), summary.Templates, summary.Concepts, summary.RegistryGroups)
	return nil
}
