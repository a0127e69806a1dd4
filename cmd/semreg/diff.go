package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	diffFrom []string
	diffTo   []string
)

// diffCmd represents the diff command.
var diffCmd = &cobra.Command{
	Use:   "diff --from old.yaml --to new.yaml",
	Short: "Compare two compiled registries template by template",
	Long: `Compile two definition sets and report the template-level differences:
templates only in the new set, templates only in the old set, and
templates whose role, profile or concept sets changed. Exits non-zero
when the registries differ.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runDiff()
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringSliceVar(&diffFrom, "from", nil, "Old definition files (comma-separated or repeated)")
	diffCmd.Flags().StringSliceVar(&diffTo, "to", nil, "New definition files (comma-separated or repeated)")
	_ = diffCmd.MarkFlagRequired("from")
	_ = diffCmd.MarkFlagRequired("to")
}

func runDiff() error {
	oldResult, err := buildFromFiles(diffFrom)
	if err != nil {
		return fmt.Errorf("compiling --from set: %w", err)
	}
	newResult, err := buildFromFiles(diffTo)
	if err != nil {
		return fmt.Errorf("compiling --to set: %w", err)
	}

	diff := oldResult.Registry.DiffAgainst(newResult.Registry)
	if diff.Empty() {
		fmt.Println("Registries are equivalent.")
		return nil
	}

	for _, name := range diff.Added {
		fmt.Printf("+ %s\n", name)
	}
	for _, name := range diff.Removed {
		fmt.Printf("- %s\n", name)
	}
	for _, name := range diff.Changed {
		fmt.Printf("~ %s\n", name)
	}
	return fmt.Errorf("registries differ: %d added, %d removed, %d changed",
		len(diff.Added), len(diff.Removed), len(diff.Changed))
}
