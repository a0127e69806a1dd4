package main

import (
	"github.com/spf13/cobra"

	"github.com/semreg-dev/semreg/internal/output"
)

var docsOut string

// docsCmd represents the docs command.
var docsCmd = &cobra.Command{
	Use:   "docs <definitions.yaml> [more.yaml...]",
	Short: "Render markdown documentation for a compiled registry",
	Long: `Compile the definition documents and render markdown tables covering
every template and value set. The output is deterministic apart from the
build id, so it can be committed alongside the definitions.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runDocs(args)
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().StringVarP(&docsOut, "output", "o", "", "Output file path (default: stdout)")
}

func runDocs(paths []string) error {
	result, err := buildFromFiles(paths)
	if err != nil {
		return err
	}

	writer, closeOut, err := openOutput(docsOut)
	if err != nil {
		return err
	}
	defer closeOut()

	report := output.NewReport(result.Registry, result.Registry.Templates())
	report.ValueSets = output.NewValueSetReports(result.ValueSets)
	return output.NewMarkdownFormatter(writer).Format(report)
}
