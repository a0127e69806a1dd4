package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/semreg-dev/semreg/internal/output"
	"github.com/semreg-dev/semreg/registry"
	"github.com/semreg-dev/semreg/semantic"
)

var (
	compileFormat  string
	compileOut     string
	compileRole    string
	compileGroup   string
	compileFilter  string
	compileConcept int64
)

// compileCmd represents the compile command.
var compileCmd = &cobra.Command{
	Use:   "compile <definitions.yaml> [more.yaml...]",
	Short: "Compile definitions and list the resulting registry templates",
	Long: `Compile one or more definition documents into a registry and render the
resulting templates.

Selection:
  --role measurement            List templates registered under a role
  --group staging_templates     List members of a registry group
  --concept 4111628             List templates accepting a concept id
  --filter "role == 'finding'"  Advanced filtering expression`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runCompile(args)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVar(&compileFormat, "format", "table", "Output format: table, json, yaml")
	compileCmd.Flags().StringVarP(&compileOut, "output", "o", "", "Output file path (default: stdout)")
	compileCmd.Flags().StringVar(&compileRole, "role", "", "Select templates registered under this role")
	compileCmd.Flags().StringVar(&compileGroup, "group", "", "Select templates in this registry group")
	compileCmd.Flags().Int64Var(&compileConcept, "concept", 0, "Select templates whose concept slot accepts this concept id")
	compileCmd.Flags().StringVar(&compileFilter, "filter", "", "Advanced filter expression (e.g. \"role == 'measurement' && has_value\")")
}

func runCompile(paths []string) error {
	result, err := buildFromFiles(paths)
	if err != nil {
		return err
	}
	reg := result.Registry

	templates, err := selectTemplates(reg)
	if err != nil {
		return err
	}

	slog.Info("registry compiled",
		"build_id", reg.BuildID(),
		"templates", reg.Summarize().Templates,
		"selected", len(templates))

	writer, closeOut, err := openOutput(compileOut)
	if err != nil {
		return err
	}
	defer closeOut()

	formatter, err := newFormatter(writer, compileFormat)
	if err != nil {
		return err
	}
	return formatter.Format(output.NewReport(reg, templates))
}

// selectTemplates applies the compile command's selection flags in order:
// exact selectors first, then the filter expression over the result.
func selectTemplates(reg *registry.Registry) ([]*registry.RuntimeTemplate, error) {
	var templates []*registry.RuntimeTemplate

	switch {
	case compileRole != "":
		templates = reg.ByRole(compileRole)
	case compileGroup != "":
		members, ok := reg.Group(compileGroup)
		if !ok {
			return nil, fmt.Errorf("unknown registry group %q", compileGroup)
		}
		templates = members
	case compileConcept != 0:
		templates = reg.TemplatesForConcept(semantic.ConceptID(compileConcept))
	default:
		templates = reg.Templates()
	}

	if compileFilter == "" {
		return templates, nil
	}

	filter, err := registry.CompileFilter(compileFilter)
	if err != nil {
		return nil, fmt.Errorf("invalid --filter expression: %w\nExample: role == 'measurement' && 4111628 in concept_ids", err)
	}
	var out []*registry.RuntimeTemplate
	for _, tpl := range templates {
		ok, err := filter.Match(tpl)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, tpl)
		}
	}
	return out, nil
}
