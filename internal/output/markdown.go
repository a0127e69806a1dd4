package output

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter renders a registry report as markdown documentation
// tables, suitable for committing alongside the definition files.
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter.
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the report as markdown.
func (f *MarkdownFormatter) Format(report *Report) error {
	fmt.Fprintf(f.writer, "# Semantic registry\n\n")
	fmt.Fprintf(f.writer, "Build `%s` — %d template(s), %d concept(s), %d group(s).\n\n",
		report.BuildID, report.Summary.Templates, report.Summary.Concepts, report.Summary.Groups)

	if len(report.Templates) > 0 {
		fmt.Fprintf(f.writer, "## Templates\n\n")
		fmt.Fprintln(f.writer, "| Name | Role | Profile | Table | Entity concepts | Value concepts | Groups |")
		fmt.Fprintln(f.writer, "|------|------|---------|-------|-----------------|----------------|--------|")
		for _, tpl := range report.Templates {
			fmt.Fprintf(f.writer, "| %s | %s | %s | %s | %s | %s | %s |\n",
				tpl.Name, tpl.Role, tpl.Profile, tpl.Table,
				formatIDs(tpl.EntityConceptIDs),
				formatIDs(tpl.ValueConceptIDs),
				strings.Join(tpl.Groups, ", "))
		}
		fmt.Fprintln(f.writer)
	}

	for _, vs := range report.ValueSets {
		fmt.Fprintf(f.writer, "## Value set `%s`\n\n", vs.Name)
		fmt.Fprintln(f.writer, "| Unit | Kind | Label | Concept id |")
		fmt.Fprintln(f.writer, "|------|------|-------|------------|")
		for _, unit := range vs.Units {
			for _, label := range unit.Labels {
				fmt.Fprintf(f.writer, "| %s | %s | %s | %d |\n",
					unit.Name, unit.Kind, label.Label, label.ConceptID)
			}
		}
		fmt.Fprintln(f.writer)
	}
	return nil
}
