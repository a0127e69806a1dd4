package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// TableFormatter formats a registry report as a human-readable table.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// Format writes the report as a table.
func (f *TableFormatter) Format(report *Report) error {
	fmt.Fprintf(f.writer, "Registry build: %s\n", report.BuildID)
	fmt.Fprintln(f.writer)

	if len(report.Templates) == 0 {
		fmt.Fprintln(f.writer, "No templates.")
		fmt.Fprintln(f.writer)
		f.formatSummary(report.Summary)
		return nil
	}

	fmt.Fprintln(f.writer, "Templates:")
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	for _, tpl := range report.Templates {
		f.formatTemplate(tpl)
	}
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	fmt.Fprintln(f.writer)

	f.formatSummary(report.Summary)
	return nil
}

// formatTemplate formats a single template.
func (f *TableFormatter) formatTemplate(tpl TemplateReport) {
	fmt.Fprintf(f.writer, "%s [%s]\n", tpl.Name, tpl.Role)
	fmt.Fprintf(f.writer, "  Profile: %s → %s\n", tpl.Profile, tpl.Table)
	fmt.Fprintf(f.writer, "  Entity concepts: %s\n", formatIDs(tpl.EntityConceptIDs))
	if len(tpl.ValueConceptIDs) > 0 {
		fmt.Fprintf(f.writer, "  Value concepts:  %s\n", formatIDs(tpl.ValueConceptIDs))
	}
	if len(tpl.Groups) > 0 {
		fmt.Fprintf(f.writer, "  Groups: %s\n", strings.Join(tpl.Groups, ", "))
	}
	fmt.Fprintln(f.writer)
}

// formatSummary formats the summary statistics.
func (f *TableFormatter) formatSummary(summary Summary) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	fmt.Fprintf(f.writer, "Templates: %d\n", summary.Templates)
	fmt.Fprintf(f.writer, "Concepts:  %d\n", summary.Concepts)
	fmt.Fprintf(f.writer, "Groups:    %d\n", summary.Groups)

	if len(summary.ByRole) > 0 {
		roles := make([]string, 0, len(summary.ByRole))
		for role := range summary.ByRole {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		fmt.Fprintln(f.writer, "By role:")
		for _, role := range roles {
			fmt.Fprintf(f.writer, "  %s: %d\n", role, summary.ByRole[role])
		}
	}
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
}
