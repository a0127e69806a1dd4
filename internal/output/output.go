// Package output renders compiled registries for the CLI in table, JSON,
// and YAML form.
package output

import (
	"fmt"
	"sort"

	"github.com/semreg-dev/semreg/registry"
	"github.com/semreg-dev/semreg/semantic"
)

// Formatter writes a registry report to its destination.
type Formatter interface {
	Format(report *Report) error
}

// Report is the serializable view of a compiled registry.
type Report struct {
	BuildID   string           `json:"build_id" yaml:"build_id"`
	Summary   Summary          `json:"summary" yaml:"summary"`
	Templates []TemplateReport `json:"templates" yaml:"templates"`
	ValueSets []ValueSetReport `json:"valuesets,omitempty" yaml:"valuesets,omitempty"`
}

// Summary holds the registry's headline counts.
type Summary struct {
	Concepts  int            `json:"concepts" yaml:"concepts"`
	Templates int            `json:"templates" yaml:"templates"`
	Groups    int            `json:"groups" yaml:"groups"`
	ByRole    map[string]int `json:"by_role,omitempty" yaml:"by_role,omitempty"`
}

// TemplateReport is one registry template flattened for display.
type TemplateReport struct {
	Name             string   `json:"name" yaml:"name"`
	Role             string   `json:"role" yaml:"role"`
	Profile          string   `json:"profile" yaml:"profile"`
	Table            string   `json:"table" yaml:"table"`
	EntityConceptIDs []int64  `json:"entity_concept_ids" yaml:"entity_concept_ids"`
	ValueConceptIDs  []int64  `json:"value_concept_ids,omitempty" yaml:"value_concept_ids,omitempty"`
	Groups           []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// ValueSetReport is one compiled value set flattened for display.
type ValueSetReport struct {
	Name  string         `json:"name" yaml:"name"`
	Units []ValueSetUnit `json:"units" yaml:"units"`
}

// ValueSetUnit is one value-set member with its label table.
type ValueSetUnit struct {
	Name   string  `json:"name" yaml:"name"`
	Kind   string  `json:"kind" yaml:"kind"`
	Labels []Label `json:"labels" yaml:"labels"`
}

// Label pairs a display label with its concept id.
type Label struct {
	Label     string `json:"label" yaml:"label"`
	ConceptID int64  `json:"concept_id" yaml:"concept_id"`
}

// NewValueSetReports flattens compiled value sets for display.
func NewValueSetReports(sets *registry.ValueSets) []ValueSetReport {
	var out []ValueSetReport
	for _, name := range sets.Names() {
		vs, ok := sets.Set(name)
		if !ok {
			continue
		}
		report := ValueSetReport{Name: vs.Name()}
		for _, unitName := range vs.UnitNames() {
			unit, ok := vs.Unit(unitName)
			if !ok {
				continue
			}
			vu := ValueSetUnit{Name: unit.Name(), Kind: unit.Kind().String()}
			for _, label := range unit.Labels() {
				id, _ := unit.Lookup(label)
				vu.Labels = append(vu.Labels, Label{Label: label, ConceptID: int64(id)})
			}
			report.Units = append(report.Units, vu)
		}
		out = append(out, report)
	}
	return out
}

// NewReport builds a report over the given templates. The template slice may
// be a filtered subset, but the summary always describes the whole registry.
func NewReport(reg *registry.Registry, templates []*registry.RuntimeTemplate) *Report {
	s := reg.Summarize()
	report := &Report{
		BuildID: reg.BuildID(),
		Summary: Summary{
			Concepts:  s.Concepts,
			Templates: s.Templates,
			Groups:    s.RegistryGroups,
			ByRole:    s.ByRole,
		},
	}

	membership := groupMembership(reg)
	for _, tpl := range templates {
		report.Templates = append(report.Templates, TemplateReport{
			Name:             tpl.Name,
			Role:             tpl.Role,
			Profile:          tpl.Profile.Name,
			Table:            tpl.Profile.CDMTable,
			EntityConceptIDs: conceptIDs(tpl.EntityConceptIDs),
			ValueConceptIDs:  conceptIDs(tpl.ValueConceptIDs),
			Groups:           membership[tpl.Name],
		})
	}
	return report
}

func conceptIDs(ids []semantic.ConceptID) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func groupMembership(reg *registry.Registry) map[string][]string {
	membership := make(map[string][]string)
	for _, groupName := range reg.GroupNames() {
		members, ok := reg.Group(groupName)
		if !ok {
			continue
		}
		for _, tpl := range members {
			membership[tpl.Name] = append(membership[tpl.Name], groupName)
		}
	}
	for _, groups := range membership {
		sort.Strings(groups)
	}
	return membership
}

func formatIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", id)
	}
	return out
}
