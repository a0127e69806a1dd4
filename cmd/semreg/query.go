package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/semreg-dev/semreg/registry"
	"github.com/semreg-dev/semreg/semantic"
)

var (
	queryAncestors   int64
	queryDescendants int64
	queryGroup       string
	queryValueSet    string
)

// queryCmd represents the query command.
var queryCmd = &cobra.Command{
	Use:   "query <definitions.yaml> [more.yaml...]",
	Short: "Run hierarchy and group queries against a compiled registry",
	Long: `Compile the definition documents and answer one traversal query.

Queries:
  --ancestors 4111628      Reflexive-transitive ancestor closure of a concept
  --descendants 4180790    All concepts at or below a concept
  --members tnm_findings   Flattened leaf concept ids of a semantic unit
  --valueset staging       Labels and ids of a compiled value set`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runQuery(args)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().Int64Var(&queryAncestors, "ancestors", 0, "Concept id to resolve ancestors for")
	queryCmd.Flags().Int64Var(&queryDescendants, "descendants", 0, "Concept id to resolve descendants for")
	queryCmd.Flags().StringVar(&queryGroup, "members", "", "Semantic unit name to flatten to leaf concept ids")
	queryCmd.Flags().StringVar(&queryValueSet, "valueset", "", "Value-set name to list labels for")
	queryCmd.MarkFlagsOneRequired("ancestors", "descendants", "members", "valueset")
	queryCmd.MarkFlagsMutuallyExclusive("ancestors", "descendants", "members", "valueset")
}

func runQuery(paths []string) error {
	result, err := buildFromFiles(paths)
	if err != nil {
		return err
	}
	reg := result.Registry

	switch {
	case queryAncestors != 0:
		ids, ok := reg.Ancestors(semantic.ConceptID(queryAncestors))
		if !ok {
			return fmt.Errorf("unknown concept id %d", queryAncestors)
		}
		return printJSON(map[string]any{"concept_id": queryAncestors, "ancestors": describeConcepts(reg, ids)})

	case queryDescendants != 0:
		ids, ok := reg.Descendants(semantic.ConceptID(queryDescendants))
		if !ok {
			return fmt.Errorf("unknown concept id %d", queryDescendants)
		}
		return printJSON(map[string]any{"concept_id": queryDescendants, "descendants": describeConcepts(reg, ids)})

	case queryGroup != "":
		ids, err := reg.GroupMembers(queryGroup)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"name": queryGroup, "concept_ids": ids})

	case queryValueSet != "":
		vs, ok := result.ValueSets.Set(queryValueSet)
		if !ok {
			return fmt.Errorf("unknown value set %q", queryValueSet)
		}
		units := make([]map[string]any, 0, len(vs.UnitNames()))
		for _, name := range vs.UnitNames() {
			unit, _ := vs.Unit(name)
			labels := make([]map[string]any, 0, len(unit.Labels()))
			for _, label := range unit.Labels() {
				id, _ := unit.Lookup(label)
				labels = append(labels, map[string]any{"label": label, "concept_id": id})
			}
			units = append(units, map[string]any{
				"name":   unit.Name(),
				"kind":   unit.Kind().String(),
				"labels": labels,
			})
		}
		return printJSON(map[string]any{"name": vs.Name(), "units": units})
	}

	return fmt.Errorf("no query specified")
}

// describeConcepts annotates traversal results with each concept's name
// and label.
func describeConcepts(reg *registry.Registry, ids []semantic.ConceptID) []map[string]any {
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		entry := map[string]any{"concept_id": id}
		if con, ok := reg.Concept(id); ok {
			entry["name"] = con.Name
			entry["label"] = con.Label
		}
		out = append(out, entry)
	}
	return out
}

func printJSON(v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
