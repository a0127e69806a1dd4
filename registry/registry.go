package registry

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/semreg-dev/semreg/semantic"
)

// Registry is the compiled runtime registry: name-, concept-id-, role- and
// group-keyed indices over runtime templates, plus the concept graph used
// by the traversal queries. It is immutable after Compile and safe to
// share across concurrent readers without locking; rebuilding after a
// source change produces a new Registry to swap in, caller-side.
type Registry struct {
	buildID uuid.UUID
	units   Index

	byName    map[string]*RuntimeTemplate
	byConcept map[semantic.ConceptID][]*RuntimeTemplate
	byRole    map[string][]*RuntimeTemplate
	byGroup   map[string][]*RuntimeTemplate

	concepts     map[semantic.ConceptID]*semantic.Concept
	children     map[semantic.ConceptID][]semantic.ConceptID
	ancestors    map[semantic.ConceptID][]semantic.ConceptID
	groupMembers map[string][]semantic.ConceptID
}

// Build runs the whole pipeline over raw definitions: index the units,
// interpolate references, merge profiles into the fragments and compile.
// It is the single entry point callers need when they hold all inputs up
// front; the individual stages remain available for incremental use.
func Build(units []semantic.Unit, profiles []*semantic.CDMProfile, fragments ...*semantic.Fragment) (*Registry, error) {
	index, err := NewIndex(units)
	if err != nil {
		return nil, err
	}

	interp := NewInterpolator(index)
	for _, u := range units {
		if err := interp.ResolveUnit(u); err != nil {
			return nil, err
		}
	}

	merger, err := NewProfileMerger(profiles)
	if err != nil {
		return nil, err
	}

	compiler := NewCompiler(index)
	for _, frag := range fragments {
		if err := interp.ResolveFragment(frag); err != nil {
			return nil, err
		}
		if err := merger.MergeFragment(frag); err != nil {
			return nil, err
		}
		if err := compiler.AddFragment(frag); err != nil {
			return nil, err
		}
	}
	return compiler.Compile()
}

// BuildID identifies this compiled registry instance.
func (r *Registry) BuildID() string { return r.buildID.String() }

// Template returns the runtime template with the given name.
func (r *Registry) Template(name string) (*RuntimeTemplate, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Templates returns every runtime template, name-sorted.
func (r *Registry) Templates() []*RuntimeTemplate {
	out := make([]*RuntimeTemplate, 0, len(r.byName))
	for _, t := range r.byName {
		out = append(out, t)
	}
	sortTemplates(out)
	return out
}

// ByRole returns the templates tagged with role, name-sorted. An unknown
// role yields an empty slice, not an error.
func (r *Registry) ByRole(role string) []*RuntimeTemplate {
	return slices.Clone(r.byRole[role])
}

// TemplatesForConcept returns the templates whose entity set contains id,
// name-sorted. An unmatched id yields an empty slice, not an error.
func (r *Registry) TemplatesForConcept(id semantic.ConceptID) []*RuntimeTemplate {
	return slices.Clone(r.byConcept[id])
}

// Group returns the templates of a registry group in declaration order.
func (r *Registry) Group(name string) ([]*RuntimeTemplate, bool) {
	ts, ok := r.byGroup[name]
	return slices.Clone(ts), ok
}

// GroupNames returns the registry group names, sorted.
func (r *Registry) GroupNames() []string {
	return sortedKeys(r.byGroup)
}

// Roles returns every role seen on a template, sorted.
func (r *Registry) Roles() []string {
	return sortedKeys(r.byRole)
}

// Concept returns the concept definition for id.
func (r *Registry) Concept(id semantic.ConceptID) (*semantic.Concept, bool) {
	c, ok := r.concepts[id]
	return c, ok
}

// Ancestors returns the reflexive-transitive closure over parent links for
// id: the concept itself, then ancestors in discovery order. The closure
// is precomputed at compile time, so reads never mutate shared state.
func (r *Registry) Ancestors(id semantic.ConceptID) ([]semantic.ConceptID, bool) {
	ids, ok := r.ancestors[id]
	return slices.Clone(ids), ok
}

// Descendants returns the reflexive-transitive closure over child links
// for id, sorted.
func (r *Registry) Descendants(id semantic.ConceptID) ([]semantic.ConceptID, bool) {
	if _, ok := r.concepts[id]; !ok {
		return nil, false
	}
	seen := map[semantic.ConceptID]struct{}{id: {}}
	queue := []semantic.ConceptID{id}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, child := range r.children[next] {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	out := make([]semantic.ConceptID, 0, len(seen))
	for cid := range seen {
		out = append(out, cid)
	}
	slices.Sort(out)
	return out, true
}

// GroupMembers returns the flattened leaf concept ids of the named
// semantic unit: a group flattens recursively with first-occurrence
// de-duplication, an enum yields its member ids, a concept its single id.
// An unknown name fails with *semantic.UnresolvedReferenceError.
func (r *Registry) GroupMembers(name string) ([]semantic.ConceptID, error) {
	if ids, ok := r.groupMembers[name]; ok {
		return slices.Clone(ids), nil
	}
	u, ok := r.units[name]
	if !ok {
		return nil, &semantic.UnresolvedReferenceError{Name: name}
	}
	switch v := u.(type) {
	case *semantic.Concept:
		return []semantic.ConceptID{v.ConceptID}, nil
	case *semantic.Enum:
		return newSetResolver().resolve(v)
	default:
		return nil, &semantic.UnresolvedReferenceError{Name: name}
	}
}

// EmitRow compiles one output row for the named template: the profile's
// concept slot receives conceptID, the caller-supplied identity fields are
// merged in verbatim, and value (when non-nil) lands in the profile's
// value slot. Supplying a value to a profile without a value slot fails
// with *semantic.ValueSlotNotSupportedError; the value is never dropped.
// It returns the destination table name and the row mapping.
func (r *Registry) EmitRow(name string, conceptID semantic.ConceptID, value any, identity map[string]any) (string, map[string]any, error) {
	t, ok := r.byName[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown template %q", name)
	}
	profile := t.Profile

	if value != nil && !profile.HasValueSlot() {
		return "", nil, &semantic.ValueSlotNotSupportedError{Template: t.Name, Profile: profile.Name}
	}

	row := make(map[string]any, len(identity)+2)
	for k, v := range identity {
		row[k] = v
	}
	row[profile.ConceptSlot] = int64(conceptID)
	if value != nil {
		row[profile.ValueSlot] = value
	}
	return profile.CDMTable, row, nil
}

// Summary aggregates registry counts for display.
type Summary struct {
	Templates      int
	RegistryGroups int
	Concepts       int
	ByRole         map[string]int
}

// Summarize returns per-role template counts and totals.
func (r *Registry) Summarize() Summary {
	s := Summary{
		Templates:      len(r.byName),
		RegistryGroups: len(r.byGroup),
		Concepts:       len(r.concepts),
		ByRole:         make(map[string]int, len(r.byRole)),
	}
	for role, ts := range r.byRole {
		s.ByRole[role] = len(ts)
	}
	return s
}

// Diff reports template-level differences between two compiled registries.
type Diff struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty reports whether the registries carry identical template sets.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffAgainst compares r (the old registry) with next. A template counts
// as changed when its role, profile name or concept-id sets differ.
func (r *Registry) DiffAgainst(next *Registry) Diff {
	var d Diff
	for name := range next.byName {
		if _, ok := r.byName[name]; !ok {
			d.Added = append(d.Added, name)
		}
	}
	for name, old := range r.byName {
		cur, ok := next.byName[name]
		if !ok {
			d.Removed = append(d.Removed, name)
			continue
		}
		if !templatesEquivalent(old, cur) {
			d.Changed = append(d.Changed, name)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.Sort(d.Changed)
	return d
}

func templatesEquivalent(a, b *RuntimeTemplate) bool {
	return a.Role == b.Role &&
		a.Profile.Name == b.Profile.Name &&
		slices.Equal(a.EntityConceptIDs, b.EntityConceptIDs) &&
		slices.Equal(a.ValueConceptIDs, b.ValueConceptIDs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
