package semantic

// Template binds a driving semantic unit (and optionally a value unit) to
// a CDM row shape via a profile reference. Template names are unique
// across the whole registry, spanning every fragment.
type Template struct {
	Name string
	Role string

	// EntityConcept is the driving unit: a concept, enum or group whose
	// resolved concept ids populate the profile's concept slot.
	EntityConcept UnitRef

	// ValueConcept, when present, constrains the value written to the
	// profile's value slot. A template must not declare a value concept
	// unless its profile has a value slot.
	ValueConcept *UnitRef

	Profile ProfileRef
	Notes   string
}

// RegistryGroup is a publishing container for templates. It exists purely
// for organisation and documentation; semantic traversal never follows
// registry groups.
type RegistryGroup struct {
	Name    string
	Role    string
	Members []*Template
	Notes   string
}

// Fragment is one source document's worth of registry groups. Fragments
// merge additively into a single registry; duplicate template names across
// fragments are a build error, never a silent overwrite.
type Fragment struct {
	Groups []*RegistryGroup
}

// Templates returns every template in the fragment in declaration order.
func (f *Fragment) Templates() []*Template {
	var out []*Template
	for _, g := range f.Groups {
		out = append(out, g.Members...)
	}
	return out
}

// ValueSet is a named bundle of semantic units exposed to consumers as a
// label-to-concept-id lookup surface.
type ValueSet struct {
	Name    string
	Members []UnitRef
	Notes   string
}
