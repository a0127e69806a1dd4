package registry

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/semreg-dev/semreg/semantic"
)

// Compiler assembles fully-interpolated, profile-merged fragments into one
// immutable Registry. Fragments may be added incrementally (one per source
// document) or in bulk; template names are globally unique, so the
// compiled result is identical regardless of input order.
type Compiler struct {
	index     Index
	templates map[string]*semantic.Template
	groups    map[string]*semantic.RegistryGroup
}

// NewCompiler returns a compiler resolving traversal against the unit
// index the fragments were interpolated with.
func NewCompiler(index Index) *Compiler {
	return &Compiler{
		index:     index,
		templates: make(map[string]*semantic.Template),
		groups:    make(map[string]*semantic.RegistryGroup),
	}
}

// AddFragment merges one fragment additively. It fails with
// *semantic.DuplicateTemplateNameError when a template name is already
// taken, and *semantic.DuplicateNameError when a registry group name is;
// silent shadowing is impossible. Collisions inside the fragment itself
// are rejected the same way as collisions against earlier fragments.
func (c *Compiler) AddFragment(frag *semantic.Fragment) error {
	incomingGroups := make(map[string]struct{}, len(frag.Groups))
	incomingTemplates := make(map[string]struct{})
	for _, g := range frag.Groups {
		if _, exists := c.groups[g.Name]; exists {
			return &semantic.DuplicateNameError{Name: g.Name}
		}
		if _, exists := incomingGroups[g.Name]; exists {
			return &semantic.DuplicateNameError{Name: g.Name}
		}
		incomingGroups[g.Name] = struct{}{}
		for _, tpl := range g.Members {
			if _, exists := c.templates[tpl.Name]; exists {
				return &semantic.DuplicateTemplateNameError{Name: tpl.Name}
			}
			if _, exists := incomingTemplates[tpl.Name]; exists {
				return &semantic.DuplicateTemplateNameError{Name: tpl.Name}
			}
			incomingTemplates[tpl.Name] = struct{}{}
		}
	}
	// Validated as a whole first so a failed add leaves the compiler
	// unchanged.
	for _, g := range frag.Groups {
		c.groups[g.Name] = g
		for _, tpl := range g.Members {
			c.templates[tpl.Name] = tpl
		}
	}
	return nil
}

// AddFragments adds fragments in order, stopping at the first error.
func (c *Compiler) AddFragments(frags ...*semantic.Fragment) error {
	for _, frag := range frags {
		if err := c.AddFragment(frag); err != nil {
			return err
		}
	}
	return nil
}

// Compile produces the immutable Registry. It resolves every template's
// concept-id sets, enforces the value-slot invariant, verifies parent
// links are acyclic, and builds the lookup indices. The input definitions
// are not mutated; rebuilding after a source change means compiling a new
// registry, never patching a published one.
func (c *Compiler) Compile() (*Registry, error) {
	reg := &Registry{
		buildID:      uuid.New(),
		units:        c.index,
		byName:       make(map[string]*RuntimeTemplate, len(c.templates)),
		byConcept:    make(map[semantic.ConceptID][]*RuntimeTemplate),
		byRole:       make(map[string][]*RuntimeTemplate),
		byGroup:      make(map[string][]*RuntimeTemplate, len(c.groups)),
		concepts:     make(map[semantic.ConceptID]*semantic.Concept),
		children:     make(map[semantic.ConceptID][]semantic.ConceptID),
		ancestors:    make(map[semantic.ConceptID][]semantic.ConceptID),
		groupMembers: make(map[string][]semantic.ConceptID),
	}

	if err := c.buildConceptGraph(reg); err != nil {
		return nil, err
	}

	res := newSetResolver()
	for name, g := range c.index {
		grp, ok := g.(*semantic.Group)
		if !ok {
			continue
		}
		ids, err := res.resolve(grp)
		if err != nil {
			return nil, err
		}
		reg.groupMembers[name] = ids
	}

	for _, tpl := range c.templates {
		rt, err := c.compileTemplate(tpl, res)
		if err != nil {
			return nil, err
		}
		reg.byName[rt.Name] = rt
		reg.byRole[rt.Role] = append(reg.byRole[rt.Role], rt)
		for _, id := range rt.EntityConceptIDs {
			reg.byConcept[id] = append(reg.byConcept[id], rt)
		}
	}

	for name, g := range c.groups {
		members := make([]*RuntimeTemplate, len(g.Members))
		for i, tpl := range g.Members {
			members[i] = reg.byName[tpl.Name]
		}
		reg.byGroup[name] = members
	}

	// Index order must not depend on fragment input order or map
	// iteration; secondary slices are kept name-sorted.
	for _, rts := range reg.byRole {
		sortTemplates(rts)
	}
	for _, rts := range reg.byConcept {
		sortTemplates(rts)
	}

	return reg, nil
}

// compileTemplate resolves one template into its runtime form.
func (c *Compiler) compileTemplate(tpl *semantic.Template, res *setResolver) (*RuntimeTemplate, error) {
	if !tpl.Profile.Resolved() {
		return nil, &semantic.UnknownProfileError{Name: tpl.Profile.Name, Template: tpl.Name}
	}
	profile := tpl.Profile.Profile

	if !tpl.EntityConcept.Resolved() {
		return nil, &semantic.UnresolvedReferenceError{Name: tpl.EntityConcept.Name}
	}
	entityIDs, err := res.resolve(tpl.EntityConcept.Unit)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", tpl.Name, err)
	}

	var valueIDs []semantic.ConceptID
	if tpl.ValueConcept != nil {
		if !profile.HasValueSlot() {
			return nil, &semantic.ValueSlotNotSupportedError{Template: tpl.Name, Profile: profile.Name}
		}
		if !tpl.ValueConcept.Resolved() {
			return nil, &semantic.UnresolvedReferenceError{Name: tpl.ValueConcept.Name}
		}
		valueIDs, err = res.resolve(tpl.ValueConcept.Unit)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", tpl.Name, err)
		}
	}

	return newRuntimeTemplate(tpl.Name, tpl.Role, profile, entityIDs, valueIDs), nil
}

// buildConceptGraph indexes concepts by id, records parent/child links and
// precomputes the reflexive-transitive ancestor closure. Parent cycles and
// two concepts sharing an id are build errors.
func (c *Compiler) buildConceptGraph(reg *Registry) error {
	for _, u := range c.index {
		con, ok := u.(*semantic.Concept)
		if !ok {
			continue
		}
		if prev, taken := reg.concepts[con.ConceptID]; taken {
			names := []string{prev.Name, con.Name}
			slices.Sort(names)
			return &semantic.DuplicateConceptIDError{ConceptID: con.ConceptID, Names: names}
		}
		reg.concepts[con.ConceptID] = con
		for _, p := range con.Parents {
			parent, ok := p.Unit.(*semantic.Concept)
			if !ok {
				return &semantic.UnresolvedReferenceError{Name: p.Target()}
			}
			reg.children[parent.ConceptID] = append(reg.children[parent.ConceptID], con.ConceptID)
		}
	}
	for _, ids := range reg.children {
		slices.Sort(ids)
	}

	visiting := make(map[string]bool)
	var stack []string
	var closure func(con *semantic.Concept) ([]semantic.ConceptID, error)
	closure = func(con *semantic.Concept) ([]semantic.ConceptID, error) {
		if ids, done := reg.ancestors[con.ConceptID]; done {
			return ids, nil
		}
		if visiting[con.Name] {
			return nil, &semantic.CyclicReferenceError{Path: append(slices.Clone(stack), con.Name)}
		}
		visiting[con.Name] = true
		stack = append(stack, con.Name)
		defer func() {
			delete(visiting, con.Name)
			stack = stack[:len(stack)-1]
		}()

		seen := map[semantic.ConceptID]struct{}{con.ConceptID: {}}
		ids := []semantic.ConceptID{con.ConceptID}
		for _, p := range con.Parents {
			parent := p.Unit.(*semantic.Concept)
			parentIDs, err := closure(parent)
			if err != nil {
				return nil, err
			}
			for _, id := range parentIDs {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		reg.ancestors[con.ConceptID] = ids
		return ids, nil
	}

	for _, con := range reg.concepts {
		if _, err := closure(con); err != nil {
			return err
		}
	}
	return nil
}

func sortTemplates(rts []*RuntimeTemplate) {
	slices.SortFunc(rts, func(a, b *RuntimeTemplate) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
}
