package registry

import (
	"slices"

	"github.com/semreg-dev/semreg/semantic"
)

// setResolver computes the ordered, de-duplicated leaf concept ids of a
// semantic unit: a concept contributes its own id, an enum its member ids,
// a group the union of its members recursively. Group results are memoized
// by identity so shared subgroups flatten once; interpolation guarantees
// identity, which is what makes the memo correct.
type setResolver struct {
	memo     map[*semantic.Group][]semantic.ConceptID
	visiting map[*semantic.Group]bool
	stack    []string
}

func newSetResolver() *setResolver {
	return &setResolver{
		memo:     make(map[*semantic.Group][]semantic.ConceptID),
		visiting: make(map[*semantic.Group]bool),
	}
}

// resolve returns the leaf concept ids of u in first-occurrence order.
// Duplicates from overlapping subgroups are dropped. Group cycles fail
// with *semantic.CyclicReferenceError; interpolation normally rejects
// them first, but directly-constructed graphs are guarded too.
func (r *setResolver) resolve(u semantic.Unit) ([]semantic.ConceptID, error) {
	switch v := u.(type) {
	case *semantic.Concept:
		return []semantic.ConceptID{v.ConceptID}, nil

	case *semantic.Enum:
		seen := make(map[semantic.ConceptID]struct{}, len(v.Members))
		ids := make([]semantic.ConceptID, 0, len(v.Members))
		for _, m := range v.Members {
			if _, dup := seen[m.ConceptID]; dup {
				continue
			}
			seen[m.ConceptID] = struct{}{}
			ids = append(ids, m.ConceptID)
		}
		return ids, nil

	case *semantic.Group:
		return r.resolveGroup(v)

	default:
		return nil, nil
	}
}

func (r *setResolver) resolveGroup(g *semantic.Group) ([]semantic.ConceptID, error) {
	if ids, done := r.memo[g]; done {
		return ids, nil
	}
	if r.visiting[g] {
		return nil, &semantic.CyclicReferenceError{Path: append(slices.Clone(r.stack), g.Name)}
	}
	r.visiting[g] = true
	r.stack = append(r.stack, g.Name)
	defer func() {
		delete(r.visiting, g)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	seen := make(map[semantic.ConceptID]struct{})
	var ids []semantic.ConceptID
	for _, m := range g.Members {
		if !m.Resolved() {
			return nil, &semantic.UnresolvedReferenceError{Name: m.Name}
		}
		memberIDs, err := r.resolve(m.Unit)
		if err != nil {
			return nil, err
		}
		for _, id := range memberIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	r.memo[g] = ids
	return ids, nil
}
