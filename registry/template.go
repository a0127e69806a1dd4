package registry

import (
	"github.com/semreg-dev/semreg/semantic"
)

// RuntimeTemplate is the compiled, execution-ready form of a template:
// references resolved to concrete concept-id sets and the profile fully
// populated. Instances are immutable once compiled.
type RuntimeTemplate struct {
	Name string
	Role string

	// Profile is the shared profile instance; templates compiled against
	// the same profile name hold the identical pointer.
	Profile *semantic.CDMProfile

	// EntityConceptIDs is the ordered, de-duplicated set of concept ids
	// valid for the concept slot. For a concept entity this is exactly
	// one id; ancestor expansion is a separate, explicit query.
	EntityConceptIDs []semantic.ConceptID

	// ValueConceptIDs constrains the value slot; nil when the template
	// declares no value concept.
	ValueConceptIDs []semantic.ConceptID

	entitySet map[semantic.ConceptID]struct{}
	valueSet  map[semantic.ConceptID]struct{}
}

func newRuntimeTemplate(name, role string, profile *semantic.CDMProfile, entityIDs, valueIDs []semantic.ConceptID) *RuntimeTemplate {
	rt := &RuntimeTemplate{
		Name:             name,
		Role:             role,
		Profile:          profile,
		EntityConceptIDs: entityIDs,
		ValueConceptIDs:  valueIDs,
		entitySet:        make(map[semantic.ConceptID]struct{}, len(entityIDs)),
	}
	for _, id := range entityIDs {
		rt.entitySet[id] = struct{}{}
	}
	if valueIDs != nil {
		rt.valueSet = make(map[semantic.ConceptID]struct{}, len(valueIDs))
		for _, id := range valueIDs {
			rt.valueSet[id] = struct{}{}
		}
	}
	return rt
}

// AllowsConcept reports whether id is valid for the template's concept
// slot.
func (t *RuntimeTemplate) AllowsConcept(id semantic.ConceptID) bool {
	_, ok := t.entitySet[id]
	return ok
}

// AllowsValue reports whether id is valid for the template's value slot.
// Always false when the template declares no value concept.
func (t *RuntimeTemplate) AllowsValue(id semantic.ConceptID) bool {
	if t.valueSet == nil {
		return false
	}
	_, ok := t.valueSet[id]
	return ok
}
