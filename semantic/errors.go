package semantic

import (
	"fmt"
	"strings"
)

// The resolution engine fails fast: the first structural inconsistency
// aborts the build and surfaces as one of the typed errors below. None of
// them are transient; the caller fixes the source definitions.

// DuplicateNameError reports a name collision inside one namespace
// (the shared concept/enum/group namespace, or the profile namespace).
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate definition name %q", e.Name)
}

// UnresolvedReferenceError reports a reference to a name absent from the
// definition set.
type UnresolvedReferenceError struct {
	Name string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference %q", e.Name)
}

// CyclicReferenceError reports a reference cycle (a group containing
// itself transitively, or a concept among its own ancestors). Path lists
// the names along the cycle, ending at the repeated name.
type CyclicReferenceError struct {
	Path []string
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("cyclic reference: %s", strings.Join(e.Path, " -> "))
}

// DuplicateConceptIDError reports two differently-named concepts bound to
// the same concept id. Traversal indexes by id, so the collision would
// silently merge the two concepts' hierarchies.
type DuplicateConceptIDError struct {
	ConceptID ConceptID
	Names     []string
}

func (e *DuplicateConceptIDError) Error() string {
	return fmt.Sprintf("concept id %d bound to multiple concepts: %s",
		int64(e.ConceptID), strings.Join(e.Names, ", "))
}

// UnknownProfileError reports a template naming a profile absent from the
// profile set.
type UnknownProfileError struct {
	Name     string
	Template string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("template %q references unknown profile %q", e.Template, e.Name)
}

// DuplicateTemplateNameError reports two fragments defining templates with
// the same name.
type DuplicateTemplateNameError struct {
	Name string
}

func (e *DuplicateTemplateNameError) Error() string {
	return fmt.Sprintf("duplicate template name %q", e.Name)
}

// ValueSlotNotSupportedError reports a value routed through a profile that
// has no value slot, either declared on a template or supplied at row
// emission. The value is never silently dropped.
type ValueSlotNotSupportedError struct {
	Template string
	Profile  string
}

func (e *ValueSlotNotSupportedError) Error() string {
	return fmt.Sprintf("template %q: profile %q has no value slot", e.Template, e.Profile)
}
