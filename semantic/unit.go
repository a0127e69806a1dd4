// Package semantic contains the declarative definition model for the
// semantic registry: atomic concepts, enumerations, concept groups, CDM
// profiles, templates and registry fragments. These are pure domain types
// with NO infrastructure dependencies.
//
// Definitions are authored as string-keyed records (a group names its
// members, a template names its profile). The registry package resolves
// those string references into the linked object graph; types here
// represent both states via UnitRef and ProfileRef.
package semantic

import "fmt"

// ConceptID identifies a single CDM concept. The engine treats concept ids
// as opaque integers supplied by the definition set.
type ConceptID int64

// Kind discriminates the closed set of semantic unit variants. Raw records
// carry a string tag; loading converts it to a Kind exactly once so the
// rest of the engine never inspects type strings.
type Kind int

const (
	KindConcept Kind = iota + 1
	KindEnum
	KindGroup
)

// String returns the record-level tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindConcept:
		return "concept"
	case KindEnum:
		return "enum"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a record tag into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "concept":
		return KindConcept, nil
	case "enum":
		return KindEnum, nil
	case "group":
		return KindGroup, nil
	default:
		return 0, fmt.Errorf("unknown semantic unit kind %q", s)
	}
}

// Unit is the sealed interface over the three semantic unit variants:
// *Concept, *Enum and *Group. Concepts, enums and groups share one name
// namespace; a name is unique across all three.
type Unit interface {
	UnitName() string
	UnitKind() Kind

	// sealed restricts implementations to this package.
	sealed()
}

// Concept is an atomic semantic definition bound to a single concept id.
// Parents link a concept to broader concepts; the links form a DAG whose
// reflexive-transitive closure is the concept's ancestor set.
type Concept struct {
	Name      string
	ConceptID ConceptID
	Label     string
	Parents   []UnitRef
	Notes     string
}

func (c *Concept) UnitName() string { return c.Name }
func (c *Concept) UnitKind() Kind   { return KindConcept }
func (c *Concept) sealed()          {}

// EnumMember is one named value of an enumeration.
type EnumMember struct {
	Label     string
	ConceptID ConceptID
}

// Enum is an ordered enumeration of labelled concept ids. Enums have no
// outgoing references.
type Enum struct {
	Name    string
	Members []EnumMember
	Notes   string
}

func (e *Enum) UnitName() string { return e.Name }
func (e *Enum) UnitKind() Kind   { return KindEnum }
func (e *Enum) sealed()          {}

// Group is an ordered composition of semantic units. Members may be
// concepts, enums or further groups; nesting is resolved recursively and
// must be acyclic.
type Group struct {
	Name    string
	Role    string
	Members []UnitRef
	Notes   string
}

func (g *Group) UnitName() string { return g.Name }
func (g *Group) UnitKind() Kind   { return KindGroup }
func (g *Group) sealed()          {}

// UnitRef is a reference to a semantic unit, either raw (Name only, as
// authored) or resolved (Unit set). Mixed inputs are supported: a ref
// constructed directly with a Unit passes through interpolation untouched.
type UnitRef struct {
	Name string
	Unit Unit
}

// RefName returns a raw reference to the named unit.
func RefName(name string) UnitRef { return UnitRef{Name: name} }

// RefUnit returns an already-resolved reference.
func RefUnit(u Unit) UnitRef { return UnitRef{Name: u.UnitName(), Unit: u} }

// Resolved reports whether the reference has been linked to its unit.
func (r UnitRef) Resolved() bool { return r.Unit != nil }

// Target returns the referenced name, from the linked unit when resolved.
func (r UnitRef) Target() string {
	if r.Unit != nil {
		return r.Unit.UnitName()
	}
	return r.Name
}
