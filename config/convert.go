package config

import (
	"fmt"

	"github.com/semreg-dev/semreg/semantic"
)

// Conversion turns raw records into domain entities. The kind tag is
// dispatched here, exactly once; everything past this point works with the
// closed Unit variants.

// Units converts the document's unit records.
func (d *Document) SemanticUnits() ([]semantic.Unit, error) {
	units := make([]semantic.Unit, 0, len(d.Units))
	for _, rec := range d.Units {
		u, err := convertUnit(rec)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// CDMProfiles converts the document's profile records.
func (d *Document) CDMProfiles() []*semantic.CDMProfile {
	profiles := make([]*semantic.CDMProfile, 0, len(d.Profiles))
	for _, rec := range d.Profiles {
		profiles = append(profiles, &semantic.CDMProfile{
			Name:        rec.Name,
			CDMTable:    rec.CDMTable,
			ConceptSlot: rec.ConceptSlot,
			ValueSlot:   rec.ValueSlot,
			Notes:       rec.Notes,
		})
	}
	return profiles
}

// SemanticValueSets converts the document's value-set records.
func (d *Document) SemanticValueSets() []*semantic.ValueSet {
	sets := make([]*semantic.ValueSet, 0, len(d.ValueSets))
	for _, rec := range d.ValueSets {
		vs := &semantic.ValueSet{Name: rec.Name, Notes: rec.Notes}
		for _, name := range rec.Members {
			vs.Members = append(vs.Members, semantic.RefName(name))
		}
		sets = append(sets, vs)
	}
	return sets
}

// Fragment converts the document's registry groups into one raw fragment.
func (d *Document) Fragment() *semantic.Fragment {
	frag := &semantic.Fragment{}
	for _, rec := range d.Groups {
		group := &semantic.RegistryGroup{
			Name:  rec.Name,
			Role:  rec.Role,
			Notes: rec.Notes,
		}
		for _, t := range rec.RegistryMembers {
			tpl := &semantic.Template{
				Name:          t.Name,
				Role:          t.Role,
				EntityConcept: semantic.RefName(t.EntityConcept),
				Profile:       semantic.ProfileName(t.CDMProfile),
				Notes:         t.Notes,
			}
			if t.ValueConcept != "" {
				ref := semantic.RefName(t.ValueConcept)
				tpl.ValueConcept = &ref
			}
			group.Members = append(group.Members, tpl)
		}
		frag.Groups = append(frag.Groups, group)
	}
	return frag
}

func convertUnit(rec UnitRecord) (semantic.Unit, error) {
	kind, err := semantic.ParseKind(rec.Kind)
	if err != nil {
		return nil, fmt.Errorf("unit %q: %w", rec.Name, err)
	}

	switch kind {
	case semantic.KindConcept:
		c := &semantic.Concept{
			Name:      rec.Name,
			ConceptID: semantic.ConceptID(rec.ConceptID),
			Label:     rec.Label,
			Notes:     rec.Notes,
		}
		for _, parent := range rec.Parents {
			c.Parents = append(c.Parents, semantic.RefName(parent))
		}
		return c, nil

	case semantic.KindEnum:
		e := &semantic.Enum{Name: rec.Name, Notes: rec.Notes}
		for _, m := range rec.EnumMembers {
			e.Members = append(e.Members, semantic.EnumMember{
				Label:     m.Label,
				ConceptID: semantic.ConceptID(m.ConceptID),
			})
		}
		return e, nil

	case semantic.KindGroup:
		g := &semantic.Group{Name: rec.Name, Role: rec.Role, Notes: rec.Notes}
		for _, member := range rec.Members {
			g.Members = append(g.Members, semantic.RefName(member))
		}
		return g, nil

	default:
		return nil, fmt.Errorf("unit %q: unknown kind %q", rec.Name, rec.Kind)
	}
}
