package registry

import (
	"github.com/semreg-dev/semreg/semantic"
)

// ProfileMerger substitutes each template's raw profile name with the full
// profile object. This is a shallow, non-recursive step: profiles live in
// their own namespace and never reference other profiles.
//
// The merger never mutates the profile objects themselves. Every template
// naming the same profile receives the same *CDMProfile instance, so
// downstream consumers may group templates by profile identity.
type ProfileMerger struct {
	profiles map[string]*semantic.CDMProfile
}

// NewProfileMerger indexes the profile set by name. It fails with
// *semantic.DuplicateNameError when two profiles share a name.
func NewProfileMerger(profiles []*semantic.CDMProfile) (*ProfileMerger, error) {
	byName := make(map[string]*semantic.CDMProfile, len(profiles))
	for _, p := range profiles {
		if _, exists := byName[p.Name]; exists {
			return nil, &semantic.DuplicateNameError{Name: p.Name}
		}
		byName[p.Name] = p
	}
	return &ProfileMerger{profiles: byName}, nil
}

// Lookup returns the profile registered under name.
func (m *ProfileMerger) Lookup(name string) (*semantic.CDMProfile, bool) {
	p, ok := m.profiles[name]
	return p, ok
}

// MergeFragment resolves the profile reference of every template in the
// fragment. A template naming an absent profile fails with
// *semantic.UnknownProfileError. Already-resolved references pass through.
func (m *ProfileMerger) MergeFragment(frag *semantic.Fragment) error {
	for _, g := range frag.Groups {
		for _, tpl := range g.Members {
			if err := m.MergeTemplate(tpl); err != nil {
				return err
			}
		}
	}
	return nil
}

// MergeTemplate resolves one template's profile reference.
func (m *ProfileMerger) MergeTemplate(tpl *semantic.Template) error {
	if tpl.Profile.Resolved() {
		return nil
	}
	p, ok := m.profiles[tpl.Profile.Name]
	if !ok {
		return &semantic.UnknownProfileError{Name: tpl.Profile.Name, Template: tpl.Name}
	}
	tpl.Profile.Profile = p
	return nil
}
