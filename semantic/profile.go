package semantic

// CDMProfile describes the row shape a template writes to: the destination
// table, the column receiving the driving concept id, and optionally the
// column receiving a value. Table and column names are opaque strings.
//
// Profiles live in their own namespace, separate from semantic units, and
// never reference other profiles. A profile instance is shared by every
// template that names it, so identity comparison is safe for grouping
// "all templates using profile X".
type CDMProfile struct {
	Name        string
	CDMTable    string
	ConceptSlot string
	// ValueSlot is the destination column for a value; empty means the
	// template writes only the concept slot.
	ValueSlot string
	Notes     string
}

// HasValueSlot reports whether rows built from this profile carry a value
// column.
func (p *CDMProfile) HasValueSlot() bool { return p.ValueSlot != "" }

// ProfileRef is a reference to a CDM profile, raw (Name only) or resolved.
type ProfileRef struct {
	Name    string
	Profile *CDMProfile
}

// ProfileName returns a raw reference to the named profile.
func ProfileName(name string) ProfileRef { return ProfileRef{Name: name} }

// RefProfile returns an already-resolved profile reference.
func RefProfile(p *CDMProfile) ProfileRef { return ProfileRef{Name: p.Name, Profile: p} }

// Resolved reports whether the reference has been linked to its profile.
func (r ProfileRef) Resolved() bool { return r.Profile != nil }

// Target returns the referenced profile name.
func (r ProfileRef) Target() string {
	if r.Profile != nil {
		return r.Profile.Name
	}
	return r.Name
}
