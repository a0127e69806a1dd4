// Package config loads semantic definition documents from YAML. It owns
// parsing and structural validation only; reference resolution happens in
// the registry package, which accepts the converted records origin-free.
package config

// Document is one definition file: semantic units, CDM profiles, value
// sets and registry groups. All cross-references are authored as names;
// the registry pipeline links them after loading.
type Document struct {
	// SchemaVersion optionally pins the definition format version.
	SchemaVersion string `yaml:"schema_version,omitempty"`

	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`

	Units     []UnitRecord     `yaml:"units,omitempty"`
	Profiles  []ProfileRecord  `yaml:"profiles,omitempty"`
	ValueSets []ValueSetRecord `yaml:"valuesets,omitempty"`
	Groups    []GroupRecord    `yaml:"groups,omitempty"`
}

// UnitRecord is a raw semantic unit. Kind selects the variant; the
// remaining fields apply per kind (concept: concept_id/label/parents,
// enum: enum_members, group: role/members).
type UnitRecord struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`

	ConceptID int64    `yaml:"concept_id,omitempty"`
	Label     string   `yaml:"label,omitempty"`
	Parents   []string `yaml:"parent_concepts,omitempty"`

	EnumMembers []EnumMemberRecord `yaml:"enum_members,omitempty"`

	Role    string   `yaml:"role,omitempty"`
	Members []string `yaml:"members,omitempty"`

	Notes string `yaml:"notes,omitempty"`
}

// EnumMemberRecord is one labelled enum value.
type EnumMemberRecord struct {
	Label     string `yaml:"label"`
	ConceptID int64  `yaml:"concept_id"`
}

// ProfileRecord is a raw CDM profile.
type ProfileRecord struct {
	Name        string `yaml:"name"`
	CDMTable    string `yaml:"cdm_table"`
	ConceptSlot string `yaml:"concept_slot"`
	ValueSlot   string `yaml:"value_slot,omitempty"`
	Notes       string `yaml:"notes,omitempty"`
}

// TemplateRecord is a raw template inside a registry group.
type TemplateRecord struct {
	Name          string `yaml:"name"`
	Role          string `yaml:"role"`
	EntityConcept string `yaml:"entity_concept"`
	ValueConcept  string `yaml:"value_concept,omitempty"`
	CDMProfile    string `yaml:"cdm_profile"`
	Notes         string `yaml:"notes,omitempty"`
}

// GroupRecord is a raw registry group with its templates inline.
type GroupRecord struct {
	Name            string           `yaml:"name"`
	Role            string           `yaml:"role,omitempty"`
	RegistryMembers []TemplateRecord `yaml:"registry_members"`
	Notes           string           `yaml:"notes,omitempty"`
}

// ValueSetRecord is a raw value set referencing units by name.
type ValueSetRecord struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
	Notes   string   `yaml:"notes,omitempty"`
}
