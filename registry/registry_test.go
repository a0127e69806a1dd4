package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semreg-dev/semreg/semantic"
)

// testUnits returns a fresh definition set per call; interpolation links
// references in place, so tests never share instances.
func testUnits() []semantic.Unit {
	return []semantic.Unit{
		&semantic.Concept{Name: "malignant_neoplasm", ConceptID: 443392, Label: "Malignant neoplastic disease"},
		&semantic.Concept{Name: "lung_cancer", ConceptID: 4115276, Label: "Malignant tumor of lung",
			Parents: []semantic.UnitRef{semantic.RefName("malignant_neoplasm")}},
		&semantic.Concept{Name: "nsclc", ConceptID: 4311499, Label: "Non-small cell lung cancer",
			Parents: []semantic.UnitRef{semantic.RefName("lung_cancer")}},
		&semantic.Concept{Name: "tnm_stage", ConceptID: 4111628, Label: "TNM stage"},
		&semantic.Concept{Name: "postcode", ConceptID: 4083591, Label: "Postcode"},
		&semantic.Enum{Name: "t_stage", Members: []semantic.EnumMember{
			{Label: "T0", ConceptID: 1634213},
			{Label: "T1", ConceptID: 1633440},
			{Label: "T2", ConceptID: 1634209},
		}},
		&semantic.Group{Name: "tumour_concepts", Role: "diagnosis", Members: []semantic.UnitRef{
			semantic.RefName("lung_cancer"),
			semantic.RefName("nsclc"),
		}},
		&semantic.Group{Name: "staging_findings", Role: "staging", Members: []semantic.UnitRef{
			semantic.RefName("tnm_stage"),
			semantic.RefName("t_stage"),
		}},
	}
}

func testProfiles() []*semantic.CDMProfile {
	return []*semantic.CDMProfile{
		{Name: "observation_string", CDMTable: "observation",
			ConceptSlot: "observation_concept_id", ValueSlot: "value_as_string"},
		{Name: "condition", CDMTable: "condition_occurrence",
			ConceptSlot: "condition_concept_id"},
	}
}

func testFragment() *semantic.Fragment {
	valueRef := semantic.RefName("t_stage")
	return &semantic.Fragment{Groups: []*semantic.RegistryGroup{
		{
			Name: "oncology_core",
			Role: "core",
			Members: []*semantic.Template{
				{Name: "postcode_record", Role: "demographic",
					EntityConcept: semantic.RefName("postcode"),
					Profile:       semantic.ProfileName("observation_string")},
				{Name: "tnm_stage_record", Role: "staging",
					EntityConcept: semantic.RefName("tnm_stage"),
					ValueConcept:  &valueRef,
					Profile:       semantic.ProfileName("observation_string")},
				{Name: "primary_diagnosis", Role: "diagnosis",
					EntityConcept: semantic.RefName("tumour_concepts"),
					Profile:       semantic.ProfileName("condition")},
			},
		},
	}}
}

func buildTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Build(testUnits(), testProfiles(), testFragment())
	require.NoError(t, err)
	return reg
}

func Test_Build_FullPipeline(t *testing.T) {
	reg := buildTestRegistry(t)

	assert.NotEmpty(t, reg.BuildID())

	summary := reg.Summarize()
	assert.Equal(t, 3, summary.Templates)
	assert.Equal(t, 1, summary.RegistryGroups)
	assert.Equal(t, 5, summary.Concepts)
	assert.Equal(t, 1, summary.ByRole["staging"])
}

func Test_Registry_Template_ByName(t *testing.T) {
	reg := buildTestRegistry(t)

	tpl, ok := reg.Template("tnm_stage_record")
	require.True(t, ok)
	assert.Equal(t, "staging", tpl.Role)
	assert.Equal(t, "observation_string", tpl.Profile.Name)
	assert.Equal(t, []semantic.ConceptID{4111628}, tpl.EntityConceptIDs)
	assert.Equal(t, []semantic.ConceptID{1634213, 1633440, 1634209}, tpl.ValueConceptIDs)

	_, ok = reg.Template("missing")
	assert.False(t, ok)
}

func Test_Registry_ByRole_EmptyRoleIsNotAnError(t *testing.T) {
	reg := buildTestRegistry(t)

	assert.Len(t, reg.ByRole("staging"), 1)
	assert.Empty(t, reg.ByRole("no_such_role"))
}

func Test_Registry_TemplatesForConcept(t *testing.T) {
	reg := buildTestRegistry(t)

	// primary_diagnosis flattens tumour_concepts, so both member ids
	// route to it.
	for _, id := range []semantic.ConceptID{4115276, 4311499} {
		templates := reg.TemplatesForConcept(id)
		require.Len(t, templates, 1)
		assert.Equal(t, "primary_diagnosis", templates[0].Name)
	}

	assert.Empty(t, reg.TemplatesForConcept(999999))
}

func Test_Registry_Group(t *testing.T) {
	reg := buildTestRegistry(t)

	members, ok := reg.Group("oncology_core")
	require.True(t, ok)
	assert.Len(t, members, 3)

	_, ok = reg.Group("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"oncology_core"}, reg.GroupNames())
}

func Test_Registry_Concept(t *testing.T) {
	reg := buildTestRegistry(t)

	con, ok := reg.Concept(4111628)
	require.True(t, ok)
	assert.Equal(t, "tnm_stage", con.Name)
	assert.Equal(t, "TNM stage", con.Label)

	// Enum member ids are not concepts.
	_, ok = reg.Concept(1634213)
	assert.False(t, ok)
}

func Test_Registry_Ancestors_IsReflexiveTransitive(t *testing.T) {
	reg := buildTestRegistry(t)

	ids, ok := reg.Ancestors(4311499)
	require.True(t, ok)
	// Self first, then parents upward.
	assert.Equal(t, []semantic.ConceptID{4311499, 4115276, 443392}, ids)

	ids, ok = reg.Ancestors(443392)
	require.True(t, ok)
	assert.Equal(t, []semantic.ConceptID{443392}, ids)

	_, ok = reg.Ancestors(999999)
	assert.False(t, ok)
}

func Test_Registry_Descendants(t *testing.T) {
	reg := buildTestRegistry(t)

	ids, ok := reg.Descendants(443392)
	require.True(t, ok)
	assert.Equal(t, []semantic.ConceptID{443392, 4115276, 4311499}, ids)

	ids, ok = reg.Descendants(4311499)
	require.True(t, ok)
	assert.Equal(t, []semantic.ConceptID{4311499}, ids)

	_, ok = reg.Descendants(999999)
	assert.False(t, ok)
}

func Test_Registry_GroupMembers_FlattensRecursively(t *testing.T) {
	reg := buildTestRegistry(t)

	ids, err := reg.GroupMembers("staging_findings")
	require.NoError(t, err)
	assert.Equal(t, []semantic.ConceptID{4111628, 1634213, 1633440, 1634209}, ids)

	// Concept and enum names flatten too.
	ids, err = reg.GroupMembers("postcode")
	require.NoError(t, err)
	assert.Equal(t, []semantic.ConceptID{4083591}, ids)

	ids, err = reg.GroupMembers("t_stage")
	require.NoError(t, err)
	assert.Equal(t, []semantic.ConceptID{1634213, 1633440, 1634209}, ids)
}

func Test_Registry_GroupMembers_UnknownName(t *testing.T) {
	reg := buildTestRegistry(t)

	_, err := reg.GroupMembers("missing")
	var unresolved *semantic.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "missing", unresolved.Name)
}

func Test_Registry_EmitRow_WithValue(t *testing.T) {
	reg := buildTestRegistry(t)

	table, row, err := reg.EmitRow("postcode_record", 4083591, "SW1A 1AA",
		map[string]any{"person_id": int64(42), "observation_date": "2024-03-01"})
	require.NoError(t, err)

	assert.Equal(t, "observation", table)
	assert.Equal(t, map[string]any{
		"person_id":              int64(42),
		"observation_date":       "2024-03-01",
		"observation_concept_id": int64(4083591),
		"value_as_string":        "SW1A 1AA",
	}, row)
}

func Test_Registry_EmitRow_PostcodeExample(t *testing.T) {
	reg := buildTestRegistry(t)

	table, row, err := reg.EmitRow("postcode_record", 4083591, "2031",
		map[string]any{"person_id": int64(123), "observation_date": "2024-01-01"})
	require.NoError(t, err)

	assert.Equal(t, "observation", table)
	assert.Equal(t, map[string]any{
		"person_id":              int64(123),
		"observation_date":       "2024-01-01",
		"observation_concept_id": int64(4083591),
		"value_as_string":        "2031",
	}, row)
}

func Test_Registry_EmitRow_WithoutValue(t *testing.T) {
	reg := buildTestRegistry(t)

	table, row, err := reg.EmitRow("primary_diagnosis", 4311499, nil,
		map[string]any{"person_id": int64(7)})
	require.NoError(t, err)

	assert.Equal(t, "condition_occurrence", table)
	assert.Equal(t, map[string]any{
		"person_id":            int64(7),
		"condition_concept_id": int64(4311499),
	}, row)
}

func Test_Registry_EmitRow_ValueWithoutSlotFails(t *testing.T) {
	reg := buildTestRegistry(t)

	_, _, err := reg.EmitRow("primary_diagnosis", 4311499, "unexpected", nil)
	var slotErr *semantic.ValueSlotNotSupportedError
	require.ErrorAs(t, err, &slotErr)
	assert.Equal(t, "primary_diagnosis", slotErr.Template)
	assert.Equal(t, "condition", slotErr.Profile)
}

func Test_Registry_EmitRow_UnknownTemplate(t *testing.T) {
	reg := buildTestRegistry(t)

	_, _, err := reg.EmitRow("missing", 1, nil, nil)
	assert.Error(t, err)
}

func Test_Registry_DiffAgainst(t *testing.T) {
	oldReg := buildTestRegistry(t)

	// Rebuild with one template renamed and one retargeted.
	frag := testFragment()
	frag.Groups[0].Members[0].Name = "postcode_entry"
	frag.Groups[0].Members[2].EntityConcept = semantic.RefName("nsclc")
	newReg, err := Build(testUnits(), testProfiles(), frag)
	require.NoError(t, err)

	diff := oldReg.DiffAgainst(newReg)
	assert.Equal(t, []string{"postcode_entry"}, diff.Added)
	assert.Equal(t, []string{"postcode_record"}, diff.Removed)
	assert.Equal(t, []string{"primary_diagnosis"}, diff.Changed)
	assert.False(t, diff.Empty())
}

func Test_Registry_DiffAgainst_EquivalentRegistries(t *testing.T) {
	a := buildTestRegistry(t)
	b := buildTestRegistry(t)

	assert.True(t, a.DiffAgainst(b).Empty())
}

func Test_Build_OrderIndependent(t *testing.T) {
	units := testUnits()
	// Reverse declaration order; forward references must still resolve.
	for i, j := 0, len(units)-1; i < j; i, j = i+1, j-1 {
		units[i], units[j] = units[j], units[i]
	}
	reg, err := Build(units, testProfiles(), testFragment())
	require.NoError(t, err)

	baseline := buildTestRegistry(t)
	assert.True(t, baseline.DiffAgainst(reg).Empty())
}
