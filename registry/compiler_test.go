package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semreg-dev/semreg/semantic"
)

// prepareFragment runs interpolation and profile merging so compiler tests
// start from the state Compile expects.
func prepareFragment(t *testing.T, units []semantic.Unit, frag *semantic.Fragment) Index {
	t.Helper()
	ix, err := NewIndex(units)
	require.NoError(t, err)

	interp := NewInterpolator(ix)
	for _, u := range units {
		require.NoError(t, interp.ResolveUnit(u))
	}
	require.NoError(t, interp.ResolveFragment(frag))

	merger, err := NewProfileMerger(testProfiles())
	require.NoError(t, err)
	require.NoError(t, merger.MergeFragment(frag))
	return ix
}

func Test_Compiler_DuplicateTemplateName(t *testing.T) {
	units := testUnits()
	first := testFragment()
	ix := prepareFragment(t, units, first)

	second := &semantic.Fragment{Groups: []*semantic.RegistryGroup{
		{Name: "other_group", Members: []*semantic.Template{
			{Name: "postcode_record", Role: "demographic",
				EntityConcept: semantic.RefName("postcode"),
				Profile:       semantic.ProfileName("observation_string")},
		}},
	}}

	compiler := NewCompiler(ix)
	require.NoError(t, compiler.AddFragment(first))

	err := compiler.AddFragment(second)
	var dup *semantic.DuplicateTemplateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "postcode_record", dup.Name)
}

func Test_Compiler_DuplicateTemplateNameWithinFragment(t *testing.T) {
	units := testUnits()
	// Two groups in one fragment both define "dup"; the second must not
	// shadow the first.
	frag := &semantic.Fragment{Groups: []*semantic.RegistryGroup{
		{Name: "g1", Members: []*semantic.Template{
			{Name: "dup", Role: "demographic",
				EntityConcept: semantic.RefName("postcode"),
				Profile:       semantic.ProfileName("observation_string")},
		}},
		{Name: "g2", Members: []*semantic.Template{
			{Name: "dup", Role: "staging",
				EntityConcept: semantic.RefName("tnm_stage"),
				Profile:       semantic.ProfileName("observation_string")},
		}},
	}}
	ix := prepareFragment(t, units, frag)

	compiler := NewCompiler(ix)
	err := compiler.AddFragment(frag)
	var dup *semantic.DuplicateTemplateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "dup", dup.Name)
}

func Test_Compiler_DuplicateGroupNameWithinFragment(t *testing.T) {
	units := testUnits()
	frag := &semantic.Fragment{Groups: []*semantic.RegistryGroup{
		{Name: "dup_group"},
		{Name: "dup_group"},
	}}
	ix := prepareFragment(t, units, frag)

	compiler := NewCompiler(ix)
	err := compiler.AddFragment(frag)
	var dup *semantic.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "dup_group", dup.Name)
}

func Test_Compiler_DuplicateConceptID(t *testing.T) {
	units := append(testUnits(),
		&semantic.Concept{Name: "tnm_stage_alias", ConceptID: 4111628, Label: "TNM stage (alias)"})
	frag := testFragment()
	ix := prepareFragment(t, units, frag)

	compiler := NewCompiler(ix)
	require.NoError(t, compiler.AddFragment(frag))

	_, err := compiler.Compile()
	var dup *semantic.DuplicateConceptIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, semantic.ConceptID(4111628), dup.ConceptID)
	assert.Equal(t, []string{"tnm_stage", "tnm_stage_alias"}, dup.Names)
}

func Test_Compiler_DuplicateGroupName(t *testing.T) {
	units := testUnits()
	first := testFragment()
	ix := prepareFragment(t, units, first)

	second := &semantic.Fragment{Groups: []*semantic.RegistryGroup{
		{Name: "oncology_core"},
	}}

	compiler := NewCompiler(ix)
	require.NoError(t, compiler.AddFragment(first))

	err := compiler.AddFragment(second)
	var dup *semantic.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "oncology_core", dup.Name)
}

func Test_Compiler_FailedAddLeavesCompilerUnchanged(t *testing.T) {
	units := testUnits()
	first := testFragment()
	ix := prepareFragment(t, units, first)

	// fresh_template is valid but rides in a fragment that also collides;
	// the whole fragment must be rejected.
	colliding := &semantic.Fragment{Groups: []*semantic.RegistryGroup{
		{Name: "fresh_group", Members: []*semantic.Template{
			{Name: "fresh_template", Role: "demographic",
				EntityConcept: semantic.RefName("postcode"),
				Profile:       semantic.ProfileName("observation_string")},
			{Name: "postcode_record", Role: "demographic",
				EntityConcept: semantic.RefName("postcode"),
				Profile:       semantic.ProfileName("observation_string")},
		}},
	}}

	compiler := NewCompiler(ix)
	require.NoError(t, compiler.AddFragment(first))
	require.Error(t, compiler.AddFragment(colliding))

	reg, err := compiler.Compile()
	require.NoError(t, err)
	_, ok := reg.Template("fresh_template")
	assert.False(t, ok)
	_, ok = reg.Group("fresh_group")
	assert.False(t, ok)
}

func Test_Compiler_ValueConceptWithoutValueSlot(t *testing.T) {
	units := testUnits()
	valueRef := semantic.RefName("t_stage")
	frag := &semantic.Fragment{Groups: []*semantic.RegistryGroup{
		{Name: "bad_group", Members: []*semantic.Template{
			{Name: "bad_template", Role: "diagnosis",
				EntityConcept: semantic.RefName("nsclc"),
				ValueConcept:  &valueRef,
				Profile:       semantic.ProfileName("condition")},
		}},
	}}
	ix := prepareFragment(t, units, frag)

	compiler := NewCompiler(ix)
	require.NoError(t, compiler.AddFragment(frag))

	_, err := compiler.Compile()
	var slotErr *semantic.ValueSlotNotSupportedError
	require.ErrorAs(t, err, &slotErr)
	assert.Equal(t, "bad_template", slotErr.Template)
	assert.Equal(t, "condition", slotErr.Profile)
}

func Test_Compiler_UnmergedProfileFails(t *testing.T) {
	units := testUnits()
	ix, err := NewIndex(units)
	require.NoError(t, err)
	interp := NewInterpolator(ix)
	for _, u := range units {
		require.NoError(t, interp.ResolveUnit(u))
	}

	frag := &semantic.Fragment{Groups: []*semantic.RegistryGroup{
		{Name: "g", Members: []*semantic.Template{
			{Name: "unmerged", Role: "demographic",
				EntityConcept: semantic.RefName("postcode"),
				Profile:       semantic.ProfileName("observation_string")},
		}},
	}}
	require.NoError(t, interp.ResolveFragment(frag))
	// Profile merge deliberately skipped.

	compiler := NewCompiler(ix)
	require.NoError(t, compiler.AddFragment(frag))

	_, err = compiler.Compile()
	var unknown *semantic.UnknownProfileError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "observation_string", unknown.Name)
}

func Test_Compiler_IndexOrderIsDeterministic(t *testing.T) {
	reg := buildTestRegistry(t)

	templates := reg.Templates()
	names := make([]string, len(templates))
	for i, tpl := range templates {
		names[i] = tpl.Name
	}
	assert.Equal(t, []string{"postcode_record", "primary_diagnosis", "tnm_stage_record"}, names)
}
