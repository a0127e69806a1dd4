package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semreg-dev/semreg/semantic"
)

func newTestInterpolator(t *testing.T, units []semantic.Unit) *Interpolator {
	t.Helper()
	ix, err := NewIndex(units)
	require.NoError(t, err)
	return NewInterpolator(ix)
}

func Test_Interpolator_SharedIdentity(t *testing.T) {
	units := testUnits()
	interp := newTestInterpolator(t, units)
	for _, u := range units {
		require.NoError(t, interp.ResolveUnit(u))
	}

	var nsclc *semantic.Concept
	var tumour, staging *semantic.Group
	for _, u := range units {
		switch u.UnitName() {
		case "nsclc":
			nsclc = u.(*semantic.Concept)
		case "tumour_concepts":
			tumour = u.(*semantic.Group)
		case "staging_findings":
			staging = u.(*semantic.Group)
		}
	}

	// Every site referencing a name gets the identical object.
	assert.Same(t, nsclc, tumour.Members[1].Unit)
	assert.Same(t, nsclc.Parents[0].Unit, tumour.Members[0].Unit)
	assert.True(t, staging.Members[0].Resolved())
}

func Test_Interpolator_PreResolvedRefPassesThrough(t *testing.T) {
	external := &semantic.Concept{Name: "external", ConceptID: 99}
	group := &semantic.Group{Name: "mixed", Members: []semantic.UnitRef{
		semantic.RefUnit(external),
		semantic.RefName("postcode"),
	}}

	units := append(testUnits(), group)
	interp := newTestInterpolator(t, units)
	require.NoError(t, interp.ResolveUnit(group))

	assert.Same(t, external, group.Members[0].Unit)
	assert.True(t, group.Members[1].Resolved())
}

func Test_Interpolator_UnresolvedReference(t *testing.T) {
	group := &semantic.Group{Name: "dangling", Members: []semantic.UnitRef{
		semantic.RefName("no_such_unit"),
	}}
	interp := newTestInterpolator(t, []semantic.Unit{group})

	err := interp.ResolveUnit(group)
	var unresolved *semantic.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "no_such_unit", unresolved.Name)
}

func Test_Interpolator_GroupCycle(t *testing.T) {
	a := &semantic.Group{Name: "a", Members: []semantic.UnitRef{semantic.RefName("b")}}
	b := &semantic.Group{Name: "b", Members: []semantic.UnitRef{semantic.RefName("a")}}
	interp := newTestInterpolator(t, []semantic.Unit{a, b})

	err := interp.ResolveUnit(a)
	var cyclic *semantic.CyclicReferenceError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, []string{"a", "b", "a"}, cyclic.Path)
}

func Test_Interpolator_ParentCycle(t *testing.T) {
	a := &semantic.Concept{Name: "a", ConceptID: 1,
		Parents: []semantic.UnitRef{semantic.RefName("b")}}
	b := &semantic.Concept{Name: "b", ConceptID: 2,
		Parents: []semantic.UnitRef{semantic.RefName("a")}}
	interp := newTestInterpolator(t, []semantic.Unit{a, b})

	err := interp.ResolveUnit(a)
	var cyclic *semantic.CyclicReferenceError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, "a", cyclic.Path[len(cyclic.Path)-1])
}

func Test_Interpolator_ParentMustBeConcept(t *testing.T) {
	bad := &semantic.Concept{Name: "bad", ConceptID: 1,
		Parents: []semantic.UnitRef{semantic.RefName("t_stage")}}
	units := append(testUnits(), bad)
	interp := newTestInterpolator(t, units)

	err := interp.ResolveUnit(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want a concept")
}

func Test_Interpolator_ResolveTemplate(t *testing.T) {
	interp := newTestInterpolator(t, testUnits())

	frag := testFragment()
	require.NoError(t, interp.ResolveFragment(frag))

	tpl := frag.Groups[0].Members[1]
	assert.True(t, tpl.EntityConcept.Resolved())
	require.NotNil(t, tpl.ValueConcept)
	assert.True(t, tpl.ValueConcept.Resolved())
	// Profile refs are a separate namespace, untouched here.
	assert.False(t, tpl.Profile.Resolved())
}

func Test_Interpolator_ResolveValueSet(t *testing.T) {
	interp := newTestInterpolator(t, testUnits())

	vs := &semantic.ValueSet{Name: "staging", Members: []semantic.UnitRef{
		semantic.RefName("t_stage"),
		semantic.RefName("tnm_stage"),
	}}
	require.NoError(t, interp.ResolveValueSet(vs))
	assert.True(t, vs.Members[0].Resolved())
	assert.True(t, vs.Members[1].Resolved())
}
