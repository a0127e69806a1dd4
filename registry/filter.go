package registry

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// TemplateEnv defines the variables visible to a filter expression.
type TemplateEnv struct {
	Name       string  `expr:"name"`
	Role       string  `expr:"role"`
	Table      string  `expr:"table"`
	Profile    string  `expr:"profile"`
	ConceptIDs []int64 `expr:"concept_ids"`
	HasValue   bool    `expr:"has_value"`
}

// Filter selects templates with a compiled boolean expression, e.g.
// `role == "staging" && 1634213 in concept_ids`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles the expression against TemplateEnv. Compilation
// errors surface immediately so a bad expression never reaches query time.
func CompileFilter(src string) (*Filter, error) {
	program, err := expr.Compile(src, expr.Env(TemplateEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return &Filter{source: src, program: program}, nil
}

// String returns the original expression source.
func (f *Filter) String() string { return f.source }

// Match evaluates the filter against one template.
func (f *Filter) Match(t *RuntimeTemplate) (bool, error) {
	env := TemplateEnv{
		Name:       t.Name,
		Role:       t.Role,
		Table:      t.Profile.CDMTable,
		Profile:    t.Profile.Name,
		ConceptIDs: make([]int64, len(t.EntityConceptIDs)),
		HasValue:   t.ValueConceptIDs != nil,
	}
	for i, id := range t.EntityConceptIDs {
		env.ConceptIDs[i] = int64(id)
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.source, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q: expression is not boolean", f.source)
	}
	return ok, nil
}

// Filter returns the templates matching f, name-sorted.
func (r *Registry) Filter(f *Filter) ([]*RuntimeTemplate, error) {
	var out []*RuntimeTemplate
	for _, t := range r.Templates() {
		ok, err := f.Match(t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}
