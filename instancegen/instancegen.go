// Package instancegen implements [Generator], the traversal engine spec
// §4.7 calls the InstanceGenerator: it builds a sample
// [instance.Instance] from a [declaration.ClassDeclaration], delegating
// scalar leaf values to a pluggable [ValueGenerator] strategy ([Empty]
// or [Sample]) and guarding against infinite recursion with an
// FQN-keyed seen-set carried down the call stack, per spec §9's "cycles
// are detected by an FQN-stack" design note.
//
// Like [github.com/concerto-project/concerto-go/serializer], this is a
// traversal over the same declaration graph; the two packages share no
// code because they walk in opposite directions (declaration -> value
// vs value -> JSON) but follow the same per-property dispatch shape,
// grounded on [go.jacobcolvin.com/x/magicschema/infer.go]'s recursive
// "build a value consistent with this node's kind" walk.
package instancegen

import (
	"fmt"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/declaration"
	"github.com/concerto-project/concerto-go/factory"
	"github.com/concerto-project/concerto-go/instance"
	"github.com/concerto-project/concerto-go/metamodel"
	"github.com/concerto-project/concerto-go/modelmanager"
)

// ValueGenerator supplies leaf values for primitive and enum properties.
// [Empty] and [Sample] are the two strategies spec §4.7 names; callers
// may supply their own for deterministic test fixtures.
type ValueGenerator interface {
	// Primitive returns a value for a scalar property of the given
	// primitive type name.
	Primitive(primitiveType string) (any, error)

	// EnumValue picks one of an enum declaration's value names.
	EnumValue(values []string) (string, error)
}

// Options configures a single [Generator.Generate] call.
type Options struct {
	// IncludeOptionalFields, when true, causes optional properties to
	// be populated; otherwise they are left entirely unset, per spec
	// §4.7.
	IncludeOptionalFields bool
}

// Generator builds sample instances against manager's declaration graph.
type Generator struct {
	manager *modelmanager.ModelManager
	factory *factory.Factory
	values  ValueGenerator
}

// New creates a [Generator]. values supplies leaf scalar values; pass
// [Empty] or [Sample].
func New(manager *modelmanager.ModelManager, f *factory.Factory, values ValueGenerator) *Generator {
	return &Generator{manager: manager, factory: f, values: values}
}

// state carries the per-call traversal context: the stack of FQNs
// currently being generated (for cycle detection, spec §4.7) and the
// options in effect.
type state struct {
	seen map[string]bool
	opts Options
}

// Generate builds a sample instance of fqn. fqn may name an abstract
// declaration, in which case the concrete-subclass picker (spec §4.5,
// §4.7) selects the first assignable non-abstract declaration by stable
// FQN order.
func (g *Generator) Generate(fqn string, opts Options) (*instance.Instance, error) {
	decl, err := g.manager.GetType(fqn)
	if err != nil {
		return nil, err
	}

	st := &state{seen: map[string]bool{}, opts: opts}

	return g.generateDeclaration(decl, st)
}

// generateDeclaration builds a sample instance of decl, resolving
// abstract declarations to a concrete subclass and pushing the
// resulting FQN onto the seen-set for the duration of this call.
func (g *Generator) generateDeclaration(decl *declaration.ClassDeclaration, st *state) (*instance.Instance, error) {
	concrete := decl

	if decl.IsAbstract {
		picked, err := g.pickConcreteSubclass(decl.FQN())
		if err != nil {
			return nil, err
		}

		concrete = picked
	}

	fqn := concrete.FQN()

	st.seen[fqn] = true
	defer delete(st.seen, fqn)

	inst, err := g.factory.Create(concrete.Namespace, concrete.Name, factory.Options{
		GenerateSample:       true,
		SetDefaultIdentifier: concrete.IsIdentifiable(),
	})
	if err != nil {
		return nil, err
	}

	props, err := g.manager.GetProperties(fqn)
	if err != nil {
		return nil, err
	}

	for _, p := range props {
		if p.Name == "$identifier" || p.Name == concrete.IdentifierField || p.Kind == declaration.PropertyEnumValue {
			continue
		}

		if p.IsOptional && !st.opts.IncludeOptionalFields {
			continue
		}

		value, skip, err := g.generateProperty(fqn, p, st)
		if err != nil {
			return nil, err
		}

		if skip {
			continue
		}

		inst.Set(p.Name, value)
	}

	return inst, nil
}

func (g *Generator) pickConcreteSubclass(fqn string) (*declaration.ClassDeclaration, error) {
	candidates, err := g.manager.GetAssignableClassDeclarations(fqn)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return nil, cerror.New(cerror.ErrModelViolation, "no concrete subclass to generate a sample from").WithFQN(fqn)
	}

	return candidates[0], nil
}

// generateProperty builds the value for one property. The bool return
// reports whether the property should be left unset; every current case
// returns false (a recursive optional scalar field is set to nil).
func (g *Generator) generateProperty(fqn string, p *declaration.Property, st *state) (any, bool, error) {
	if p.Kind == declaration.PropertyRelationship {
		v, err := g.generateRelationship(p)

		return v, false, err
	}

	if p.IsArray {
		return g.generateArray(p, st)
	}

	return g.generateScalar(fqn, p, st)
}

// generateArray implements spec §4.7's array rules: a recursive
// non-primitive element type always yields an empty array regardless of
// strategy; otherwise the [Empty] strategy yields an empty array and the
// [Sample] strategy yields a single generated element.
func (g *Generator) generateArray(p *declaration.Property, st *state) (any, bool, error) {
	if !metamodel.IsPrimitiveType(p.Type) && g.isRecursive(p.Type, st) {
		return []any{}, false, nil
	}

	if _, empty := g.values.(emptyGenerator); empty {
		return []any{}, false, nil
	}

	if metamodel.IsPrimitiveType(p.Type) {
		v, err := g.values.Primitive(p.Type)
		if err != nil {
			return nil, false, err
		}

		return []any{v}, false, nil
	}

	target, err := g.manager.GetType(p.Type)
	if err != nil {
		return nil, false, err
	}

	if target.Kind == declaration.KindEnum {
		names := make([]string, len(target.Properties))
		for i, ev := range target.Properties {
			names[i] = ev.Name
		}

		v, err := g.values.EnumValue(names)
		if err != nil {
			return nil, false, err
		}

		return []any{v}, false, nil
	}

	v, err := g.generateDeclaration(target, st)
	if err != nil {
		return nil, false, err
	}

	return []any{v}, false, nil
}

func (g *Generator) generateScalar(fqn string, p *declaration.Property, st *state) (any, bool, error) {
	if metamodel.IsPrimitiveType(p.Type) {
		v, err := g.values.Primitive(p.Type)

		return v, false, err
	}

	target, err := g.manager.GetType(p.Type)
	if err != nil {
		return nil, false, err
	}

	if target.Kind == declaration.KindEnum {
		names := make([]string, len(target.Properties))
		for i, ev := range target.Properties {
			names[i] = ev.Name
		}

		v, err := g.values.EnumValue(names)

		return v, false, err
	}

	if g.isRecursive(p.Type, st) {
		if p.IsOptional {
			return nil, false, nil
		}

		return nil, false, cerror.New(cerror.ErrRecursion,
			"property %q of %s recurses back to %s with no terminating value", p.Name, fqn, p.Type).WithFQN(fqn)
	}

	v, err := g.generateDeclaration(target, st)

	return v, false, err
}

// isRecursive reports whether typeFQN (or, if it names an abstract
// declaration, any of its assignable concrete descendants) is already
// on the generation stack.
func (g *Generator) isRecursive(typeFQN string, st *state) bool {
	if st.seen[typeFQN] {
		return true
	}

	decl, err := g.manager.GetType(typeFQN)
	if err != nil || !decl.IsAbstract {
		return false
	}

	candidates, err := g.manager.GetAssignableClassDeclarations(typeFQN)
	if err != nil {
		return false
	}

	for _, c := range candidates {
		if st.seen[c.FQN()] {
			return true
		}
	}

	return false
}

func (g *Generator) generateRelationship(p *declaration.Property) (*instance.Relationship, error) {
	target, err := g.manager.GetType(p.Type)
	if err != nil {
		return nil, err
	}

	if !target.IsIdentifiable() {
		return nil, cerror.New(cerror.ErrModelViolation,
			"relationship property %q targets non-identifiable type %s", p.Name, p.Type).WithFQN(p.Type)
	}

	return instance.NewRelationship(target.FQN(), syntheticID()), nil
}

var syntheticCounter int

// syntheticID returns a zero-padded 4-digit synthetic identifier, per
// spec §4.7. A package-level counter keeps successive relationships
// within one process distinguishable without pulling in randomness.
func syntheticID() string {
	syntheticCounter++
	if syntheticCounter > 9999 {
		syntheticCounter = 1
	}

	return fmt.Sprintf("%04d", syntheticCounter)
}
