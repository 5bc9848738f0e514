// Package declaration holds the validated, linked form of the metamodel
// AST: one [ClassDeclaration] per asset/participant/transaction/event/
// concept/enum, each carrying its resolved [Property] list, identifier
// field, and decorators.
//
// As with [metamodel], declarations are a single kind-tagged record
// rather than a type hierarchy per kind: [ClassDeclaration.Kind]
// dispatches behavior, and kind-specific fields (IdentifierField,
// IsAbstract) simply sit unused on kinds that do not apply to them. This
// mirrors [github.com/google/jsonschema-go/jsonschema.Schema]'s own flat,
// many-optional-fields struct — the shape [go.jacobcolvin.com/x/magicschema]
// targets when producing schemas — which is exactly the representation
// spec'd for this declaration graph.
//
// Graph traversal queries that need more than a single declaration's own
// data (resolving a supertype chain, finding assignable subclasses) live
// on [github.com/concerto-project/concerto-go/modelmanager.ModelManager]
// rather than here, so that this package never needs to import the
// registry that owns it.
package declaration

import (
	"strings"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/metamodel"
)

// Kind re-exports [metamodel.DeclarationKind] so callers of this package
// do not need to import metamodel just to branch on kind.
type Kind = metamodel.DeclarationKind

const (
	KindConcept     = metamodel.KindConcept
	KindAsset       = metamodel.KindAsset
	KindParticipant = metamodel.KindParticipant
	KindTransaction = metamodel.KindTransaction
	KindEvent       = metamodel.KindEvent
	KindEnum        = metamodel.KindEnum
)

// PropertyKind re-exports [metamodel.PropertyKind].
type PropertyKind = metamodel.PropertyKind

const (
	PropertyField        = metamodel.PropertyField
	PropertyRelationship = metamodel.PropertyRelationship
	PropertyEnumValue    = metamodel.PropertyEnumValue
)

// Validator and Decorator carry no type-name references of their own,
// so the validated forms are identical to their AST forms.
type (
	Validator    = metamodel.Validator
	Decorator    = metamodel.Decorator
	DecoratorArg = metamodel.DecoratorArg
)

// ValidatorKind re-exports [metamodel.ValidatorKind].
type ValidatorKind = metamodel.ValidatorKind

const (
	ValidatorStringRegex = metamodel.ValidatorStringRegex
	ValidatorRange       = metamodel.ValidatorRange
)

// reservedPropertyNames may not be declared by a user schema; they are
// the canonical JSON wire-format keys (spec §6) and would otherwise be
// ambiguous on the instance.
var reservedPropertyNames = map[string]bool{
	"$class":      true,
	"$identifier": true,
	"$timestamp":  true,
}

// Property is one field, relationship, or enum value belonging to a
// [ClassDeclaration], with its declared type already checked for
// resolvability (but not yet resolved to an FQN pointer -- Type holds
// either a primitive name or the FQN of the referenced declaration).
type Property struct {
	Kind       PropertyKind
	Name       string
	Type       string // primitive name, or FQN of a local/imported/wildcard-resolved type
	IsArray    bool
	IsOptional bool
	Default    string
	HasDefault bool
	Validator  *Validator
	Decorators []*Decorator
}

// IsRelationship reports whether p is a [PropertyRelationship].
func (p *Property) IsRelationship() bool {
	return p.Kind == PropertyRelationship
}

// IsEnumValue reports whether p is a [PropertyEnumValue].
func (p *Property) IsEnumValue() bool {
	return p.Kind == PropertyEnumValue
}

// ClassDeclaration is the validated, linked form of a metamodel
// [metamodel.Declaration]: one asset/participant/transaction/event/
// concept/enum, with its own (not inherited) properties and its
// resolved identifier field and super-type FQN.
type ClassDeclaration struct {
	Kind            Kind
	Namespace       string
	Name            string // short name
	IsAbstract      bool
	SuperTypeFQN    string // empty if this declaration has no super-type
	IdentifierField string // empty for concepts, enums, and abstract declarations with no identifier
	explicitIDField bool   // true if IdentifierField was declared here, not inherited
	Properties      []*Property
	Decorators      []*Decorator
	ConcertoVersion string
}

// FQN returns the declaration's fully qualified name.
func (d *ClassDeclaration) FQN() string {
	return metamodel.JoinFQN(d.Namespace, d.Name)
}

// IsIdentifiable reports whether this kind of declaration carries an
// identifier field at all (asset/participant/transaction/event).
func (d *ClassDeclaration) IsIdentifiable() bool {
	return d.Kind.Identifiable()
}

// HasOwnIdentifier reports whether this declaration (not an ancestor)
// declared the `identified by` clause.
func (d *ClassDeclaration) HasOwnIdentifier() bool {
	return d.explicitIDField
}

// SetOwnIdentifier marks IdentifierField as having been declared
// directly on d (as opposed to inherited). Used by the validator that
// constructs this declaration; not meant for general callers.
func (d *ClassDeclaration) SetOwnIdentifier(field string) {
	d.IdentifierField = field
	d.explicitIDField = true
}

// GetOwnProperties returns the properties declared directly on d,
// excluding anything inherited from a super-type.
func (d *ClassDeclaration) GetOwnProperties() []*Property {
	return d.Properties
}

// GetOwnProperty looks up a property declared directly on d by name.
func (d *ClassDeclaration) GetOwnProperty(name string) (*Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}

// ValidateOwnShape checks the invariants that can be verified from this
// declaration alone, without consulting the rest of the graph: no
// reserved property names, no duplicate property names within this
// declaration's own list, enum declarations hold only EnumValue
// properties and vice versa, and validators are well-formed (a regex
// needs a String field and must compile; a range needs a numeric field
// and min <= max). Array and optional flags are not checked.
// Supertype resolution, identifier inheritance, and
// cross-declaration name uniqueness are the caller's (modelfile's)
// responsibility, since they require the rest of the graph.
func (d *ClassDeclaration) ValidateOwnShape() error {
	seen := make(map[string]bool, len(d.Properties))

	for _, p := range d.Properties {
		if reservedPropertyNames[p.Name] {
			return cerror.New(cerror.ErrIllegalModel,
				"property %q uses a reserved name", p.Name).WithFQN(d.FQN())
		}

		if seen[p.Name] {
			return cerror.New(cerror.ErrIllegalModel,
				"duplicate property %q", p.Name).WithFQN(d.FQN())
		}

		seen[p.Name] = true

		if d.Kind == KindEnum && p.Kind != PropertyEnumValue {
			return cerror.New(cerror.ErrIllegalModel,
				"enum declaration may only contain enum values, got field %q", p.Name).WithFQN(d.FQN())
		}

		if d.Kind != KindEnum && p.Kind == PropertyEnumValue {
			return cerror.New(cerror.ErrIllegalModel,
				"enum value %q may only appear inside an enum declaration", p.Name).WithFQN(d.FQN())
		}

		if err := validatePropertyShape(d, p); err != nil {
			return err
		}
	}

	return nil
}

func validatePropertyShape(d *ClassDeclaration, p *Property) error {
	if p.Validator == nil {
		return nil
	}

	switch p.Validator.Kind {
	case ValidatorStringRegex:
		if p.Type != metamodel.PrimitiveString {
			return cerror.New(cerror.ErrIllegalModel,
				"regex validator on property %q requires type String, got %s", p.Name, p.Type).WithFQN(d.FQN())
		}

		if _, err := compileRegex(p.Validator.Pattern, p.Validator.Flags); err != nil {
			return cerror.New(cerror.ErrIllegalModel,
				"property %q has a malformed regex validator: %v", p.Name, err).WithFQN(d.FQN())
		}
	case ValidatorRange:
		if !metamodel.IsNumericPrimitive(p.Type) {
			return cerror.New(cerror.ErrIllegalModel,
				"range validator on property %q requires a numeric type, got %s", p.Name, p.Type).WithFQN(d.FQN())
		}

		if p.Validator.Min != nil && p.Validator.Max != nil && *p.Validator.Min > *p.Validator.Max {
			return cerror.New(cerror.ErrIllegalModel,
				"property %q has an empty range [%v,%v]", p.Name, *p.Validator.Min, *p.Validator.Max).WithFQN(d.FQN())
		}
	}

	return nil
}

// GetNestedProperty descends a dotted path of property names through
// object-typed fields of d's own declaration, returning the final
// property. It does not resolve across declarations: if an intermediate
// segment names a property whose declared type is a primitive or enum,
// or the path has more than one remaining segment but the current
// property is not itself an object reference, resolution fails. Full
// cross-declaration descent (following Type into another declaration's
// properties) is implemented by
// [github.com/concerto-project/concerto-go/modelmanager.ModelManager.GetNestedProperty],
// which does its own per-segment lookup and does not call this method.
func (d *ClassDeclaration) GetNestedProperty(path string) (*Property, error) {
	parts := strings.Split(path, ".")
	if len(parts) == 0 {
		return nil, cerror.New(cerror.ErrIllegalModel, "empty property path")
	}

	p, ok := d.GetOwnProperty(parts[0])
	if !ok {
		return nil, cerror.New(cerror.ErrIllegalModel, "no such property %q", parts[0]).WithFQN(d.FQN())
	}

	if len(parts) == 1 {
		return p, nil
	}

	if metamodel.IsPrimitiveType(p.Type) || p.Kind == PropertyEnumValue {
		return nil, cerror.New(cerror.ErrIllegalModel,
			"cannot descend into primitive property %q", parts[0]).WithFQN(d.FQN())
	}

	return nil, errNeedsManager
}

// errNeedsManager signals to ModelManager.GetNestedProperty that the
// remaining path must be resolved against another declaration.
var errNeedsManager = cerror.New(cerror.ErrIllegalModel, "nested property descent requires the model manager")

// NeedsManagerDescent reports whether err is the sentinel returned by
// [ClassDeclaration.GetNestedProperty] to indicate the path continues
// into another declaration.
func NeedsManagerDescent(err error) bool {
	return err == errNeedsManager
}
